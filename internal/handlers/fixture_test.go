package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/apperr"
	"storefront/internal/auth"
	"storefront/internal/checkout"
	"storefront/internal/database"
	"storefront/internal/docaccess"
	"storefront/internal/funnel"
	"storefront/internal/insights"
	"storefront/internal/models"
	"storefront/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	testBucket    = "verification-documents"
	testPassword  = "correct horse battery"
	testPublicURL = "http://files.test"
)

type fakeAccounts map[string]models.Account

func (f fakeAccounts) FindByEmail(_ context.Context, email string) (models.Account, error) {
	acc, ok := f[email]
	if !ok {
		return models.Account{}, apperr.NotFound("account not found")
	}
	return acc, nil
}

type fakeAdmins map[string]bool

func (f fakeAdmins) IsAdmin(_ context.Context, userID string) (bool, error) {
	return f[userID], nil
}

type fakeCatalog struct {
	products []models.Product
	lastQ    database.ProductQuery
	err      error
}

func (f *fakeCatalog) List(_ context.Context, q database.ProductQuery) ([]models.Product, int64, error) {
	f.lastQ = q
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.products, int64(len(f.products)), nil
}

func (f *fakeCatalog) FindProduct(_ context.Context, id string) (models.Product, error) {
	for _, p := range f.products {
		if p.ID.Hex() == id {
			return p, nil
		}
	}
	return models.Product{}, apperr.NotFound("product not found")
}

type fakeApplications struct {
	mu   sync.Mutex
	apps []models.LeaseApplication
}

func (f *fakeApplications) InsertApplication(_ context.Context, app *models.LeaseApplication) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.apps {
		if a.CheckoutSessionID == app.CheckoutSessionID {
			return apperr.Conflict("checkout already submitted")
		}
	}
	f.apps = append(f.apps, *app)
	return nil
}

func (f *fakeApplications) List(_ context.Context, page, limit int64) ([]models.LeaseApplication, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	start := (page - 1) * limit
	if start >= int64(len(f.apps)) {
		return []models.LeaseApplication{}, int64(len(f.apps)), nil
	}
	end := start + limit
	if end > int64(len(f.apps)) {
		end = int64(len(f.apps))
	}
	return f.apps[start:end], int64(len(f.apps)), nil
}

type fakeFunnelStore struct {
	mu     sync.Mutex
	events []models.FunnelEvent
}

func (f *fakeFunnelStore) InsertFunnelEvent(_ context.Context, ev *models.FunnelEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *ev)
	return nil
}

func (f *fakeFunnelStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

type fakeCounts struct {
	counts funnel.Counts
	since  time.Time
}

func (f *fakeCounts) FunnelCounts(_ context.Context, since time.Time) (funnel.Counts, error) {
	f.since = since
	return f.counts, nil
}

type fakeGenerator struct {
	text string
	err  error
}

func (f fakeGenerator) Generate(context.Context, string, string) (string, error) {
	return f.text, f.err
}

// fixture wires the real router over in-memory collaborators and a
// temporary document store.
type fixture struct {
	router       *gin.Engine
	tokens       *auth.Tokens
	objects      *storage.Local
	catalog      *fakeCatalog
	applications *fakeApplications
	funnelStore  *fakeFunnelStore
	counts       *fakeCounts
	product      models.Product
	adminID      string
	customerID   string
	now          time.Time
}

type fixtureOption func(*Deps)

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	admin := models.Account{ID: primitive.NewObjectID(), Email: "ops@example.com", PasswordHash: string(hash), IsActive: true}
	customer := models.Account{ID: primitive.NewObjectID(), Email: "staff@example.com", PasswordHash: string(hash), IsActive: true}
	disabled := models.Account{ID: primitive.NewObjectID(), Email: "gone@example.com", PasswordHash: string(hash)}

	objects, err := storage.NewLocal(t.TempDir(), testBucket, "archive")
	require.NoError(t, err)

	f := &fixture{
		tokens:       auth.NewTokens("test-secret", 20*time.Minute),
		objects:      objects,
		applications: &fakeApplications{},
		funnelStore:  &fakeFunnelStore{},
		counts:       &fakeCounts{},
		product: models.Product{
			ID:           primitive.NewObjectID(),
			Name:         "Phone 15",
			MonthlyPrice: 150,
			StorageOptions: []models.PricedOption{
				{Label: "128GB"},
				{Label: "256GB", PriceDelta: 25},
			},
			Conditions: []models.PricedOption{{Label: "New", PriceDelta: 24}},
			Colors:     models.StringList{"Black", "Blue"},
			LeaseTerms: []models.LeaseTerm{{Months: 12}, {Months: 24, PriceDelta: -10}},
			Stock:      3,
			InStock:    true,
			IsActive:   true,
		},
		adminID:    admin.ID.Hex(),
		customerID: customer.ID.Hex(),
		now:        time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC),
	}
	f.catalog = &fakeCatalog{products: []models.Product{f.product}}

	lg := zap.NewNop()
	guard := auth.NewGuard(f.tokens, fakeAdmins{f.adminID: true}, lg)
	signer := storage.NewURLSigner("signing-secret", testPublicURL)
	store := checkout.NewStore(time.Hour, checkout.DiscardUploads(objects, lg))
	buckets := []string{testBucket, "archive"}

	d := Deps{
		Logger: lg,
		Health: PingerFunc(func(context.Context) error { return nil }),
		Accounts: fakeAccounts{
			admin.Email:    admin,
			customer.Email: customer,
			disabled.Email: disabled,
		},
		Tokens:       f.tokens,
		Guard:        guard,
		Documents:    docaccess.NewGateway(guard, objects, signer, buckets, docaccess.DefaultURLTTL, lg),
		Objects:      objects,
		URLVerifier:  signer,
		Funnel:       funnel.NewRecorder(f.funnelStore, lg),
		Metrics:      funnel.NewAggregator(f.counts, lg),
		Insights:     insights.NewAnalyzer(fakeGenerator{text: "# Q1 Leasing Report\n\n## Executive Summary\nSteady growth."}, nil, lg),
		Products:     f.catalog,
		Checkout:     checkout.NewService(store, f.catalog, f.applications, objects, testBucket, lg),
		Applications: f.applications,
		Now:          func() time.Time { return f.now },
	}
	for _, opt := range opts {
		opt(&d)
	}
	f.router = NewRouter(d)
	return f
}

func (f *fixture) bearer(t *testing.T, userID string) string {
	t.Helper()
	token, _, err := f.tokens.Issue(auth.Identity{UserID: userID, Email: userID + "@example.com"})
	require.NoError(t, err)
	return "Bearer " + token
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) doJSON(t *testing.T, method, target string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return f.do(req)
}

func authHeader(value string) http.Header {
	h := http.Header{}
	h.Set("Authorization", value)
	return h
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
