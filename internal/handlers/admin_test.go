package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

func TestLoginThenAdminMe(t *testing.T) {
	f := newFixture(t)

	w := f.doJSON(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "  OPS@example.com ",
		"password": testPassword,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeJSON(t, w)
	assert.Equal(t, "Bearer", body["tokenType"])
	assert.EqualValues(t, 1200, body["expiresIn"])
	token, ok := body["accessToken"].(string)
	require.True(t, ok)

	w = f.doJSON(t, http.MethodGet, "/admin/api/me", nil, authHeader("Bearer "+token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	me := decodeJSON(t, w)
	assert.Equal(t, f.adminID, me["userId"])
	assert.Equal(t, "ops@example.com", me["email"])
}

func TestLoginRejections(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		body   any
		status int
		msg    string
	}{
		{"wrong password", map[string]string{"email": "ops@example.com", "password": "nope"}, http.StatusUnauthorized, "invalid credentials"},
		{"unknown email", map[string]string{"email": "who@example.com", "password": testPassword}, http.StatusUnauthorized, "invalid credentials"},
		{"inactive account", map[string]string{"email": "gone@example.com", "password": testPassword}, http.StatusUnauthorized, "invalid credentials"},
		{"blank password", map[string]string{"email": "ops@example.com", "password": "  "}, http.StatusBadRequest, "email and password are required"},
		{"missing fields", map[string]string{}, http.StatusBadRequest, "invalid body"},
		{"not json", "{", http.StatusBadRequest, "invalid body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.doJSON(t, http.MethodPost, "/auth/login", tt.body, nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.msg, decodeJSON(t, w)["error"])
		})
	}
}

func TestListApplicationsPaginates(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		f.applications.apps = append(f.applications.apps, models.LeaseApplication{
			ID:                primitive.NewObjectID(),
			CheckoutSessionID: primitive.NewObjectID().Hex(),
			Status:            "pending",
			CreatedAt:         time.Date(2026, 3, i+1, 0, 0, 0, 0, time.UTC),
		})
	}
	admin := authHeader(f.bearer(t, f.adminID))

	w := f.doJSON(t, http.MethodGet, "/admin/api/applications?page=2&limit=2", nil, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeJSON(t, w)
	assert.Len(t, body["data"], 1)
	assert.Equal(t, map[string]any{"page": 2.0, "limit": 2.0, "total": 3.0}, body["pagination"])

	w = f.doJSON(t, http.MethodGet, "/admin/api/applications?page=0", nil, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid pagination params", decodeJSON(t, w)["error"])
}

func TestParsePaginationParams(t *testing.T) {
	page, limit, err := parsePaginationParams("", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), page)
	assert.Equal(t, int64(defaultPageLimit), limit)

	page, limit, err = parsePaginationParams(" 3 ", "500")
	require.NoError(t, err)
	assert.Equal(t, int64(3), page)
	assert.Equal(t, int64(maxPageLimit), limit)

	for _, bad := range [][2]string{{"-1", "10"}, {"1", "0"}, {"x", ""}, {"", "ten"}} {
		_, _, err := parsePaginationParams(bad[0], bad[1])
		assert.Error(t, err, bad)
	}
}

func TestProductsListing(t *testing.T) {
	f := newFixture(t)

	w := f.do(httptest.NewRequest(http.MethodGet, "/products?search=phone&page=2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Total-Count"))
	assert.Equal(t, "phone", f.catalog.lastQ.Search)
	assert.Zero(t, f.catalog.lastQ.Page, "pagination needs both page and limit")

	w = f.do(httptest.NewRequest(http.MethodGet, "/products?page=2&limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(2), f.catalog.lastQ.Page)
	assert.Equal(t, int64(5), f.catalog.lastQ.Limit)

	w = f.do(httptest.NewRequest(http.MethodGet, "/products?page=a&limit=5", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductDetail(t *testing.T) {
	f := newFixture(t)
	hidden := f.product
	hidden.ID = primitive.NewObjectID()
	hidden.IsActive = false
	f.catalog.products = append(f.catalog.products, hidden)

	w := f.do(httptest.NewRequest(http.MethodGet, "/products/"+f.product.ID.Hex(), nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Phone 15", decodeJSON(t, w)["name"])

	w = f.do(httptest.NewRequest(http.MethodGet, "/products/"+hidden.ID.Hex(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(httptest.NewRequest(http.MethodGet, "/products/"+primitive.NewObjectID().Hex(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
