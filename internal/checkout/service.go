package checkout

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

type ProductFinder interface {
	FindProduct(ctx context.Context, id string) (models.Product, error)
}

type ApplicationWriter interface {
	InsertApplication(ctx context.Context, app *models.LeaseApplication) error
}

type DocumentStore interface {
	Put(ctx context.Context, bucket, objectPath string, r io.Reader) (int64, error)
	Delete(ctx context.Context, bucket, objectPath string) error
}

// Upload is one file received from the documents step.
type Upload struct {
	Filename    string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// Service runs checkout sessions end to end: configuration, the wizard steps,
// document staging and final submission.
type Service struct {
	store        *Store
	products     ProductFinder
	applications ApplicationWriter
	documents    DocumentStore
	bucket       string
	lg           *zap.Logger
	now          func() time.Time
}

func NewService(store *Store, products ProductFinder, applications ApplicationWriter, documents DocumentStore, bucket string, lg *zap.Logger) *Service {
	return &Service{
		store:        store,
		products:     products,
		applications: applications,
		documents:    documents,
		bucket:       bucket,
		lg:           lg,
		now:          time.Now,
	}
}

// DiscardUploads deletes every file a dropped session staged. It is meant to
// be the store's discard hook.
func DiscardUploads(documents DocumentStore, lg *zap.Logger) func(*Session) {
	return func(sess *Session) {
		for _, f := range sess.Wizard().StoredFiles() {
			if err := documents.Delete(context.Background(), f.Bucket, f.Path); err != nil {
				lg.Warn("discard checkout upload", zap.String("session_id", sess.ID), zap.String("path", f.QualifiedPath()), zap.Error(err))
			}
		}
	}
}

func (s *Service) Start(ctx context.Context, sel Selection) (SessionView, error) {
	if strings.TrimSpace(sel.ProductID) == "" {
		return SessionView{}, apperr.BadRequest("productId is required")
	}
	product, err := s.products.FindProduct(ctx, sel.ProductID)
	if err != nil {
		return SessionView{}, err
	}
	cfg, err := Configure(product, sel)
	if err != nil {
		return SessionView{}, err
	}

	view := s.store.Create(cfg)
	s.lg.Info("checkout started",
		zap.String("session_id", view.ID),
		zap.String("product_id", cfg.ProductID),
		zap.Float64("price", cfg.Price),
	)
	return view, nil
}

func (s *Service) Get(id string) (SessionView, error) {
	view, err := s.store.Do(id, func(*Session) error { return nil })
	if err != nil {
		return SessionView{}, err
	}
	return view, nil
}

// SubmitCustomerInfo advances 1→2. The session and its step are checked
// before input is validated in the given locale.
func (s *Service) SubmitCustomerInfo(id string, input CustomerInfo, locale Locale) (SessionView, error) {
	return s.store.Do(id, func(sess *Session) error {
		if sess.Wizard().Step() != StepCustomerInfo {
			return wrongStep(StepCustomerInfo, sess.Wizard().Step())
		}
		info, err := ValidateCustomerInfo(input, locale)
		if err != nil {
			return err
		}
		return sess.Wizard().SubmitCustomerInfo(info)
	})
}

func (s *Service) SelectProtection(id string, include bool) (SessionView, error) {
	return s.store.Do(id, func(sess *Session) error {
		return sess.Wizard().SelectProtection(include)
	})
}

// UploadDocuments stages both files under <session id>/ and advances 3→4.
// Files are written outside the session lock.
func (s *Service) UploadDocuments(ctx context.Context, id string, nationalID, salaryCertificate Upload) (SessionView, error) {
	if _, err := s.store.Do(id, func(sess *Session) error {
		if sess.Wizard().Step() != StepDocuments {
			return wrongStep(StepDocuments, sess.Wizard().Step())
		}
		return nil
	}); err != nil {
		return SessionView{}, err
	}

	if err := requireUpload("national-id", nationalID); err != nil {
		return SessionView{}, err
	}
	if err := requireUpload("salary-certificate", salaryCertificate); err != nil {
		return SessionView{}, err
	}

	nid, err := s.stage(ctx, id, "national-id", nationalID)
	if err != nil {
		return SessionView{}, err
	}
	salary, err := s.stage(ctx, id, "salary-certificate", salaryCertificate)
	if err != nil {
		s.unstage(id, nid)
		return SessionView{}, err
	}

	view, err := s.store.Do(id, func(sess *Session) error {
		return sess.Wizard().SubmitDocuments(VerificationDocuments{NationalID: nid, SalaryCertificate: salary})
	})
	if err != nil {
		s.unstage(id, nid, salary)
		return SessionView{}, err
	}
	s.lg.Info("checkout documents staged", zap.String("session_id", id))
	return view, nil
}

func requireUpload(name string, up Upload) error {
	if up.Open == nil {
		return apperr.Wrap(ErrMissingDocument, apperr.KindBadRequest, name+" file is required")
	}
	return nil
}

// unstage deletes files written by an upload that never reached the wizard.
func (s *Service) unstage(sessionID string, files ...StoredFile) {
	for _, f := range files {
		if err := s.documents.Delete(context.Background(), f.Bucket, f.Path); err != nil {
			s.lg.Warn("remove staged upload", zap.String("session_id", sessionID), zap.String("path", f.QualifiedPath()), zap.Error(err))
		}
	}
}

func (s *Service) stage(ctx context.Context, sessionID, name string, up Upload) (StoredFile, error) {
	if err := requireUpload(name, up); err != nil {
		return StoredFile{}, err
	}
	rc, err := up.Open()
	if err != nil {
		return StoredFile{}, apperr.Wrap(err, apperr.KindBadRequest, "cannot read "+name+" upload")
	}
	defer rc.Close()

	objectPath := path.Join(sessionID, name)
	size, err := s.documents.Put(ctx, s.bucket, objectPath, rc)
	if err != nil {
		return StoredFile{}, apperr.Provider(err, "document upload failed")
	}
	return StoredFile{
		Bucket:      s.bucket,
		Path:        objectPath,
		Filename:    up.Filename,
		ContentType: up.ContentType,
		Size:        size,
	}, nil
}

// Back steps back once; at step 1 the session ends and view.Exited is set.
func (s *Service) Back(id string) (SessionView, error) {
	return s.store.Do(id, func(sess *Session) error {
		sess.Wizard().GoBack()
		return nil
	})
}

// Submit persists the completed checkout as a lease application and ends the
// session. It is only legal from the review step.
func (s *Service) Submit(ctx context.Context, id string) (models.LeaseApplication, error) {
	review, err := s.store.BeginSubmit(id)
	if err != nil {
		return models.LeaseApplication{}, err
	}

	app := NewApplication(id, review, s.now())
	if err := s.applications.InsertApplication(ctx, &app); err != nil {
		s.store.AbortSubmit(id)
		s.lg.Error("checkout submit failed", zap.String("session_id", id), zap.Error(err))
		if apperr.KindOf(err) == apperr.KindInternal {
			err = apperr.Provider(errors.Wrap(err, "insert application"), "could not submit application")
		}
		return models.LeaseApplication{}, err
	}
	s.store.Remove(id)

	s.lg.Info("checkout submitted",
		zap.String("session_id", id),
		zap.String("application_id", app.ID.Hex()),
		zap.Float64("total_price", app.TotalPrice),
	)
	return app, nil
}

// NewApplication converts a completed checkout into its persisted form.
func NewApplication(sessionID string, r ReviewState, now time.Time) models.LeaseApplication {
	return models.LeaseApplication{
		ID:                primitive.NewObjectID(),
		CheckoutSessionID: sessionID,
		Customer: models.ApplicationCustomer{
			FullName:     r.Customer.FullName,
			Email:        r.Customer.Email,
			Phone:        r.Customer.Phone,
			OrderType:    string(r.Customer.OrderType),
			BusinessName: r.Customer.BusinessName,
		},
		Device: models.ApplicationDevice{
			ProductID:         r.Checkout.ProductID,
			ProductName:       r.Checkout.ProductName,
			ProductImageURL:   r.Checkout.ProductImageURL,
			MonthlyPrice:      r.Checkout.Price,
			SelectedStorage:   r.Checkout.SelectedStorage,
			SelectedColor:     r.Checkout.SelectedColor,
			SelectedCondition: r.Checkout.SelectedCondition,
			LeaseTermMonths:   r.Checkout.SelectedLeaseTerm,
		},
		AddProtection:     r.Protection.AddProtection,
		ProtectionPrice:   r.Protection.ProtectionPrice,
		TotalPrice:        r.TotalPrice(),
		NationalID:        applicationDocument(r.Documents.NationalID),
		SalaryCertificate: applicationDocument(r.Documents.SalaryCertificate),
		Status:            "pending",
		CreatedAt:         now,
	}
}

func applicationDocument(f StoredFile) models.ApplicationDocument {
	return models.ApplicationDocument{
		Path:        f.QualifiedPath(),
		Filename:    f.Filename,
		ContentType: f.ContentType,
		Size:        f.Size,
	}
}
