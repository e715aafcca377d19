// Package docaccess lets admins fetch stored verification documents through
// short-lived signed URLs.
package docaccess

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/auth"
	"storefront/internal/storage"
)

const DefaultURLTTL = 1800 * time.Second

type Authorizer interface {
	RequireAdmin(ctx context.Context, authorization string) (auth.Identity, error)
}

type ObjectStore interface {
	Exists(ctx context.Context, bucket, objectPath string) (bool, error)
}

type URLSigner interface {
	Sign(bucket, objectPath string, ttl time.Duration) (string, error)
}

// Location is a document path split into its bucket and in-bucket path.
type Location struct {
	Bucket string
	Path   string
}

// ResolvePath accepts either a bare in-bucket path or one prefixed with a
// known bucket name. buckets[0] is used when no prefix matches.
func ResolvePath(raw string, buckets []string) (Location, error) {
	if len(buckets) == 0 {
		return Location{}, errors.New("no buckets configured")
	}
	p := strings.TrimPrefix(strings.TrimSpace(raw), "/")
	if p == "" {
		return Location{}, apperr.BadRequest("documentPath is required")
	}

	loc := Location{Bucket: buckets[0], Path: p}
	for _, b := range buckets {
		if rest, ok := strings.CutPrefix(p, b+"/"); ok {
			loc = Location{Bucket: b, Path: rest}
			break
		}
	}

	clean, err := storage.CleanObjectPath(loc.Path)
	if err != nil {
		return Location{}, apperr.Wrap(err, apperr.KindBadRequest, "invalid documentPath")
	}
	loc.Path = clean
	return loc, nil
}

type Gateway struct {
	authz   Authorizer
	objects ObjectStore
	signer  URLSigner
	buckets []string
	ttl     time.Duration
	lg      *zap.Logger
}

// NewGateway builds a gateway over buckets; the first bucket is the default
// for unprefixed paths. A non-positive ttl means DefaultURLTTL.
func NewGateway(authz Authorizer, objects ObjectStore, signer URLSigner, buckets []string, ttl time.Duration, lg *zap.Logger) *Gateway {
	if ttl <= 0 {
		ttl = DefaultURLTTL
	}
	return &Gateway{
		authz:   authz,
		objects: objects,
		signer:  signer,
		buckets: buckets,
		ttl:     ttl,
		lg:      lg,
	}
}

// SignedURL authorizes the caller as an admin and mints a time-limited URL
// for documentPath. Every failure is terminal for the request.
func (g *Gateway) SignedURL(ctx context.Context, authorization, documentPath string) (string, error) {
	id, err := g.authz.RequireAdmin(ctx, authorization)
	if err != nil {
		return "", err
	}
	lg := g.lg.With(zap.String("user_id", id.UserID), zap.String("document_path", documentPath))

	loc, err := ResolvePath(documentPath, g.buckets)
	if err != nil {
		lg.Warn("document access: bad path", zap.Error(err))
		return "", err
	}
	lg = lg.With(zap.String("bucket", loc.Bucket), zap.String("resolved_path", loc.Path))

	ok, err := g.objects.Exists(ctx, loc.Bucket, loc.Path)
	switch {
	case errors.Is(err, storage.ErrUnknownBucket), errors.Is(err, storage.ErrInvalidPath):
		lg.Warn("document access: rejected path", zap.Error(err))
		return "", apperr.Wrap(err, apperr.KindBadRequest, "invalid documentPath")
	case err != nil:
		lg.Error("document access: storage lookup failed", zap.Error(err))
		return "", apperr.Provider(err, "storage lookup failed")
	case !ok:
		lg.Warn("document access: not found")
		return "", apperr.NotFound("document not found")
	}

	signed, err := g.signer.Sign(loc.Bucket, loc.Path, g.ttl)
	if err != nil {
		lg.Error("document access: signing failed", zap.Error(err))
		return "", apperr.Provider(err, "signing failed")
	}

	lg.Info("document access granted", zap.Duration("ttl", g.ttl))
	return signed, nil
}
