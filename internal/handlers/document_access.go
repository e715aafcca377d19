package handlers

import (
	"context"
	"net/http"
	"os"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/storage"
)

type DocumentSigner interface {
	SignedURL(ctx context.Context, authorization, documentPath string) (string, error)
}

type ObjectReader interface {
	Open(ctx context.Context, bucket, objectPath string) (*os.File, os.FileInfo, error)
}

type SignedURLVerifier interface {
	Verify(token, bucket, objectPath string) error
}

type accessDocumentRequest struct {
	DocumentPath string `json:"documentPath"`
}

// AccessDocument mints a signed URL for an admin. An unreadable body still
// goes through the guard first, so credentials are always checked before
// the path.
func AccessDocument(gw DocumentSigner) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin-access-document"

		var req accessDocumentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			requestLogger(c, route).Info("unreadable body", zap.Error(err))
			req = accessDocumentRequest{}
		}

		signed, err := gw.SignedURL(c.Request.Context(), c.GetHeader("Authorization"), req.DocumentPath)
		if err != nil {
			respondWithError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"signedUrl": signed})
	}
}

// ServeDocument streams a stored document to the holder of a valid signed URL.
func ServeDocument(objects ObjectReader, signer SignedURLVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /documents/:bucket/*path"

		bucket := c.Param("bucket")
		objectPath, err := storage.CleanObjectPath(c.Param("path"))
		if err != nil {
			respondWithError(c, route, apperr.NotFound("document not found"))
			return
		}

		if err := signer.Verify(c.Query("token"), bucket, objectPath); err != nil {
			respondWithError(c, route, apperr.Wrap(err, apperr.KindAuth, "invalid or expired link"))
			return
		}

		f, info, err := objects.Open(c.Request.Context(), bucket, objectPath)
		switch {
		case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrUnknownBucket), errors.Is(err, storage.ErrInvalidPath):
			respondWithError(c, route, apperr.Wrap(err, apperr.KindNotFound, "document not found"))
			return
		case err != nil:
			respondWithError(c, route, apperr.Provider(err, "storage error"))
			return
		}
		defer f.Close()

		c.Header("Cache-Control", "private, no-store")
		c.Header("X-Content-Type-Options", "nosniff")
		http.ServeContent(c.Writer, c.Request, path.Base(objectPath), info.ModTime(), f)
	}
}
