package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) seed(t *testing.T, bucket, objectPath, content string) {
	t.Helper()
	_, err := f.objects.Put(context.Background(), bucket, objectPath, strings.NewReader(content))
	require.NoError(t, err)
}

func (f *fixture) signedURL(t *testing.T, documentPath string) *url.URL {
	t.Helper()
	w := f.doJSON(t, http.MethodPost, "/admin-access-document",
		map[string]string{"documentPath": documentPath}, authHeader(f.bearer(t, f.adminID)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	raw, ok := decodeJSON(t, w)["signedUrl"].(string)
	require.True(t, ok)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestAccessDocumentChecksCredentialsFirst(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		header string
		body   string
		status int
	}{
		{"no header", "", `{"documentPath":"s1/national-id"}`, http.StatusUnauthorized},
		{"not bearer", "Basic abc", `{"documentPath":"s1/national-id"}`, http.StatusUnauthorized},
		{"bad token", "Bearer nope", `{"documentPath":"s1/national-id"}`, http.StatusUnauthorized},
		{"non-admin", f.bearer(t, f.customerID), `{"documentPath":"s1/national-id"}`, http.StatusForbidden},
		{"no header and broken body", "", `{`, http.StatusUnauthorized},
		{"non-admin and empty path", f.bearer(t, f.customerID), `{}`, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := authHeader(tt.header)
			if tt.header == "" {
				h = nil
			}
			w := f.doJSON(t, http.MethodPost, "/admin-access-document", tt.body, h)
			assert.Equal(t, tt.status, w.Code)
			assert.NotContains(t, w.Body.String(), "signedUrl")
		})
	}
}

func TestAccessDocumentPathErrors(t *testing.T) {
	f := newFixture(t)
	admin := authHeader(f.bearer(t, f.adminID))

	w := f.doJSON(t, http.MethodPost, "/admin-access-document", `{}`, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "documentPath is required", decodeJSON(t, w)["error"])

	w = f.doJSON(t, http.MethodPost, "/admin-access-document", `{"documentPath":"../../etc/passwd"}`, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.doJSON(t, http.MethodPost, "/admin-access-document", `{"documentPath":"s9/missing"}`, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "document not found", decodeJSON(t, w)["error"])
}

func TestAccessDocumentBucketPrefixIsOptional(t *testing.T) {
	f := newFixture(t)
	f.seed(t, testBucket, "s1/national-id", "id-scan")

	bare := f.signedURL(t, "s1/national-id")
	prefixed := f.signedURL(t, "verification-documents/s1/national-id")

	assert.Equal(t, "/documents/verification-documents/s1/national-id", bare.Path)
	assert.Equal(t, bare.Path, prefixed.Path)
	assert.Equal(t, "files.test", bare.Host)
}

func TestSignedURLServesDocument(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "archive", "2024/salary.pdf", "%PDF-1.7 salary")

	u := f.signedURL(t, "archive/2024/salary.pdf")
	w := f.do(httptest.NewRequest(http.MethodGet, u.RequestURI(), nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "%PDF-1.7 salary", w.Body.String())
	assert.Equal(t, "private, no-store", w.Header().Get("Cache-Control"))
}

func TestSignedURLIsBoundToItsDocument(t *testing.T) {
	f := newFixture(t)
	f.seed(t, testBucket, "s1/national-id", "id-scan")
	f.seed(t, testBucket, "s2/national-id", "someone else")

	u := f.signedURL(t, "s1/national-id")
	token := u.Query().Get("token")

	w := f.do(httptest.NewRequest(http.MethodGet, "/documents/verification-documents/s2/national-id?token="+url.QueryEscape(token), nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(httptest.NewRequest(http.MethodGet, "/documents/verification-documents/s1/national-id?token=forged", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(httptest.NewRequest(http.MethodGet, "/documents/verification-documents/s1/national-id", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
