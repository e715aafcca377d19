package auth

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/apperr"
)

type fakeVerifier struct {
	identities map[string]Identity
}

func (f fakeVerifier) Verify(_ context.Context, token string) (Identity, error) {
	id, ok := f.identities[token]
	if !ok {
		return Identity{}, errors.New("unknown token")
	}
	return id, nil
}

type fakeDirectory struct {
	admins map[string]bool
	err    error
	calls  int
}

func (f *fakeDirectory) IsAdmin(_ context.Context, userID string) (bool, error) {
	f.calls++
	return f.admins[userID], f.err
}

func newTestGuard(dir *fakeDirectory) *Guard {
	verifier := fakeVerifier{identities: map[string]Identity{
		"admin-token": {UserID: "admin-1"},
		"user-token":  {UserID: "user-1"},
	}}
	return NewGuard(verifier, dir, zap.NewNop())
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{header: "Bearer abc", want: "abc", ok: true},
		{header: "bearer   abc ", want: "abc", ok: true},
		{header: "", ok: false},
		{header: "Basic abc", ok: false},
		{header: "Bearer", ok: false},
	}
	for _, tt := range tests {
		got, ok := BearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		dirErr   error
		wantKind apperr.Kind
		wantUser string
	}{
		{name: "missing header", header: "", wantKind: apperr.KindAuth},
		{name: "malformed header", header: "Token admin-token", wantKind: apperr.KindAuth},
		{name: "unknown token", header: "Bearer nope", wantKind: apperr.KindAuth},
		{name: "not an admin", header: "Bearer user-token", wantKind: apperr.KindAuthorization},
		{name: "directory down", header: "Bearer admin-token", dirErr: errors.New("mongo down"), wantKind: apperr.KindProvider},
		{name: "admin", header: "Bearer admin-token", wantUser: "admin-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := &fakeDirectory{admins: map[string]bool{"admin-1": true}, err: tt.dirErr}
			id, err := newTestGuard(dir).RequireAdmin(context.Background(), tt.header)
			if tt.wantUser == "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUser, id.UserID)
		})
	}
}

func TestRequireAdminSkipsDirectoryWithoutIdentity(t *testing.T) {
	dir := &fakeDirectory{}
	_, err := newTestGuard(dir).RequireAdmin(context.Background(), "")
	require.Error(t, err)
	assert.Zero(t, dir.calls)
}
