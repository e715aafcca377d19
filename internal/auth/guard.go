package auth

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/apperr"
)

type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// AdminDirectory answers whether an identity holds the admin role.
type AdminDirectory interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// Guard is the single authorization check in front of every privileged
// operation: bearer token, then identity, then admin membership.
type Guard struct {
	verifier IdentityVerifier
	admins   AdminDirectory
	lg       *zap.Logger
}

func NewGuard(verifier IdentityVerifier, admins AdminDirectory, lg *zap.Logger) *Guard {
	return &Guard{verifier: verifier, admins: admins, lg: lg}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return "", false
	}
	parts := strings.Fields(raw)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// RequireAdmin fails closed at each gate. The token itself is never logged.
func (g *Guard) RequireAdmin(ctx context.Context, authorization string) (Identity, error) {
	token, ok := BearerToken(authorization)
	if !ok {
		g.lg.Warn("admin guard: missing credential",
			zap.Bool("header_present", strings.TrimSpace(authorization) != ""))
		return Identity{}, apperr.Unauthorized("missing credential")
	}

	id, err := g.verifier.Verify(ctx, token)
	if err != nil {
		g.lg.Warn("admin guard: invalid token", zap.Bool("token_present", true), zap.Error(err))
		return Identity{}, apperr.Wrap(err, apperr.KindAuth, "invalid token")
	}

	isAdmin, err := g.admins.IsAdmin(ctx, id.UserID)
	if err != nil {
		g.lg.Error("admin guard: admin lookup failed", zap.String("user_id", id.UserID), zap.Error(err))
		return Identity{}, apperr.Provider(err, "authorization lookup failed")
	}
	if !isAdmin {
		g.lg.Warn("admin guard: not an admin", zap.String("user_id", id.UserID))
		return Identity{}, apperr.Forbidden("not an admin")
	}

	g.lg.Debug("admin guard: granted", zap.String("user_id", id.UserID))
	return id, nil
}
