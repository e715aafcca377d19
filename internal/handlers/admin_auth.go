package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/apperr"
	"storefront/internal/auth"
	"storefront/internal/models"
)

type AccountFinder interface {
	FindByEmail(ctx context.Context, email string) (models.Account, error)
}

type TokenIssuer interface {
	Issue(id auth.Identity) (string, time.Time, error)
	TTL() time.Duration
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges account credentials for an access token. Whether the
// account may use admin routes is decided later by the admin guard.
func Login(accounts AccountFinder, tokens TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/login"

		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidBody(c, route, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" || strings.TrimSpace(req.Password) == "" {
			respondWithError(c, route, apperr.BadRequest("email and password are required"))
			return
		}

		invalid := apperr.Unauthorized("invalid credentials")
		acc, err := accounts.FindByEmail(c.Request.Context(), email)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				respondWithError(c, route, invalid)
				return
			}
			respondWithError(c, route, apperr.Provider(err, "login failed"))
			return
		}
		if !acc.IsActive {
			respondWithError(c, route, invalid)
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.Password)); err != nil {
			respondWithError(c, route, invalid)
			return
		}

		token, exp, err := tokens.Issue(auth.Identity{UserID: acc.ID.Hex(), Email: acc.Email})
		if err != nil {
			respondWithError(c, route, apperr.Wrap(err, apperr.KindInternal, "token generation failed"))
			return
		}

		requestLogger(c, route).Info("login", zap.String("user_id", acc.ID.Hex()))
		c.JSON(http.StatusOK, gin.H{
			"accessToken": token,
			"tokenType":   "Bearer",
			"expiresIn":   int64(tokens.TTL().Seconds()),
			"expiresAt":   exp.UTC(),
		})
	}
}
