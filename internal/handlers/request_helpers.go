package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/middleware"
)

const productsRedirect = "/products"

func requestLogger(c *gin.Context, route string) *zap.Logger {
	return middleware.Logger(c, zap.L()).With(zap.String("route", route))
}

// respondWithError maps err onto its status and writes {"error": message}
// plus any extra fields.
func respondWithError(c *gin.Context, route string, err error, extra ...gin.H) {
	status := apperr.StatusOf(err)
	lg := requestLogger(c, route)
	if status >= http.StatusInternalServerError {
		lg.Error("returning error", zap.Int("status", status), zap.Error(err))
	} else {
		lg.Info("returning error", zap.Int("status", status), zap.Error(err))
	}

	body := gin.H{"error": apperr.Message(err)}
	for _, e := range extra {
		for k, v := range e {
			body[k] = v
		}
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

func invalidBody(c *gin.Context, route string, err error, extra ...gin.H) {
	respondWithError(c, route, apperr.Wrap(err, apperr.KindBadRequest, "invalid body"), extra...)
}
