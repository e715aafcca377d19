package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/apperr"
	"storefront/internal/middleware"
	"storefront/internal/models"
)

type ApplicationLister interface {
	List(ctx context.Context, page, limit int64) ([]models.LeaseApplication, int64, error)
}

func AdminMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middleware.Identity(c)
		if !ok {
			respondWithError(c, "GET /admin/api/me", apperr.Unauthorized("missing credential"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "userId": id.UserID, "email": id.Email})
	}
}

func ListApplications(apps ApplicationLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/applications"

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, route, err)
			return
		}

		list, total, err := apps.List(c.Request.Context(), page, limit)
		if err != nil {
			respondWithError(c, route, apperr.Provider(err, "db error"))
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"data":       list,
			"pagination": paginationBody(page, limit, total),
		})
	}
}
