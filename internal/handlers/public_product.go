package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/database"
	"storefront/internal/models"
)

type ProductCatalog interface {
	List(ctx context.Context, q database.ProductQuery) ([]models.Product, int64, error)
	FindProduct(ctx context.Context, id string) (models.Product, error)
}

/*
GET /products
- pagination is optional: only applied when both page and limit are sent
- the total match count is returned in X-Total-Count
*/
func GetProducts(products ProductCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products"

		q := database.ProductQuery{Search: c.Query("search"), Brand: c.Query("brand")}
		if pageStr, limitStr := c.Query("page"), c.Query("limit"); pageStr != "" && limitStr != "" {
			page, limit, err := parsePaginationParams(pageStr, limitStr)
			if err != nil {
				respondWithError(c, route, err)
				return
			}
			q.Page, q.Limit = page, limit
		}

		list, total, err := products.List(c.Request.Context(), q)
		if err != nil {
			respondWithError(c, route, apperr.Provider(err, "db error"))
			return
		}

		requestLogger(c, route).Debug("returning products", zap.Int("count", len(list)))
		c.Header("X-Total-Count", strconv.FormatInt(total, 10))
		c.JSON(http.StatusOK, list)
	}
}

func GetProduct(products ProductCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/:id"

		p, err := products.FindProduct(c.Request.Context(), c.Param("id"))
		if err != nil {
			if apperr.KindOf(err) == apperr.KindInternal {
				err = apperr.Provider(err, "db error")
			}
			respondWithError(c, route, err)
			return
		}
		if !p.IsActive {
			respondWithError(c, route, apperr.NotFound("product not found"))
			return
		}
		c.JSON(http.StatusOK, p)
	}
}
