package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"

	"storefront/internal/apperr"
	"storefront/internal/insights"
)

type InsightsAnalyzer interface {
	Analyze(ctx context.Context, m insights.Metrics) (insights.Analysis, error)
}

type analyzeInsightsRequest struct {
	InsightsData insights.Metrics `json:"insightsData"`
}

func AnalyzeInsights(analyzer InsightsAnalyzer) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /analyze-insights"

		var req analyzeInsightsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidBody(c, route, err)
			return
		}

		out, err := analyzer.Analyze(c.Request.Context(), req.InsightsData)
		if err != nil {
			if apperr.StatusOf(err) >= http.StatusInternalServerError {
				respondWithError(c, route, err, gin.H{"details": causeOf(err)})
				return
			}
			respondWithError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// causeOf returns the message of the error wrapped by an *apperr.Error.
func causeOf(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	return err.Error()
}
