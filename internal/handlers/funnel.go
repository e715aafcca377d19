package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/apperr"
	"storefront/internal/funnel"
	"storefront/internal/models"
)

type FunnelRecorder interface {
	Record(ctx context.Context, ev funnel.Event) (models.FunnelEvent, error)
}

type FunnelMetricsSource interface {
	Metrics(ctx context.Context, since time.Time) (funnel.Metrics, error)
}

const (
	defaultMetricsDays = 30
	maxMetricsDays     = 365
)

// TrackFunnelEvent records one event. ipAddress and userAgent default to the
// request's own values.
func TrackFunnelEvent(rec FunnelRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /track-funnel-event"

		var ev funnel.Event
		if err := c.ShouldBindJSON(&ev); err != nil {
			invalidBody(c, route, err)
			return
		}
		if ev.IPAddress == "" {
			ev.IPAddress = c.ClientIP()
		}
		if ev.UserAgent == "" {
			ev.UserAgent = c.Request.UserAgent()
		}

		row, err := rec.Record(c.Request.Context(), ev)
		if err != nil {
			respondWithError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": row})
	}
}

// GetFunnelMetrics aggregates the last ?days= days of events (default 30).
func GetFunnelMetrics(source FunnelMetricsSource, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/funnel/metrics"

		days := defaultMetricsDays
		if raw := c.Query("days"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > maxMetricsDays {
				respondWithError(c, route, apperr.BadRequest("days must be between 1 and 365"))
				return
			}
			days = n
		}

		since := now().UTC().AddDate(0, 0, -days)
		m, err := source.Metrics(c.Request.Context(), since)
		if err != nil {
			respondWithError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, m)
	}
}
