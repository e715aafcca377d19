package handlers

import (
	"net/http"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/insights"
)

func TestAnalyzeInsights(t *testing.T) {
	f := newFixture(t)

	w := f.doJSON(t, http.MethodPost, "/analyze-insights", map[string]any{
		"insightsData": map[string]any{"totalSessions": 120, "conversionRate": 4.2},
	}, nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeJSON(t, w)
	assert.Equal(t, "Q1 Leasing Report", body["title"])
	assert.Equal(t, "## Executive Summary\nSteady growth.", body["recommendations"])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, body["date"])
}

func TestAnalyzeInsightsRequiresData(t *testing.T) {
	f := newFixture(t)

	for _, body := range []string{`{}`, `{"insightsData":{}}`, `{"insightsData":null}`} {
		w := f.doJSON(t, http.MethodPost, "/analyze-insights", body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestAnalyzeInsightsReportsGenerationFailure(t *testing.T) {
	f := newFixture(t, func(d *Deps) {
		gen := fakeGenerator{err: &insights.StatusError{StatusCode: http.StatusTooManyRequests, Body: "rate limited"}}
		d.Insights = insights.NewAnalyzer(gen, nil, zap.NewNop())
	})

	w := f.doJSON(t, http.MethodPost, "/analyze-insights", map[string]any{
		"insightsData": map[string]any{"totalSessions": 1},
	}, nil)

	assert.GreaterOrEqual(t, w.Code, http.StatusInternalServerError)
	body := decodeJSON(t, w)
	assert.Equal(t, "failed to generate insights", body["error"])
	assert.Equal(t, "text generation returned status 429", body["details"])
}

func TestCauseOf(t *testing.T) {
	assert.Equal(t, "plain", causeOf(errors.New("plain")))
}
