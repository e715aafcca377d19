package funnel

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/apperr"
)

// ConversionStep is the funnel step that counts a session as converted.
const ConversionStep = "order_submitted"

// Counts is the raw aggregate the event store produces. Every map counts
// distinct sessions, not events.
type Counts struct {
	Events          int
	Sessions        int
	StepSessions    map[string]int
	DeviceSessions  map[string]int
	TrafficSessions map[string]int
	TimedEvents     int
	TimeSpentTotal  int64
}

// Metrics is the aggregated view handed to admins and to insights analysis.
// Rates are percentages rounded to two decimals.
type Metrics struct {
	Since               time.Time          `json:"since"`
	TotalEvents         int                `json:"totalEvents"`
	TotalSessions       int                `json:"totalSessions"`
	ConversionRate      float64            `json:"conversionRate"`
	StepSessions        map[string]int     `json:"stepSessions"`
	StepRates           map[string]float64 `json:"stepRates"`
	DeviceBreakdown     map[string]int     `json:"deviceBreakdown"`
	TrafficSources      map[string]int     `json:"trafficSources"`
	AvgTimeSpentSeconds float64            `json:"avgTimeSpentSeconds"`
}

type CountSource interface {
	FunnelCounts(ctx context.Context, since time.Time) (Counts, error)
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	v, _ := decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(whole)), 2).
		Float64()
	return v
}

// Summarize turns raw counts into rates.
func Summarize(c Counts, since time.Time) Metrics {
	m := Metrics{
		Since:           since,
		TotalEvents:     c.Events,
		TotalSessions:   c.Sessions,
		ConversionRate:  percent(c.StepSessions[ConversionStep], c.Sessions),
		StepSessions:    orEmpty(c.StepSessions),
		StepRates:       make(map[string]float64, len(c.StepSessions)),
		DeviceBreakdown: orEmpty(c.DeviceSessions),
		TrafficSources:  orEmpty(c.TrafficSessions),
	}
	for step, n := range c.StepSessions {
		m.StepRates[step] = percent(n, c.Sessions)
	}
	if c.TimedEvents > 0 {
		m.AvgTimeSpentSeconds, _ = decimal.NewFromInt(c.TimeSpentTotal).
			DivRound(decimal.NewFromInt(int64(c.TimedEvents)), 2).
			Float64()
	}
	return m
}

func orEmpty(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}

type Aggregator struct {
	source CountSource
	lg     *zap.Logger
}

func NewAggregator(source CountSource, lg *zap.Logger) *Aggregator {
	return &Aggregator{source: source, lg: lg}
}

// Metrics aggregates every event created at or after since.
func (a *Aggregator) Metrics(ctx context.Context, since time.Time) (Metrics, error) {
	c, err := a.source.FunnelCounts(ctx, since)
	if err != nil {
		a.lg.Error("aggregate funnel events", zap.Time("since", since), zap.Error(err))
		return Metrics{}, apperr.Provider(err, "could not aggregate funnel metrics")
	}
	return Summarize(c, since), nil
}
