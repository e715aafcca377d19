package insights

import (
	"context"
	"time"

	"go.uber.org/zap"

	"storefront/internal/apperr"
)

const dateLayout = "2006-01-02"

// Analysis is the response for one insights request.
type Analysis struct {
	Recommendations string `json:"recommendations"`
	Title           string `json:"title"`
	Date            string `json:"date"`
}

type Analyzer struct {
	gen       Generator
	extractor ReportExtractor
	lg        *zap.Logger
	now       func() time.Time
}

func NewAnalyzer(gen Generator, extractor ReportExtractor, lg *zap.Logger) *Analyzer {
	if extractor == nil {
		extractor = HeadingExtractor{}
	}
	return &Analyzer{gen: gen, extractor: extractor, lg: lg, now: time.Now}
}

// Analyze is not idempotent: the model samples, so equal metrics may yield
// different reports.
func (a *Analyzer) Analyze(ctx context.Context, m Metrics) (Analysis, error) {
	if len(m) == 0 {
		return Analysis{}, apperr.BadRequest("insightsData is required")
	}

	prompt := BuildPrompt(m)
	start := a.now()
	text, err := a.gen.Generate(ctx, systemPrompt, prompt)
	if err != nil {
		a.lg.Error("insights generation failed", zap.Int("prompt_bytes", len(prompt)), zap.Error(err))
		return Analysis{}, apperr.Provider(err, "failed to generate insights")
	}

	report := a.extractor.Extract(text)
	a.lg.Info("insights generated",
		zap.String("title", report.Title),
		zap.Int("response_bytes", len(text)),
		zap.Duration("took", a.now().Sub(start)),
	)
	return Analysis{
		Recommendations: report.Recommendations,
		Title:           report.Title,
		Date:            a.now().UTC().Format(dateLayout),
	}, nil
}
