// Package funnel records conversion funnel events and summarizes them.
package funnel

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// Event is the payload accepted from clients.
type Event struct {
	SessionID        string `json:"sessionId" validate:"required"`
	UserID           string `json:"userId,omitempty"`
	FunnelStep       string `json:"funnelStep" validate:"required"`
	DeviceType       string `json:"deviceType" validate:"required"`
	TrafficSource    string `json:"trafficSource" validate:"required"`
	IPAddress        string `json:"ipAddress,omitempty"`
	UserAgent        string `json:"userAgent,omitempty"`
	TimeSpentSeconds *int   `json:"timeSpentSeconds,omitempty" validate:"omitempty,min=0"`
	Referrer         string `json:"referrer,omitempty"`
}

func (e *Event) trim() {
	for _, s := range []*string{
		&e.SessionID, &e.UserID, &e.FunnelStep, &e.DeviceType,
		&e.TrafficSource, &e.IPAddress, &e.UserAgent, &e.Referrer,
	} {
		*s = strings.TrimSpace(*s)
	}
}

type Store interface {
	InsertFunnelEvent(ctx context.Context, ev *models.FunnelEvent) error
}

type Recorder struct {
	store    Store
	validate *validator.Validate
	lg       *zap.Logger
	now      func() time.Time
}

func NewRecorder(store Store, lg *zap.Logger) *Recorder {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	return &Recorder{store: store, validate: v, lg: lg, now: time.Now}
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// Validate reports every missing required field at once.
func (r *Recorder) Validate(ev Event) error {
	err := r.validate.Struct(ev)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Wrap(err, apperr.KindBadRequest, "invalid funnel event")
	}

	var missing []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
			continue
		}
		return apperr.Wrap(err, apperr.KindBadRequest, fe.Field()+" must not be negative")
	}
	return apperr.Wrap(err, apperr.KindBadRequest, "missing required field(s): "+strings.Join(missing, ", "))
}

// Record validates ev and persists it as one row. Nothing is written when
// validation fails.
func (r *Recorder) Record(ctx context.Context, ev Event) (models.FunnelEvent, error) {
	ev.trim()
	if err := r.Validate(ev); err != nil {
		r.lg.Debug("funnel event rejected", zap.String("session_id", ev.SessionID), zap.Error(err))
		return models.FunnelEvent{}, err
	}

	row := models.FunnelEvent{
		SessionID:        ev.SessionID,
		UserID:           ev.UserID,
		FunnelStep:       ev.FunnelStep,
		DeviceType:       ev.DeviceType,
		TrafficSource:    ev.TrafficSource,
		IPAddress:        ev.IPAddress,
		UserAgent:        ev.UserAgent,
		TimeSpentSeconds: ev.TimeSpentSeconds,
		Referrer:         ev.Referrer,
		CreatedAt:        r.now().UTC(),
	}
	if err := r.store.InsertFunnelEvent(ctx, &row); err != nil {
		r.lg.Error("insert funnel event", zap.String("session_id", ev.SessionID), zap.Error(err))
		return models.FunnelEvent{}, apperr.Provider(errors.Wrap(err, "insert funnel event"), "could not record funnel event")
	}
	return row, nil
}
