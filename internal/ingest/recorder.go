package ingest

import (
	"context"
	"time"

	"github.com/userjourney-io/journeylog-backend/internal/journal"
	"github.com/userjourney-io/journeylog-backend/pkg/enums"
	apperrors "github.com/userjourney-io/journeylog-backend/pkg/errors"
	"github.com/userjourney-io/journeylog-backend/pkg/logger"
	"github.com/userjourney-io/journeylog-backend/pkg/metrics"
)

// EventInput is one journey event ready to be appended.
type EventInput struct {
	UserID            int64
	ProductID         int64
	ProductName       string
	ProductTags       string
	ProductCategories string
	Action            enums.JourneyAction
	OccurredAt        time.Time
}

// Recorder appends journey events to the store. Recording is an analytics
// side effect: it must never fail the operation that triggered it, so
// Record swallows every error after logging and counting it.
type Recorder struct {
	journal journal.Repository
	metrics *metrics.IngestMetrics
	logg    *logger.Logger
}

// NewRecorder wires the recorder. ingestMetrics may be nil.
func NewRecorder(journalRepo journal.Repository, ingestMetrics *metrics.IngestMetrics, logg *logger.Logger) *Recorder {
	return &Recorder{
		journal: journalRepo,
		metrics: ingestMetrics,
		logg:    logg,
	}
}

// Record appends the event, fire-and-forget.
func (r *Recorder) Record(ctx context.Context, input EventInput) {
	_ = r.TryRecord(ctx, input)
}

// TryRecord appends the event and reports the outcome. Validation
// failures count as dropped, storage failures as failed; both are logged.
func (r *Recorder) TryRecord(ctx context.Context, input EventInput) error {
	event := &journal.Event{
		UserID:            input.UserID,
		ProductID:         input.ProductID,
		ProductName:       input.ProductName,
		ProductTags:       input.ProductTags,
		ProductCategories: input.ProductCategories,
		Action:            input.Action,
		OccurredAt:        input.OccurredAt,
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	if _, err := r.journal.Append(ctx, event); err != nil {
		logCtx := ctx
		if r.logg != nil {
			logCtx = r.logg.WithFields(ctx, map[string]any{
				"user_id": input.UserID,
				"action":  string(input.Action),
			})
		}

		if typed := apperrors.As(err); typed != nil && typed.Code() == apperrors.CodeValidation {
			r.metrics.IncDropped()
			if r.logg != nil {
				r.logg.Warn(r.logg.WithField(logCtx, "error", err.Error()), "journey event dropped")
			}
			return err
		}

		r.metrics.IncFailed(string(input.Action))
		if r.logg != nil {
			r.logg.Error(logCtx, "journey event not recorded", err)
		}
		return err
	}

	r.metrics.IncRecorded(string(input.Action))
	return nil
}
