package ingest

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/userjourney-io/journeylog-backend/pkg/enums"
	apperrors "github.com/userjourney-io/journeylog-backend/pkg/errors"
)

// EventEnvelope is the wire shape of a journey event, used by both the
// Pub/Sub subscription and the direct HTTP ingestion endpoint. A zero or
// absent user_id is an anonymous visitor, so only negative ids fail.
type EventEnvelope struct {
	EventID           string    `json:"event_id" validate:"omitempty,uuid"`
	UserID            int64     `json:"user_id" validate:"gte=0"`
	ProductID         int64     `json:"product_id" validate:"gte=0"`
	ProductName       string    `json:"product_name"`
	ProductTags       string    `json:"product_tags"`
	ProductCategories string    `json:"product_categories"`
	Action            string    `json:"action" validate:"required"`
	OccurredAt        time.Time `json:"occurred_at"`
}

var validate = validator.New()

// ParseEnvelope decodes and validates a raw journey event payload.
func ParseEnvelope(data []byte) (*EventEnvelope, error) {
	var envelope EventEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, err, "event payload is not valid JSON")
	}
	if err := validate.Struct(&envelope); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, err, "event payload failed validation")
	}
	if _, err := enums.ParseJourneyAction(envelope.Action); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, err, "unknown journey action").
			WithDetails(map[string]any{"action": envelope.Action})
	}
	return &envelope, nil
}

// Input converts the envelope into a recorder input, stamping the receive
// time when the producer did not set one.
func (e *EventEnvelope) Input(now time.Time) EventInput {
	occurred := e.OccurredAt
	if occurred.IsZero() {
		occurred = now
	}
	return EventInput{
		UserID:            e.UserID,
		ProductID:         e.ProductID,
		ProductName:       e.ProductName,
		ProductTags:       e.ProductTags,
		ProductCategories: e.ProductCategories,
		Action:            enums.JourneyAction(e.Action),
		OccurredAt:        occurred.UTC(),
	}
}
