package ingest

import (
	"context"
	"errors"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	apperrors "github.com/userjourney-io/journeylog-backend/pkg/errors"
	"github.com/userjourney-io/journeylog-backend/pkg/logger"
)

type dedupStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	DedupKey(eventID string) string
}

// Consumer feeds journey events from Pub/Sub into the Recorder, with
// Redis-backed deduplication on the producer-assigned event id.
type Consumer struct {
	subscription *gcppubsub.Subscriber
	recorder     *Recorder
	dedup        dedupStore
	dedupTTL     time.Duration
	logg         *logger.Logger
}

// NewConsumer creates a journey event consumer.
func NewConsumer(subscription *gcppubsub.Subscriber, recorder *Recorder, dedup dedupStore, dedupTTL time.Duration, logg *logger.Logger) (*Consumer, error) {
	if subscription == nil {
		return nil, errors.New("journey subscription is required")
	}
	if recorder == nil {
		return nil, errors.New("recorder is required")
	}
	if dedup == nil {
		return nil, errors.New("dedup store is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}

	return &Consumer{
		subscription: subscription,
		recorder:     recorder,
		dedup:        dedup,
		dedupTTL:     dedupTTL,
		logg:         logg,
	}, nil
}

type processResult struct {
	nack bool
}

// Run starts consuming journey messages until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return c.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if c.process(innerCtx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (c *Consumer) process(ctx context.Context, msg *gcppubsub.Message) processResult {
	logCtx := c.logg.WithField(ctx, "message_id", msg.ID)

	envelope, err := ParseEnvelope(msg.Data)
	if err != nil {
		// Malformed payloads can never succeed on redelivery.
		c.logg.Warn(c.logg.WithField(logCtx, "error", err.Error()), "invalid journey envelope")
		return processResult{}
	}
	logCtx = c.logg.WithFields(logCtx, map[string]any{
		"event_id": envelope.EventID,
		"user_id":  envelope.UserID,
		"action":   envelope.Action,
	})

	var eventID uuid.UUID
	if envelope.EventID != "" {
		eventID, err = uuid.Parse(envelope.EventID)
		if err != nil {
			c.logg.Warn(logCtx, "invalid event id")
			return processResult{}
		}

		fresh, err := c.dedup.SetNX(logCtx, c.dedup.DedupKey(eventID.String()), time.Now().UTC().Unix(), c.dedupTTL)
		if err != nil {
			c.logg.Error(logCtx, "dedup check failed", err)
			return processResult{nack: true}
		}
		if !fresh {
			c.logg.Info(logCtx, "event already processed")
			return processResult{}
		}
	}

	if err := c.recorder.TryRecord(logCtx, envelope.Input(time.Now())); err != nil {
		if typed := apperrors.As(err); typed != nil && typed.Code() == apperrors.CodeValidation {
			// Dropped by the recorder; redelivery would drop it again.
			return processResult{}
		}
		if envelope.EventID != "" {
			_ = c.dedup.Del(logCtx, c.dedup.DedupKey(eventID.String()))
		}
		return processResult{nack: true}
	}

	c.logg.Info(logCtx, "journey event recorded")
	return processResult{}
}
