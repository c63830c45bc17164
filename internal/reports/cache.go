package reports

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/userjourney-io/journeylog-backend/pkg/logger"
	"github.com/userjourney-io/journeylog-backend/pkg/redis"
)

// Cache is a read-through cache for assembled report JSON. Reports are
// idempotent, so serving a recent copy is always safe; cache failures are
// logged and treated as misses.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logg   *logger.Logger
}

// NewCache builds a report cache. A nil client or non-positive TTL
// disables caching entirely.
func NewCache(client *redis.Client, ttl time.Duration, logg *logger.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, logg: logg}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

func (c *Cache) fetch(ctx context.Context, report, fingerprint string) ([]byte, bool) {
	if !c.enabled() {
		return nil, false
	}
	payload, err := c.client.Get(ctx, c.key(report, fingerprint))
	if err != nil {
		if !errors.Is(err, redis.Nil) && c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "report cache read failed")
		}
		return nil, false
	}
	return []byte(payload), true
}

func (c *Cache) store(ctx context.Context, report, fingerprint string, payload []byte) {
	if !c.enabled() {
		return
	}
	if err := c.client.Set(ctx, c.key(report, fingerprint), payload, c.ttl); err != nil && c.logg != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "report cache write failed")
	}
}

func (c *Cache) key(report, fingerprint string) string {
	sum := sha256.Sum256([]byte(fingerprint))
	return c.client.ReportKey(report, hex.EncodeToString(sum[:16]))
}
