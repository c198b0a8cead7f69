// README: Redis-backed webhook dedupe; an injected store, not a module-level map.
package notify

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupeKeyPrefix = "notify:webhook:"

// Dedupe remembers processed webhook message IDs so redelivered payloads are
// acknowledged without being handled twice.
type Dedupe struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewDedupe(redisClient *redis.Client, ttl time.Duration) *Dedupe {
	return &Dedupe{redis: redisClient, ttl: ttl}
}

// Seen marks the message ID and reports whether it had been marked before.
// SetNX makes the check-and-mark atomic across instances.
func (d *Dedupe) Seen(ctx context.Context, messageID string) (bool, error) {
	ok, err := d.redis.SetNX(ctx, dedupeKeyPrefix+messageID, "1", d.ttl).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}
