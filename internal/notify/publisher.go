// README: Post-commit order event publisher; pushes to a redis queue for the push/WhatsApp workers.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"colis/internal/modules/order"
	"colis/internal/types"
)

const eventQueueKey = "notify:order_events"

type statusEvent struct {
	OrderID    string `json:"order_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	OccurredAt string `json:"occurred_at"`
}

// Publisher implements order.Notifier. It only runs after the transaction has
// committed; a failed push is logged, never propagated back into the ledger.
type Publisher struct {
	redis *redis.Client
	log   zerolog.Logger
}

func NewPublisher(redisClient *redis.Client, log zerolog.Logger) *Publisher {
	return &Publisher{redis: redisClient, log: log}
}

func (p *Publisher) OrderStatusChanged(ctx context.Context, orderID types.ID, from, to order.Status) {
	payload, err := json.Marshal(statusEvent{
		OrderID:    string(orderID),
		FromStatus: string(from),
		ToStatus:   string(to),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	if err := p.redis.LPush(ctx, eventQueueKey, payload).Err(); err != nil {
		p.log.Warn().Err(err).Str("order_id", string(orderID)).Msg("order event push failed")
	}
}
