package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/orderbot/internal/core/error"
	logx "github.com/Chative-core-poc-v1/orderbot/pkg/logger"
)

// PlacedOrder is what the sink stores for one fulfilled order.
type PlacedOrder struct {
	SessionID string                `json:"session_id"`
	Items     []model.OrderLineItem `json:"items"`
	Total     float64               `json:"total"`
	PlacedAt  time.Time             `json:"placed_at"`
}

// RedisOrderSink appends placed orders to a per-session Redis list.
type RedisOrderSink struct {
	rdb redis.Cmdable
	ttl time.Duration
	now func() time.Time
}

var _ model.OrderSink = (*RedisOrderSink)(nil)

func NewRedisOrderSink(rdb redis.Cmdable, ttl time.Duration) *RedisOrderSink {
	return &RedisOrderSink{rdb: rdb, ttl: ttl, now: time.Now}
}

func (r *RedisOrderSink) ordersKey(sessionID string) string {
	return fmt.Sprintf("orders:%s", sessionID)
}

func (r *RedisOrderSink) Submit(ctx context.Context, sessionID string, doc model.OrderDocument) error {
	rec := PlacedOrder{SessionID: sessionID, Items: doc.Items, PlacedAt: r.now().UTC()}
	for _, it := range doc.Items {
		rec.Total += it.Price * float64(it.Quantity)
	}
	b, err := json.Marshal(rec)
	if err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to marshal order")
		return fmt.Errorf("marshal order: %w", err)
	}
	key := r.ordersKey(sessionID)

	if err := r.rdb.RPush(ctx, key, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push order to redis")
		return errx.WrapRedis(err)
	}
	// extend TTL on touch
	if r.ttl > 0 {
		if ok, err := r.rdb.Expire(ctx, key, r.ttl).Result(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to set expire")
			return errx.WrapRedis(err)
		} else if !ok {
			logx.Warn().Str("key", key).Dur("ttl", r.ttl).Msg("failed to set TTL on orders key")
		}
	}
	return nil
}

// Orders returns every order placed in the session, oldest first.
func (r *RedisOrderSink) Orders(ctx context.Context, sessionID string) ([]PlacedOrder, error) {
	key := r.ordersKey(sessionID)

	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return []PlacedOrder{}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load orders from redis")
		return nil, errx.WrapRedis(err)
	}

	orders := make([]PlacedOrder, 0, len(rows))
	for i, s := range rows {
		var o PlacedOrder
		if err := json.Unmarshal([]byte(s), &o); err != nil {
			return nil, fmt.Errorf("unmarshal order at index %d: %w", i, err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}
