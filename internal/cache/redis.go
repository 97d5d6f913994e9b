// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jason-s-yu/trix/internal/models"
	"github.com/redis/go-redis/v9"
)

// Publisher pushes round records onto a Redis list for the historian.
type Publisher struct {
	Rdb   *redis.Client
	Queue string
}

// ConnectRedis opens a client to addr/db and checks it with a PING.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// NewPublisher returns a Publisher writing to queue.
func NewPublisher(rdb *redis.Client, queue string) *Publisher {
	return &Publisher{Rdb: rdb, Queue: queue}
}

// PublishRound serializes the record to JSON and RPUSHes it onto the queue.
func (p *Publisher) PublishRound(ctx context.Context, rec models.RoundRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal RoundRecord: %w", err)
	}
	if err := p.Rdb.RPush(ctx, p.Queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", p.Queue, err)
	}
	return nil
}
