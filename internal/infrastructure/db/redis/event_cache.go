package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eventhub/events-api/internal/core/ports"
)

const defaultEventTTL = 5 * time.Minute

// EventCache stores resolved events as JSON.
// Key format: event:<id>
type EventCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewEventCache creates an EventCache wrapping the given Redis client.
func NewEventCache(client redis.Cmdable, ttl time.Duration) *EventCache {
	if ttl <= 0 {
		ttl = defaultEventTTL
	}
	return &EventCache{client: client, ttl: ttl}
}

// Get returns the cached view. A missing key is a miss, not an error.
func (c *EventCache) Get(ctx context.Context, id string) (*ports.EventView, bool, error) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("event cache get: %w", err)
	}

	var view ports.EventView
	if err := json.Unmarshal(raw, &view); err != nil {
		return nil, false, fmt.Errorf("event cache decode: %w", err)
	}
	return &view, true, nil
}

// Set stores the view (expires after the configured TTL).
func (c *EventCache) Set(ctx context.Context, view *ports.EventView) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("event cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(view.ID), raw, c.ttl).Err()
}

func (c *EventCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}

func (c *EventCache) key(id string) string {
	return fmt.Sprintf("event:%s", id)
}
