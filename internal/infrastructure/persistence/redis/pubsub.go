package redis

import (
	"context"

	"github.com/readhabit/readhabit-hub/internal/infrastructure/messaging"
)

// ══════════════════════════════════════════════════════════════════════════════
// PUB/SUB ADAPTER
// Bridges the Cache client to the event bus's RedisClient port.
// ══════════════════════════════════════════════════════════════════════════════

// EventBusAdapter adapts Cache to messaging.RedisClient.
type EventBusAdapter struct {
	cache *Cache
}

// NewEventBusAdapter creates a new EventBusAdapter.
func NewEventBusAdapter(cache *Cache) *EventBusAdapter {
	return &EventBusAdapter{cache: cache}
}

// Publish publishes a message to a channel.
func (a *EventBusAdapter) Publish(ctx context.Context, channel string, message interface{}) error {
	return a.cache.Publish(ctx, channel, message)
}

// Subscribe subscribes to channels and streams messages until ctx is done.
func (a *EventBusAdapter) Subscribe(ctx context.Context, channels ...string) (<-chan messaging.RedisMessage, error) {
	sub := a.cache.Subscribe(ctx, channels...)

	// Force the subscription to be established before returning.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, err
	}

	out := make(chan messaging.RedisMessage, 64)

	go func() {
		defer close(out)
		defer sub.Close()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				out <- messaging.RedisMessage{
					Channel: msg.Channel,
					Payload: msg.Payload,
				}
			}
		}
	}()

	return out, nil
}
