// AngelaMos | 2026
// counter.go

package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const guestKeyPrefix = "usage:guest:"

// GuestCounter tracks anonymous token consumption per client.
type GuestCounter interface {
	Add(ctx context.Context, clientID string, tokens int64) (int64, error)
	Get(ctx context.Context, clientID string) (int64, error)
}

type redisGuestCounter struct {
	client *redis.Client
	window time.Duration
}

// NewRedisGuestCounter keeps one counter per client that expires window
// after its first increment.
func NewRedisGuestCounter(client *redis.Client, window time.Duration) GuestCounter {
	return &redisGuestCounter{client: client, window: window}
}

func guestKey(clientID string) string {
	return guestKeyPrefix + clientID
}

func (c *redisGuestCounter) Add(
	ctx context.Context,
	clientID string,
	tokens int64,
) (int64, error) {
	key := guestKey(clientID)

	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.IncrBy(ctx, key, tokens)
		if c.window > 0 {
			pipe.ExpireNX(ctx, key, c.window)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("add guest usage: %w", err)
	}

	return incr.Val(), nil
}

func (c *redisGuestCounter) Get(ctx context.Context, clientID string) (int64, error) {
	n, err := c.client.Get(ctx, guestKey(clientID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get guest usage: %w", err)
	}
	return n, nil
}
