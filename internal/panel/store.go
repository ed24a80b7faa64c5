// AngelaMos | 2026
// store.go

package panel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/control-panel/internal/access"
)

const keyPrefix = "panel:tabs:"

// Store persists each viewer's customized tab list.
type Store interface {
	// Load returns the catalog defaults when nothing is stored and a nil
	// slice when the stored value cannot be used.
	Load(ctx context.Context, userID string) ([]access.TabDescriptor, error)
	Save(ctx context.Context, userID string, tabs []access.TabDescriptor) error
	Reset(ctx context.Context, userID string) error
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl}
}

func tabsKey(userID string) string {
	return keyPrefix + userID
}

func (s *redisStore) Load(
	ctx context.Context,
	userID string,
) ([]access.TabDescriptor, error) {
	raw, err := s.client.Get(ctx, tabsKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return access.DefaultCatalog(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load tabs: %w", err)
	}

	return decodeTabs(raw), nil
}

func (s *redisStore) Save(
	ctx context.Context,
	userID string,
	tabs []access.TabDescriptor,
) error {
	if tabs == nil {
		tabs = []access.TabDescriptor{}
	}

	raw, err := json.Marshal(tabs)
	if err != nil {
		return fmt.Errorf("save tabs: %w", err)
	}

	if err := s.client.Set(ctx, tabsKey(userID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save tabs: %w", err)
	}

	return nil
}

func (s *redisStore) Reset(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, tabsKey(userID)).Err(); err != nil {
		return fmt.Errorf("reset tabs: %w", err)
	}
	return nil
}

// decodeTabs treats JSON null and anything that is not an array of tab
// objects as malformed.
func decodeTabs(raw []byte) []access.TabDescriptor {
	var tabs []access.TabDescriptor
	if err := json.Unmarshal(raw, &tabs); err != nil {
		slog.Warn("undecodable tab configuration", "error", err)
		return nil
	}
	return tabs
}
