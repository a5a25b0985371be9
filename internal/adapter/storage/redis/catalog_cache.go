package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vending-machine-api/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// CatalogCache implements ports.CatalogCache as a single JSON blob holding the
// full item list.
type CatalogCache struct {
	client *goredis.Client
	key    string
	ttl    time.Duration
}

// NewCatalogCache creates a catalog cache whose entries live for ttl.
func NewCatalogCache(client *goredis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		client: client,
		key:    keyPrefix + "catalog:items",
		ttl:    ttl,
	}
}

// GetItems returns the cached list. ok is false on a miss.
func (c *CatalogCache) GetItems(ctx context.Context) ([]domain.Item, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis catalog get: %w", err)
	}

	var items []domain.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, fmt.Errorf("decode cached catalog: %w", err)
	}
	return items, true, nil
}

// SetItems replaces the cached list.
func (c *CatalogCache) SetItems(ctx context.Context, items []domain.Item) error {
	if items == nil {
		items = []domain.Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := c.client.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis catalog set: %w", err)
	}
	return nil
}

// Invalidate drops the cached list.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("redis catalog invalidate: %w", err)
	}
	return nil
}
