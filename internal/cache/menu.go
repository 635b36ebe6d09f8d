// Package cache holds the Redis-backed menu cache. The food-drinks list is
// read on every till screen refresh but changes rarely, so it is the one
// query worth keeping out of the database.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"gamecafe-backend/config"
	"gamecafe-backend/internal/model"
)

const menuKey = "pos:food-drinks"

// Menu caches the inventory list in Redis. A nil *Menu is valid and always
// misses, so callers never have to branch on whether Redis is configured.
type Menu struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewMenu connects to Redis, or returns nil when no address is configured.
func NewMenu(cfg config.RedisConfig) *Menu {
	if cfg.Addr == "" {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not reachable (%v), menu cache disabled", err)
		return nil
	}

	return &Menu{rdb: rdb, ttl: time.Duration(cfg.MenuTTLSeconds) * time.Second}
}

// Get returns the cached menu, or found == false on miss or when the cache
// is disabled.
func (m *Menu) Get(ctx context.Context) ([]model.FoodDrinkItem, bool) {
	if m == nil {
		return nil, false
	}
	raw, err := m.rdb.Get(ctx, menuKey).Bytes()
	if err != nil {
		return nil, false
	}
	var items []model.FoodDrinkItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

// Set stores the menu with the configured TTL. Failures only cost a cache
// hit, so they are logged and swallowed.
func (m *Menu) Set(ctx context.Context, items []model.FoodDrinkItem) {
	if m == nil {
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := m.rdb.Set(ctx, menuKey, raw, m.ttl).Err(); err != nil {
		log.Printf("menu cache set failed: %v", err)
	}
}

// Invalidate drops the cached menu after an inventory write.
func (m *Menu) Invalidate(ctx context.Context) {
	if m == nil {
		return
	}
	if err := m.rdb.Del(ctx, menuKey).Err(); err != nil {
		log.Printf("menu cache invalidate failed: %v", err)
	}
}
