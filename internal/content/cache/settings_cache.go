package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/engdahman/conference-app/internal/models"
)

const settingsKey = "conference:settings"

// SettingsCache keeps the site settings in Redis so the public endpoints,
// which every page load hits, stay off the database. Entries expire on a
// short TTL and are invalidated on every save.
type SettingsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSettingsCache(client *redis.Client, ttl time.Duration) *SettingsCache {
	return &SettingsCache{client: client, ttl: ttl}
}

// Get returns the cached settings, or (nil, nil) on a miss. Redis being down
// is reported as an error so callers can fall through to the database.
func (c *SettingsCache) Get(ctx context.Context) (*models.Settings, error) {
	data, err := c.client.Get(ctx, settingsKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	settings := new(models.Settings)
	if err := json.Unmarshal([]byte(data), settings); err != nil {
		// A corrupt entry behaves like a miss; the next Set overwrites it.
		return nil, nil
	}
	return settings, nil
}

func (c *SettingsCache) Set(ctx context.Context, settings *models.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, settingsKey, data, c.ttl).Err()
}

func (c *SettingsCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, settingsKey).Err()
}
