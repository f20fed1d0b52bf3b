package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/engdahman/conference-app/internal/models"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("docker unavailable, skipping redis cache test: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestSettingsCacheRoundTrip(t *testing.T) {
	client := setupRedis(t)
	c := NewSettingsCache(client, time.Minute)
	ctx := context.Background()

	// Cold cache misses
	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	settings := &models.Settings{ID: 1, SiteName: "GopherConf", EventTitle: "GopherConf 2026"}
	require.NoError(t, c.Set(ctx, settings))

	got, err = c.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "GopherConf", got.SiteName)
	assert.Equal(t, "GopherConf 2026", got.EventTitle)
}

func TestSettingsCacheInvalidate(t *testing.T) {
	client := setupRedis(t)
	c := NewSettingsCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &models.Settings{ID: 1, SiteName: "GopherConf"}))
	require.NoError(t, c.Invalidate(ctx))

	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSettingsCacheExpires(t *testing.T) {
	client := setupRedis(t)
	c := NewSettingsCache(client, time.Second)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &models.Settings{ID: 1, SiteName: "GopherConf"}))
	time.Sleep(1500 * time.Millisecond)

	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSettingsCacheCorruptEntryIsMiss(t *testing.T) {
	client := setupRedis(t)
	c := NewSettingsCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "conference:settings", "{not json", time.Minute).Err())

	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}
