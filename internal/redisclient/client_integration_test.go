//go:build integration

package redisclient

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newContainerClient(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "failed to start redis container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client := NewClient(redis.NewClient(opts))
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestStringCache_RoundTrip(t *testing.T) {
	client := newContainerClient(t)
	cache := NewStringCache(client)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "test:missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "test:key", "value", time.Minute))
	value, ok, err := cache.Get(ctx, "test:key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "value", value)

	require.NoError(t, cache.Delete(ctx, "test:key"))
	_, ok, err = cache.Get(ctx, "test:key")
	require.NoError(t, err)
	assert.False(t, ok)
}
