package services

import (
	"context"
	"testing"
	"time"

	"github.com/qcbd/app-beneficiary/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestCachedJSON(t *testing.T) {
	ctx := context.Background()
	logger := logging.New(zaptest.NewLogger(t))
	cache := newMapCache()

	var out map[string]int
	assert.False(t, cachedJSON(ctx, cache, logger, "test", "k", &out), "miss")

	storeJSON(ctx, cache, logger, "k", map[string]int{"a": 1}, time.Minute)
	require.True(t, cachedJSON(ctx, cache, logger, "test", "k", &out))
	assert.Equal(t, map[string]int{"a": 1}, out)

	require.NoError(t, cache.Set(ctx, "bad", "{not json", time.Minute))
	assert.False(t, cachedJSON(ctx, cache, logger, "test", "bad", &out), "undecodable entries are misses")

	invalidate(ctx, cache, logger, "k")
	assert.False(t, cache.has("k"))

	var n noopCache
	_, ok, err := n.Get(ctx, "k")
	assert.False(t, ok)
	assert.NoError(t, err)
}
