package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/qcbd/app-beneficiary/internal/logging"
	"github.com/qcbd/app-beneficiary/internal/observability"
	"github.com/qcbd/app-beneficiary/internal/utils"
	"go.uber.org/zap"
)

// Cache is the string cache behind service read-through caching.
// redisclient.StringCache implements it.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (string, bool, error)        { return "", false, nil }
func (noopCache) Set(context.Context, string, string, time.Duration) error { return nil }
func (noopCache) Delete(context.Context, ...string) error                  { return nil }

// cachedJSON loads key into dst. Cache errors and undecodable entries are
// treated as misses.
func cachedJSON(ctx context.Context, cache Cache, logger *logging.SafeLogger, operation, key string, dst interface{}) bool {
	ctx, span := utils.TraceCacheGet(ctx, key)
	defer span.End()

	raw, ok, err := cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		logger.Debug(operation+" cache miss", zap.String("key", key))
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	observability.CacheHits.WithLabelValues(operation).Inc()
	return true
}

func storeJSON(ctx context.Context, cache Cache, logger *logging.SafeLogger, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		logger.Warn("failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := cache.Set(ctx, key, string(data), ttl); err != nil {
		logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func invalidate(ctx context.Context, cache Cache, logger *logging.SafeLogger, keys ...string) {
	ctx, span := utils.TraceCacheInvalidation(ctx, strings.Join(keys, ","))
	defer span.End()

	if err := cache.Delete(ctx, keys...); err != nil {
		logger.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
