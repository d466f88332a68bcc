package redisclient

import (
	"context"
	"time"
)

// StringCache adapts Client to the plain string cache used by services
type StringCache struct {
	client *Client
}

// NewStringCache wraps client
func NewStringCache(client *Client) *StringCache {
	return &StringCache{client: client}
}

// Get returns the cached value. A miss returns ok=false and no error.
func (s *StringCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if IsMiss(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *StringCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *StringCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}
