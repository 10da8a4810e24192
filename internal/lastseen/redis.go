package lastseen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "lastseen:%s"
	DefaultTTL = 48 * time.Hour
)

// RedisStore keeps entries as unix milliseconds under "lastseen:<key>".
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) (time.Time, bool, error) {
	ms, err := s.rdb.Get(ctx, fmt.Sprintf(keyPrefix, key)).Int64()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("lastseen get %s: %w", key, err)
	}
	return time.UnixMilli(ms), true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, at time.Time) error {
	if err := s.rdb.Set(ctx, fmt.Sprintf(keyPrefix, key), at.UnixMilli(), s.ttl).Err(); err != nil {
		return fmt.Errorf("lastseen set %s: %w", key, err)
	}
	return nil
}
