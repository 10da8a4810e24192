package lastseen

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestRedisStore_RoundTrip(t *testing.T) {
	rdb := newTestRedis(t)
	s := NewRedisStore(rdb, time.Minute)
	ctx := context.Background()
	key := "test:" + time.Now().Format("150405.000000")
	t.Cleanup(func() { rdb.Del(ctx, "lastseen:"+key) })

	if _, ok, err := s.Get(ctx, key); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	at := time.UnixMilli(time.Now().UnixMilli())
	if err := s.Set(ctx, key, at); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("expected key, got ok=%v err=%v", ok, err)
	}
	if !got.Equal(at) {
		t.Errorf("expected %v, got %v", at, got)
	}
}
