package redis

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/goloan/internal/infrastructure/metrics"
)

func TestCacheSetAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client, nil)
	ctx := context.Background()

	if err := cache.Set(ctx, "foo", []byte("bar"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := cache.Get(ctx, "foo")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if string(val) != "bar" {
		t.Fatalf("expected bar, got %s", val)
	}

	if ttl := mr.TTL(cache.prefix + "foo"); ttl != time.Minute {
		t.Fatalf("expected a one minute TTL, got %s", ttl)
	}
}

func TestCacheMissIsNotAnError(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	cache := NewCache(client, m)

	val, err := cache.Get(context.Background(), "absent")
	if err != nil || val != nil {
		t.Fatalf("expected (nil, nil) on a miss, got %q, %v", val, err)
	}

	if got := testutil.ToFloat64(m.RedisOperations.WithLabelValues("get")); got != 1 {
		t.Fatalf("expected 1 get recorded, got %v", got)
	}
	if got := testutil.ToFloat64(m.RedisErrors.WithLabelValues("get")); got != 0 {
		t.Fatalf("expected no errors recorded, got %v", got)
	}
}

func TestCacheUnavailable(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()

	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	cache := NewCache(client, m)
	mr.Close()

	if _, err := cache.Get(context.Background(), "foo"); err == nil {
		t.Fatalf("expected error from a closed server")
	}
	if got := testutil.ToFloat64(m.RedisErrors.WithLabelValues("get")); got != 1 {
		t.Fatalf("expected 1 error recorded, got %v", got)
	}
}

func TestCacheDelete(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client, nil)
	ctx := context.Background()

	if err := cache.Set(ctx, "foo", []byte("bar"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := cache.Delete(ctx, "foo"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if val, err := cache.Get(ctx, "foo"); err != nil || val != nil {
		t.Fatalf("expected deleted key to miss, got %q, %v", val, err)
	}
}
