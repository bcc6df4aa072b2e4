package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/unischedule/dashboard/internal/adapters/cache"
	"github.com/unischedule/dashboard/test/mocks"
)

func TestRedisSnapshotCache_RoundTrip(t *testing.T) {
	rdb := mocks.NewMockRedisClient()
	c := cache.NewRedisSnapshotCache(rdb, time.Minute)
	ctx := context.Background()

	if err := c.SaveSnapshot(ctx, "groups", []byte(`[{"id":1}]`)); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	if v, ok := rdb.Value("dashboard:snapshot:groups"); !ok || v != `[{"id":1}]` {
		t.Errorf("stored value = %q, %v", v, ok)
	}
	if ttl := rdb.TTL("dashboard:snapshot:groups"); ttl != time.Minute {
		t.Errorf("stored ttl = %v, want %v", ttl, time.Minute)
	}

	got, err := c.LoadSnapshot(ctx, "groups")
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if string(got) != `[{"id":1}]` {
		t.Errorf("LoadSnapshot() = %s", got)
	}
}

func TestRedisSnapshotCache_Missing(t *testing.T) {
	c := cache.NewRedisSnapshotCache(mocks.NewMockRedisClient(), time.Minute)

	got, err := c.LoadSnapshot(context.Background(), "events")
	if err != nil || got != nil {
		t.Errorf("LoadSnapshot() = %q, %v; want nil, nil", got, err)
	}
}

func TestRedisSnapshotCache_Errors(t *testing.T) {
	rdb := mocks.NewMockRedisClient()
	c := cache.NewRedisSnapshotCache(rdb, time.Minute)
	ctx := context.Background()
	boom := errors.New("redis: connection refused")

	rdb.SetError = boom
	if err := c.SaveSnapshot(ctx, "events", []byte(`[]`)); !errors.Is(err, boom) {
		t.Errorf("SaveSnapshot() error = %v", err)
	}
	rdb.GetError = boom
	if _, err := c.LoadSnapshot(ctx, "events"); !errors.Is(err, boom) {
		t.Errorf("LoadSnapshot() error = %v", err)
	}
	rdb.PingError = boom
	if err := c.Ping(ctx); !errors.Is(err, boom) {
		t.Errorf("Ping() error = %v", err)
	}
}
