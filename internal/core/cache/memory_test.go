package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecocook/internal/infrastructure/config"
	"ecocook/internal/pkg/common"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestManagerGetSet(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := newManager(10, time.Minute, clock.now)
	ctx := context.Background()

	if _, err := m.Get(ctx, "missing"); !errors.Is(err, common.ErrCacheMiss) {
		t.Fatalf("Get missing err = %v", err)
	}
	if err := m.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := m.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}

	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := m.Get(ctx, "k"); !errors.Is(err, common.ErrCacheMiss) {
		t.Errorf("Get after delete err = %v", err)
	}

	stats := m.GetStats()
	if stats["hits"].(int64) != 1 || stats["misses"].(int64) != 2 {
		t.Errorf("stats = %v", stats)
	}
}

func TestManagerExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := newManager(10, time.Minute, clock.now)
	ctx := context.Background()

	if err := m.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	clock.advance(59 * time.Second)
	if _, err := m.Get(ctx, "k"); err != nil {
		t.Fatalf("Get before ttl: %v", err)
	}
	clock.advance(2 * time.Second)
	if _, err := m.Get(ctx, "k"); !errors.Is(err, common.ErrCacheMiss) {
		t.Errorf("Get after ttl err = %v", err)
	}
}

func TestManagerEvictsLeastUsed(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := newManager(2, time.Hour, clock.now)
	ctx := context.Background()

	_ = m.Set(ctx, "a", []byte("1"))
	clock.advance(time.Second)
	_ = m.Set(ctx, "b", []byte("2"))
	if _, err := m.Get(ctx, "a"); err != nil {
		t.Fatalf("Get a: %v", err)
	}

	clock.advance(time.Second)
	if err := m.Set(ctx, "c", []byte("3")); err != nil {
		t.Fatalf("Set c: %v", err)
	}

	if _, err := m.Get(ctx, "b"); !errors.Is(err, common.ErrCacheMiss) {
		t.Errorf("b should have been evicted, err = %v", err)
	}
	for _, k := range []string{"a", "c"} {
		if _, err := m.Get(ctx, k); err != nil {
			t.Errorf("Get %s: %v", k, err)
		}
	}
}

func TestManagerOverwriteDoesNotEvict(t *testing.T) {
	m := newManager(1, time.Hour, time.Now)
	ctx := context.Background()

	_ = m.Set(ctx, "a", []byte("1"))
	if err := m.Set(ctx, "a", []byte("2")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _ := m.Get(ctx, "a")
	if string(got) != "2" {
		t.Errorf("a = %q, want 2", got)
	}
}

func TestNewDisabled(t *testing.T) {
	c, err := New(context.Background(), &config.CacheConfig{Enabled: false})
	if err != nil || c != nil {
		t.Errorf("New disabled = %v, %v", c, err)
	}

	if _, err := New(context.Background(), &config.CacheConfig{Enabled: true, Backend: "memcached"}); err == nil {
		t.Error("expected error for unknown backend")
	}

	c, err = New(context.Background(), &config.CacheConfig{Enabled: true, Backend: "memory", MaxSize: 5, TTL: time.Minute})
	if err != nil {
		t.Fatalf("New memory: %v", err)
	}
	defer c.Close()
	if _, ok := c.(*Manager); !ok {
		t.Errorf("memory backend type = %T", c)
	}
}
