package cache

import (
	"context"
	"testing"
	"time"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/logger"
)

func newTestCache() *MemoryCache {
	return NewMemoryCache(logger.New("error", "json"))
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestCache()
	defer c.Close()

	if err := c.Set(ctx, "rules:abc", []byte(`[{"tier":1}]`), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	value, found, err := c.Get(ctx, "rules:abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found {
		t.Fatal("expected hit after Set")
	}
	if string(value) != `[{"tier":1}]` {
		t.Errorf("value = %q", value)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	ctx := context.Background()
	c := newTestCache()
	defer c.Close()

	_, found, err := c.Get(ctx, "nothing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Error("expected miss for unknown key")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := newTestCache()
	defer c.Close()

	if err := c.Set(ctx, "short", []byte("x"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	if _, found, _ := c.Get(ctx, "short"); found {
		t.Error("expected expired entry to miss")
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := newTestCache()
	defer c.Close()

	if err := c.Set(ctx, "members:abc", []byte("roster"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Delete(ctx, "members:abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, _ := c.Get(ctx, "members:abc"); found {
		t.Error("expected miss after Delete")
	}

	// Deleting an absent key is not an error
	if err := c.Delete(ctx, "members:abc"); err != nil {
		t.Errorf("Delete absent key: %v", err)
	}
}

func TestMemoryCacheOverwrite(t *testing.T) {
	ctx := context.Background()
	c := newTestCache()
	defer c.Close()

	c.Set(ctx, "k", []byte("old"), time.Minute)
	c.Set(ctx, "k", []byte("new"), time.Minute)

	value, found, _ := c.Get(ctx, "k")
	if !found || string(value) != "new" {
		t.Errorf("value = %q, found = %v, want new", value, found)
	}
}
