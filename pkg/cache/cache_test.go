package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New[string](time.Minute)
	c.Set("k", "v")

	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Fatalf("expected hit with v, got %q/%v", got, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestExpiry(t *testing.T) {
	c := New[int](time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("k", 42)

	c.now = func() time.Time { return base.Add(30 * time.Second) }
	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected hit inside ttl")
	}

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss after ttl")
	}
}

func TestDelete(t *testing.T) {
	c := New[string](time.Minute)
	c.Set("k", "v")
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestPurge(t *testing.T) {
	c := New[string](time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("stale", "v")

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	c.Set("fresh", "v")
	c.Purge()

	c.mu.RLock()
	_, staleKept := c.items["stale"]
	_, freshKept := c.items["fresh"]
	c.mu.RUnlock()
	if staleKept {
		t.Error("expected stale entry purged")
	}
	if !freshKept {
		t.Error("expected fresh entry kept")
	}
}
