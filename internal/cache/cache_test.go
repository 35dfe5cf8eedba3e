package cache

import (
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	c.Set("key", "value")
	got, ok := c.Get("key")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != "value" {
		t.Errorf("got %v, want value", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	if _, ok := c.Get("absent"); ok {
		t.Error("expected cache miss")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemory(10 * time.Millisecond)
	defer c.Stop()

	c.Set("key", "value")
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("key"); ok {
		t.Error("entry should have expired")
	}
}

func TestMemoryCacheSetWithTTL(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	c.SetWithTTL("short", "value", 10*time.Millisecond)
	c.Set("long", "value")

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Error("short-TTL entry should have expired")
	}
	if _, ok := c.Get("long"); !ok {
		t.Error("default-TTL entry should survive")
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	c.Set("key", "value")
	c.Delete("key")

	if _, ok := c.Get("key"); ok {
		t.Error("deleted entry should be gone")
	}
}

func TestMemoryCacheRemoveExpired(t *testing.T) {
	c := NewMemory(10 * time.Millisecond)
	defer c.Stop()

	c.Set("stale", "value")
	c.SetWithTTL("fresh", "value", time.Minute)
	time.Sleep(20 * time.Millisecond)

	c.removeExpired()

	c.mu.RLock()
	_, staleKept := c.entries["stale"]
	_, freshKept := c.entries["fresh"]
	c.mu.RUnlock()

	if staleKept {
		t.Error("expired entry should be removed from the map")
	}
	if !freshKept {
		t.Error("fresh entry should be kept")
	}
}

func TestMemoryCacheConcurrentAccess(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Stop()

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				c.Set("key", j)
				c.Get("key")
			}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}
