package infra

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock for TTL tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestNewCache(t *testing.T) {
	c := NewCache(100)
	if c == nil {
		t.Fatal("NewCache returned nil")
	}
	if c.Size() != 0 {
		t.Errorf("expected size 0, got %d", c.Size())
	}
	if c.maxTTL != DefaultMaxCacheTTL {
		t.Errorf("maxTTL = %v, want %v", c.maxTTL, DefaultMaxCacheTTL)
	}
}

func TestCache_SetAndGet(t *testing.T) {
	c := NewCache(100)

	c.Set("siteinfo:https://wiki.example/api.php", "value1", time.Minute)
	val, ok := c.Get("siteinfo:https://wiki.example/api.php")
	if !ok {
		t.Fatal("expected to find key")
	}
	if val != "value1" {
		t.Errorf("expected 'value1', got %v", val)
	}
}

func TestCache_Get_NotFound(t *testing.T) {
	c := NewCache(100)

	val, ok := c.Get("nonexistent")
	if ok {
		t.Error("expected not to find key")
	}
	if val != nil {
		t.Errorf("expected nil, got %v", val)
	}
}

func TestCache_Get_Expired(t *testing.T) {
	clock := newFakeClock()
	c := NewCache(100, WithCacheClock(clock.Now))

	c.Set("key1", "value1", 10*time.Minute)

	clock.Advance(9 * time.Minute)
	if _, ok := c.Get("key1"); !ok {
		t.Fatal("entry expired too early")
	}

	clock.Advance(time.Minute)
	if _, ok := c.Get("key1"); ok {
		t.Error("expected key to be expired")
	}
	if c.Size() != 0 {
		t.Errorf("expired entry not removed, size = %d", c.Size())
	}
}

func TestCache_TTLClampedToMax(t *testing.T) {
	clock := newFakeClock()
	c := NewCache(100, WithCacheClock(clock.Now), WithMaxTTL(time.Hour))

	c.Set("forever", 1, 0)
	c.Set("too-long", 2, 48*time.Hour)

	clock.Advance(time.Hour)
	for _, k := range []string{"forever", "too-long"} {
		if _, ok := c.Get(k); ok {
			t.Errorf("%s outlived the maximum TTL", k)
		}
	}
}

func TestCache_Set_Update(t *testing.T) {
	c := NewCache(100)

	c.Set("key1", "value1", time.Minute)
	c.Set("key1", "value2", time.Minute)

	val, _ := c.Get("key1")
	if val != "value2" {
		t.Errorf("expected 'value2', got %v", val)
	}
	if c.Size() != 1 {
		t.Errorf("expected size 1, got %d", c.Size())
	}
}

func TestCache_Delete(t *testing.T) {
	c := NewCache(100)

	c.Set("key1", "value1", time.Minute)
	c.Delete("key1")
	c.Delete("never-set")

	if _, ok := c.Get("key1"); ok {
		t.Error("expected key to be deleted")
	}
}

func TestCache_DeletePrefix(t *testing.T) {
	c := NewCache(100)

	c.Set("siteinfo:a", 1, time.Minute)
	c.Set("siteinfo:b", 2, time.Minute)
	c.Set("namespaces:a", 3, time.Minute)

	c.DeletePrefix("siteinfo:")

	if _, ok := c.Get("siteinfo:a"); ok {
		t.Error("siteinfo:a should be deleted")
	}
	if _, ok := c.Get("siteinfo:b"); ok {
		t.Error("siteinfo:b should be deleted")
	}
	if _, ok := c.Get("namespaces:a"); !ok {
		t.Error("namespaces:a should remain")
	}
}

func TestCache_LRUEviction(t *testing.T) {
	c := NewCache(3)

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Set("c", 3, time.Minute)

	// Touch "a" so "b" becomes the least recently used.
	c.Get("a")
	c.Set("d", 4, time.Minute)

	if c.Size() != 3 {
		t.Errorf("size = %d, want 3", c.Size())
	}
	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("expected %s to remain", k)
		}
	}
}

func TestCache_Purge(t *testing.T) {
	c := NewCache(10)
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)

	c.Purge()

	if c.Size() != 0 {
		t.Errorf("size after Purge = %d, want 0", c.Size())
	}
}

func TestCache_ConcurrencySafety(t *testing.T) {
	c := NewCache(50)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := range 100 {
				key := fmt.Sprintf("key-%d-%d", id, j%10)
				c.Set(key, j, time.Minute)
				c.Get(key)
				if j%25 == 0 {
					c.DeletePrefix(fmt.Sprintf("key-%d-", id))
				}
			}
		}(i)
	}
	wg.Wait()

	if c.Size() > 50 {
		t.Errorf("size = %d, exceeds max entries", c.Size())
	}
}

func TestCache_DifferentDataTypes(t *testing.T) {
	c := NewCache(100)

	type namespace struct {
		ID   int
		Name string
	}

	c.Set("string", "hello", time.Minute)
	c.Set("int", 42, time.Minute)
	c.Set("struct", namespace{ID: 14, Name: "Category"}, time.Minute)
	c.Set("slice", []string{"a", "b"}, time.Minute)

	if v, _ := c.Get("string"); v != "hello" {
		t.Errorf("string = %v", v)
	}
	if v, _ := c.Get("int"); v != 42 {
		t.Errorf("int = %v", v)
	}
	if v, _ := c.Get("struct"); v.(namespace).Name != "Category" {
		t.Errorf("struct = %v", v)
	}
	if v, _ := c.Get("slice"); len(v.([]string)) != 2 {
		t.Errorf("slice = %v", v)
	}
}
