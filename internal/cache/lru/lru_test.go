package lru

import (
	"math/rand/v2"
	"sync"
	"testing"
)

func TestCache_InvalidCapacity(t *testing.T) {
	if _, err := New[int, int](0); err == nil {
		t.Errorf("error: expected error for capacity 0")
	}
}

func TestCache_SetGet(t *testing.T) {
	c, err := New[int, int](2)
	if err != nil {
		t.Fatalf("error: %v", err)
	}

	c.Set(2, 20)

	val, ok := c.Get(2)
	if !ok {
		t.Errorf("error: 2 should be contained")
	}
	if val != 20 {
		t.Errorf("error: value is not correct to the key")
	}
}

func TestCache_Overwrite(t *testing.T) {
	c, err := New[string, int](2)
	if err != nil {
		t.Fatalf("error: %v", err)
	}

	c.Set("a", 1)
	c.Set("a", 2)

	if c.Len() != 1 {
		t.Errorf("error: expected single pair, got %d", c.Len())
	}
	if val, _ := c.Get("a"); val != 2 {
		t.Errorf("error: expected overwritten value 2, got %d", val)
	}
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, err := New[int, int](2)
	if err != nil {
		t.Fatalf("error: %v", err)
	}

	c.Set(1, 1)
	c.Set(2, 2)
	c.Get(1)
	c.Set(3, 3)

	if c.Contains(2) {
		t.Errorf("error: key 2 should have been evicted")
	}
	if !c.Contains(1) || !c.Contains(3) {
		t.Errorf("error: keys 1 and 3 should be retained")
	}
}

func TestCache_Delete(t *testing.T) {
	c, err := New[int, int](5)
	if err != nil {
		t.Fatalf("error: %v", err)
	}

	c.Set(1, 1)
	c.Set(2, 2)

	if err := c.Delete(2); err != nil {
		t.Fatalf("error: %v", err)
	}
	if _, ok := c.Get(2); ok {
		t.Fatalf("error: key 2 should have been deleted")
	}
	if err := c.Delete(2); err == nil {
		t.Errorf("error: expected error deleting missing key")
	}
}

func TestCache_Flush(t *testing.T) {
	c, err := New[int, int](3)
	if err != nil {
		t.Fatalf("error: %v", err)
	}

	c.Set(1, 1)
	c.Set(2, 2)
	c.Flush()

	if c.Len() != 0 {
		t.Errorf("error: expected empty cache after flush, got %d", c.Len())
	}
}

func TestCache_Concurrent(t *testing.T) {
	c, err := New[int, int](16)
	if err != nil {
		t.Fatalf("error: %v", err)
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				key := rand.IntN(64)
				c.Set(key, key)
				c.Get(key)
			}
		}()
	}
	wg.Wait()

	if c.Len() > c.Capacity() {
		t.Errorf("error: cache over capacity: %d > %d", c.Len(), c.Capacity())
	}
}
