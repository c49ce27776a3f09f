package ring

import (
	"sync"
	"testing"
)

func TestBuffer_InvalidCapacity(t *testing.T) {
	if _, err := New[int](0); err == nil {
		t.Errorf("error: expected error for capacity 0")
	}
	if _, err := New[int](-1); err == nil {
		t.Errorf("error: expected error for capacity -1")
	}
}

func TestBuffer_AppendSnapshot(t *testing.T) {
	b, err := New[int](5)
	if err != nil {
		t.Fatalf("error: %v", err)
	}

	b.Append(1)
	b.Append(2)
	b.Append(3)

	got := b.Snapshot()
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("error: expected %d values, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("error: snapshot[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestBuffer_Eviction(t *testing.T) {
	const capacity = 10

	b, err := New[int](capacity)
	if err != nil {
		t.Fatalf("error: %v", err)
	}

	for i := 0; i < capacity+5; i++ {
		b.Append(i)
	}

	got := b.Snapshot()
	if len(got) != capacity {
		t.Fatalf("error: expected %d values after eviction, got %d", capacity, len(got))
	}
	for i, v := range got {
		if v != i+5 {
			t.Errorf("error: snapshot[%d] = %d, want %d", i, v, i+5)
		}
	}
}

func TestBuffer_SnapshotIsCopy(t *testing.T) {
	b, err := New[int](3)
	if err != nil {
		t.Fatalf("error: %v", err)
	}

	b.Append(1)
	snap := b.Snapshot()
	snap[0] = 99

	if got := b.Snapshot()[0]; got != 1 {
		t.Errorf("error: snapshot mutation leaked into buffer: got %d", got)
	}
}

func TestBuffer_ConcurrentAppend(t *testing.T) {
	const (
		writers = 8
		perEach = 1000
	)

	b, err := New[int](50)
	if err != nil {
		t.Fatalf("error: %v", err)
	}

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perEach; i++ {
				b.Append(i)
				_ = b.Snapshot()
			}
		}()
	}
	wg.Wait()

	if b.Len() != b.Cap() {
		t.Errorf("error: expected full buffer, got %d of %d", b.Len(), b.Cap())
	}
}
