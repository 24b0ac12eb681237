package cache

import "testing"

func TestLRUBasic(t *testing.T) {
	c, err := NewLRU(2)
	if err != nil {
		t.Fatalf("NewLRU: %v", err)
	}
	c.Put("a", []byte("1"))
	c.Put("b", []byte("2"))
	if v, ok := c.Get("a"); !ok || string(v) != "1" {
		t.Fatalf("Get(a) = %q, %v", v, ok)
	}
	// "a" is now MRU; adding "c" should evict "b" (LRU).
	c.Put("c", []byte("3"))
	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to survive eviction")
	}
}

func TestLRURemove(t *testing.T) {
	c, _ := NewLRU(4)
	c.Put("a", []byte("1"))
	c.Remove("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected a to be removed")
	}
}

func TestWriteBackPutGetDelete(t *testing.T) {
	wb := NewWriteBack()
	wb.Put("a", []byte("1"), 0)
	e, ok := wb.Get("a")
	if !ok || e.Deleted || string(e.Value) != "1" {
		t.Fatalf("unexpected entry: %+v ok=%v", e, ok)
	}

	wb.Delete("a")
	e, ok = wb.Get("a")
	if !ok || !e.Deleted {
		t.Fatalf("expected tombstone, got %+v ok=%v", e, ok)
	}
}

func TestWriteBackDrainPreservesOrderAndClears(t *testing.T) {
	wb := NewWriteBack()
	wb.Put("a", []byte("1"), 0)
	wb.Put("b", []byte("2"), 0)
	wb.Put("a", []byte("3"), 0) // overwrite, should not move "a" later in order
	wb.Delete("c")

	drained := wb.Drain()
	wantOrder := []string{"a", "b", "c"}
	if len(drained) != len(wantOrder) {
		t.Fatalf("drained %d entries, want %d", len(drained), len(wantOrder))
	}
	for i, k := range wantOrder {
		if drained[i].Key != k {
			t.Fatalf("drained[%d].Key = %q, want %q", i, drained[i].Key, k)
		}
	}
	if string(drained[0].Value) != "3" {
		t.Fatalf("expected last-write-wins value '3', got %q", drained[0].Value)
	}
	if !drained[2].Deleted {
		t.Fatal("expected 'c' to be a tombstone")
	}

	if wb.Len() != 0 {
		t.Fatalf("expected buffer cleared after Drain, Len() = %d", wb.Len())
	}
}
