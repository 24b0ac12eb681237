package index

import "testing"

func TestSetGetDelete(t *testing.T) {
	idx := New()
	if _, ok := idx.Get("a"); ok {
		t.Fatal("expected miss on empty index")
	}
	idx.Set("a", Pointer{Offset: 10, Length: 20})
	p, ok := idx.Get("a")
	if !ok || p.Offset != 10 || p.Length != 20 {
		t.Fatalf("unexpected pointer: %+v ok=%v", p, ok)
	}
	if !idx.Delete("a") {
		t.Fatal("expected Delete to report key existed")
	}
	if idx.Delete("a") {
		t.Fatal("expected second Delete to report key absent")
	}
}

func TestLiveBytesAndLen(t *testing.T) {
	idx := New()
	idx.Set("a", Pointer{Length: 10})
	idx.Set("b", Pointer{Length: 5})
	if idx.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", idx.Len())
	}
	if idx.LiveBytes() != 15 {
		t.Fatalf("LiveBytes() = %d, want 15", idx.LiveBytes())
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	idx := New()
	idx.Set("a", Pointer{Offset: 1})
	snap := idx.Snapshot()
	idx.Set("a", Pointer{Offset: 2})
	if snap["a"].Offset != 1 {
		t.Fatalf("snapshot mutated by later write: %+v", snap["a"])
	}
}

func TestReplace(t *testing.T) {
	idx := New()
	idx.Set("a", Pointer{Offset: 1})
	idx.Replace(map[string]Pointer{"b": {Offset: 2}})
	if _, ok := idx.Get("a"); ok {
		t.Fatal("expected 'a' to be gone after Replace")
	}
	if p, ok := idx.Get("b"); !ok || p.Offset != 2 {
		t.Fatalf("expected 'b' after Replace, got %+v ok=%v", p, ok)
	}
}
