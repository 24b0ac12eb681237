package wal

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AntoineB0/CrabKV/record"
)

func tempWalPath(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	return filepath.Join(dir, "wal.log")
}

func mustOpen(t *testing.T, path string, syncInterval time.Duration) *Wal {
	t.Helper()
	w, err := Open(path, syncInterval)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w
}

func TestAppendAndReadAt(t *testing.T) {
	w := mustOpen(t, tempWalPath(t), 0)

	rec := &record.Record{Kind: record.KindPut, Key: []byte("a"), Value: []byte("1")}
	offset, err := w.Append(rec, false)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if offset != 0 {
		t.Fatalf("offset = %d, want 0", offset)
	}

	got, err := w.ReadAt(offset)
	if err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if string(got.Key) != "a" || string(got.Value) != "1" {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestAppendBatchSharesOneFsync(t *testing.T) {
	w := mustOpen(t, tempWalPath(t), 0)

	recs := []*record.Record{
		{Kind: record.KindPut, Key: []byte("a"), Value: []byte("1")},
		{Kind: record.KindPut, Key: []byte("b"), Value: []byte("2")},
		{Kind: record.KindDelete, Key: []byte("a")},
	}
	offsets, err := w.AppendBatch(recs, false)
	if err != nil {
		t.Fatalf("AppendBatch: %v", err)
	}
	if len(offsets) != 3 {
		t.Fatalf("len(offsets) = %d, want 3", len(offsets))
	}
	for i, off := range offsets {
		got, err := w.ReadAt(off)
		if err != nil {
			t.Fatalf("ReadAt(%d): %v", off, err)
		}
		if string(got.Key) != string(recs[i].Key) {
			t.Fatalf("record %d key = %q, want %q", i, got.Key, recs[i].Key)
		}
	}
}

func TestScanYieldsInWriteOrder(t *testing.T) {
	w := mustOpen(t, tempWalPath(t), 0)
	keys := []string{"k0", "k1", "k2"}
	for _, k := range keys {
		if _, err := w.Append(&record.Record{Kind: record.KindPut, Key: []byte(k), Value: []byte("v")}, false); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	sc, err := w.Scan()
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	defer sc.Close()

	var gotKeys []string
	for {
		_, rec, _, err := sc.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		gotKeys = append(gotKeys, string(rec.Key))
	}
	if len(gotKeys) != len(keys) {
		t.Fatalf("got %v, want %v", gotKeys, keys)
	}
	for i, k := range keys {
		if gotKeys[i] != k {
			t.Fatalf("gotKeys[%d] = %q, want %q", i, gotKeys[i], k)
		}
	}
}

func TestScanIsRestartable(t *testing.T) {
	w := mustOpen(t, tempWalPath(t), 0)
	w.Append(&record.Record{Kind: record.KindPut, Key: []byte("a"), Value: []byte("1")}, false)

	sc1, _ := w.Scan()
	defer sc1.Close()
	_, _, _, err := sc1.Next()
	if err != nil {
		t.Fatalf("first scan Next: %v", err)
	}

	sc2, _ := w.Scan()
	defer sc2.Close()
	_, rec, _, err := sc2.Next()
	if err != nil {
		t.Fatalf("second scan Next: %v", err)
	}
	if string(rec.Key) != "a" {
		t.Fatalf("restarted scan got key %q, want a", rec.Key)
	}
}

func TestSyncIntervalDoesNotBlockAppends(t *testing.T) {
	w := mustOpen(t, tempWalPath(t), time.Hour)
	for i := 0; i < 100; i++ {
		if _, err := w.Append(&record.Record{Kind: record.KindPut, Key: []byte("k"), Value: []byte("v")}, false); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}
	// An explicit Sync must always take effect regardless of the interval.
	if err := w.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
}

func TestReplaceWithSwapsAtomically(t *testing.T) {
	dir := t.TempDir()
	activePath := filepath.Join(dir, ActiveFilename)
	w := mustOpen(t, activePath, 0)

	w.Append(&record.Record{Kind: record.KindPut, Key: []byte("stale"), Value: []byte("x")}, false)

	compactPath := filepath.Join(dir, CompactFilename)
	cw := mustOpen(t, compactPath, 0)
	newOffset, err := cw.Append(&record.Record{Kind: record.KindPut, Key: []byte("fresh"), Value: []byte("y")}, false)
	if err != nil {
		t.Fatalf("Append to compact file: %v", err)
	}
	newSize := cw.Size()
	if err := cw.Close(); err != nil {
		t.Fatalf("Close compact file: %v", err)
	}

	if err := w.ReplaceWith(compactPath, newSize); err != nil {
		t.Fatalf("ReplaceWith: %v", err)
	}

	if _, err := os.Stat(activePath + ".old"); !os.IsNotExist(err) {
		t.Fatalf("expected active.old to be removed after swap, stat err = %v", err)
	}
	if _, err := os.Stat(compactPath); !os.IsNotExist(err) {
		t.Fatalf("expected compaction file to be gone (renamed) after swap, stat err = %v", err)
	}

	got, err := w.ReadAt(newOffset)
	if err != nil {
		t.Fatalf("ReadAt after swap: %v", err)
	}
	if string(got.Key) != "fresh" {
		t.Fatalf("got key %q after swap, want fresh", got.Key)
	}
}

func TestResolveActivePrefersExistingActive(t *testing.T) {
	dir := t.TempDir()
	active := filepath.Join(dir, ActiveFilename)
	if err := os.WriteFile(active, []byte("x"), 0644); err != nil {
		t.Fatalf("seed active: %v", err)
	}
	old := filepath.Join(dir, OldFilename)
	os.WriteFile(old, []byte("y"), 0644)

	got, err := ResolveActive(dir)
	if err != nil {
		t.Fatalf("ResolveActive: %v", err)
	}
	if got != active {
		t.Fatalf("got %q, want %q", got, active)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatal("expected stray .old to be removed")
	}
}

func TestResolveActiveRecoversFromOld(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, OldFilename)
	if err := os.WriteFile(old, []byte("y"), 0644); err != nil {
		t.Fatalf("seed old: %v", err)
	}

	active := filepath.Join(dir, ActiveFilename)
	got, err := ResolveActive(dir)
	if err != nil {
		t.Fatalf("ResolveActive: %v", err)
	}
	if got != active {
		t.Fatalf("got %q, want %q", got, active)
	}
	if _, err := os.Stat(active); err != nil {
		t.Fatalf("expected .old renamed to active: %v", err)
	}
}
