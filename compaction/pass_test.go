package compaction

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/AntoineB0/CrabKV/index"
	"github.com/AntoineB0/CrabKV/record"
	"github.com/AntoineB0/CrabKV/wal"
)

func TestShouldRun(t *testing.T) {
	const mib = 1 << 20
	cases := []struct {
		total, live int64
		want        bool
	}{
		{total: mib, live: 0, want: false},            // at threshold, not over
		{total: mib + 1, live: 0, want: true},          // all stale, over threshold
		{total: mib + 1, live: mib + 1, want: false},   // no stale bytes
		{total: 3 * mib, live: 2 * mib, want: true},    // exactly 1/3 stale
		{total: 3 * mib, live: 2*mib + 1, want: false}, // just under 1/3 stale
	}
	for _, tc := range cases {
		if got := ShouldRun(tc.total, tc.live); got != tc.want {
			t.Errorf("ShouldRun(%d, %d) = %v, want %v", tc.total, tc.live, got, tc.want)
		}
	}
}

func TestRunCopiesLiveRecordsAndDropsExpired(t *testing.T) {
	dir := t.TempDir()
	w, err := wal.Open(filepath.Join(dir, wal.ActiveFilename), 0)
	if err != nil {
		t.Fatalf("wal.Open: %v", err)
	}
	defer w.Close()

	snapshot := make(map[string]index.Pointer)

	offA, _ := w.Append(&record.Record{Kind: record.KindPut, Key: []byte("a"), Value: []byte("1")}, false)
	snapshot["a"] = index.Pointer{Offset: offA, Length: int64(record.HeaderSize + 1 + 1)}

	offExpired, _ := w.Append(&record.Record{Kind: record.KindPut, Key: []byte("stale"), Value: []byte("2"), ExpiresAt: 100}, false)
	snapshot["stale"] = index.Pointer{Offset: offExpired, Length: int64(record.HeaderSize + 5 + 1), ExpiresAt: 100}

	result, err := Run(dir, w, snapshot, 200 /* now > expiry */)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := result.NewIndex["stale"]; ok {
		t.Fatal("expired key should not survive compaction")
	}
	ptr, ok := result.NewIndex["a"]
	if !ok {
		t.Fatal("live key 'a' missing from compacted index")
	}

	nw, err := wal.Open(result.NewPath, 0)
	if err != nil {
		t.Fatalf("open compacted file: %v", err)
	}
	defer nw.Close()
	got, err := nw.ReadAt(ptr.Offset)
	if err != nil {
		t.Fatalf("ReadAt in compacted file: %v", err)
	}
	if string(got.Value) != "1" {
		t.Fatalf("compacted value = %q, want 1", got.Value)
	}
	if result.Stats.LastDropped != 1 {
		t.Fatalf("LastDropped = %d, want 1", result.Stats.LastDropped)
	}
}

func TestTrackerRecordsStats(t *testing.T) {
	tr := NewTracker()
	if tr.Stats().Passes != 0 {
		t.Fatal("expected zero stats before any Record")
	}
	tr.Record(Stats{LastLiveBytes: 10})
	tr.Record(Stats{LastLiveBytes: 20})
	s := tr.Stats()
	if s.Passes != 2 || s.LastLiveBytes != 20 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}

func TestWorkerCoalescesRequests(t *testing.T) {
	runs := make(chan struct{}, 100)
	block := make(chan struct{})
	first := true

	w := NewWorker(func() {
		if first {
			first = false
			<-block // hold the first run open so subsequent requests coalesce
		}
		runs <- struct{}{}
	})
	w.Start()

	w.RequestCompact()
	time.Sleep(10 * time.Millisecond) // let the worker pick up the first request
	w.RequestCompact()
	w.RequestCompact()
	w.RequestCompact()
	close(block)

	w.Shutdown()
	close(runs)

	count := 0
	for range runs {
		count++
	}
	// First run + at most one coalesced run + the shutdown-triggered run.
	if count < 2 || count > 3 {
		t.Fatalf("expected 2 or 3 runs from coalesced requests + shutdown, got %d", count)
	}
}
