package compaction

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AntoineB0/CrabKV/index"
	"github.com/AntoineB0/CrabKV/record"
	"github.com/AntoineB0/CrabKV/wal"
)

// MaxRestarts bounds the re-snapshot-and-restart policy of spec.md §4.5
// step 5, keeping the algorithm provably terminating even under a
// pathological write load that keeps outgrowing the rewrite pass. The
// caller (Engine.runCompactionPass) calls Run at most this many times in
// total, re-snapshotting the index under its write lock before each call,
// and starts another attempt whenever its post-rewrite recheck finds the
// active WAL grew during the unlocked copy.
const MaxRestarts = 8

// ShouldRun applies the stale-ratio heuristic of spec.md §4.5: compaction
// is warranted once the WAL is larger than 1 MiB and at least a third of
// it is stale.
func ShouldRun(totalBytes, liveBytes int64) bool {
	const minTotal = 1 << 20
	if totalBytes <= minTotal {
		return false
	}
	staleBytes := totalBytes - liveBytes
	return staleBytes*3 >= totalBytes
}

// Result describes a completed pass: the set of live keys re-pointed at
// their offsets in the fresh WAL, the path of that fresh WAL file (ready to
// be installed via (*wal.Wal).ReplaceWith), and its size.
type Result struct {
	NewIndex map[string]index.Pointer
	NewPath  string
	NewSize  int64
	Stats    Stats
}

// Run executes steps 3-6 of spec.md §4.5 against the currently-active WAL:
// it copies every unexpired record named by snapshot (already taken under
// the write lock by the caller, see Engine.runCompactionPass) into a fresh
// wal.log.compact file, and returns without installing it — the caller
// still owns steps 7-9 (reacquire the write lock, verify the source WAL
// has not grown since the snapshot, swap, repoint the index, release the
// lock). Run itself makes no claim about concurrent writers: it only
// copies what snapshot names, so detecting and handling growth is entirely
// the caller's responsibility.
//
// activeWal is read via ReadAt, never mutated; the returned compaction file
// is fsynced before Run returns.
func Run(dataDir string, activeWal *wal.Wal, snapshot map[string]index.Pointer, now uint64) (Result, error) {
	compactPath := filepath.Join(dataDir, wal.CompactFilename)
	os.Remove(compactPath) // best effort: drop any stale file from a crashed prior pass

	cw, err := wal.Open(compactPath, 0) // fsync per append during the build; one final Sync below is still issued
	if err != nil {
		return Result{}, fmt.Errorf("compaction: open compact file: %w", err)
	}
	success := false
	defer func() {
		if !success {
			cw.Close()
			os.Remove(compactPath)
		}
	}()

	newIndex := make(map[string]index.Pointer, len(snapshot))
	var liveBytes, dropped int64

	for key, ptr := range snapshot {
		if record.Expired(ptr.ExpiresAt, now) {
			dropped++
			continue
		}
		rec, err := activeWal.ReadAt(ptr.Offset)
		if err != nil {
			return Result{}, fmt.Errorf("compaction: read live record for %q: %w", key, err)
		}
		sizeBefore := cw.Size()
		newOffset, err := cw.Append(rec, ptr.Compressed)
		if err != nil {
			return Result{}, fmt.Errorf("compaction: append %q: %w", key, err)
		}
		newLength := cw.Size() - sizeBefore
		newIndex[key] = index.Pointer{
			Offset:     newOffset,
			Length:     newLength,
			ExpiresAt:  ptr.ExpiresAt,
			ValueLen:   ptr.ValueLen,
			Compressed: ptr.Compressed,
		}
		liveBytes += newLength
	}

	if err := cw.Sync(); err != nil {
		return Result{}, fmt.Errorf("compaction: fsync compact file: %w", err)
	}
	newSize := cw.Size()
	if err := cw.Close(); err != nil {
		return Result{}, fmt.Errorf("compaction: close compact file: %w", err)
	}

	success = true
	return Result{
		NewIndex: newIndex,
		NewPath:  compactPath,
		NewSize:  newSize,
		Stats: Stats{
			LastLiveBytes:  liveBytes,
			LastTotalBytes: newSize,
			LastDropped:    dropped,
		},
	}, nil
}
