package engine

import (
	"fmt"
	"os"
	"time"

	"github.com/AntoineB0/CrabKV/compaction"
)

// Compact forces a compaction pass, bypassing the stale-ratio threshold
// ShouldRun otherwise applies. It always runs synchronously and blocks until
// the pass is installed, even when the engine was opened with
// AsyncCompaction — spec.md §4.1 frames the public operation itself as
// blocking; AsyncCompaction governs only threshold-triggered passes (see
// maybeCompact).
func (e *Engine) Compact() error {
	e.mu.RLock()
	if err := e.checkClosedLocked(); err != nil {
		e.mu.RUnlock()
		return err
	}
	e.mu.RUnlock()
	return e.runCompactionPass()
}

// maybeCompact is called after every mutation with the WAL's total and live
// byte counts taken just before the lock was released. It never holds e.mu
// itself.
func (e *Engine) maybeCompact(total, live int64) {
	if !compaction.ShouldRun(total, live) {
		return
	}
	if e.cfg.AsyncCompaction && e.compactor != nil {
		e.compactor.RequestCompact()
		return
	}
	if err := e.runCompactionPass(); err != nil {
		e.ErrorHandler(fmt.Errorf("compaction pass: %w", err))
	}
}

// runCompactionPass implements spec.md §4.5 steps 1-9. compactMu serializes
// passes against each other — Engine.Compact can run concurrently with the
// background worker's own pass — so exactly one rewrite is ever in flight
// and the WAL-size recheck below races only against Put/Delete, never
// against another compaction.
//
// Each attempt:
//  1. snapshots the index AND the active WAL's current size under the
//     write lock (step 1 — a true snapshot, not a stale RLock-era view);
//  2. releases the lock and rewrites the live set into a fresh WAL file
//     (steps 2-4), unlocked so writers keep making progress;
//  3. reacquires the write lock and compares the active WAL's size against
//     the snapshot. Every committed Put/Delete appends to the WAL before
//     returning, so any growth means a record was committed that this pass
//     never read and that is absent from the rewrite's index — installing
//     the rewrite now would silently drop it, violating invariant 3 and
//     step 5's "must never drop a committed record". On growth the
//     rewrite is discarded and the loop re-snapshots and retries, bounded
//     by compaction.MaxRestarts;
//  4. with no growth, installs the rewrite (steps 7-9): swap the WAL file,
//     replace the index, record stats.
func (e *Engine) runCompactionPass() error {
	e.compactMu.Lock()
	defer e.compactMu.Unlock()

	for attempt := 0; attempt < compaction.MaxRestarts; attempt++ {
		e.mu.Lock()
		if err := e.checkClosedLocked(); err != nil {
			e.mu.Unlock()
			return err
		}
		snapshot := e.idx.Snapshot()
		sizeAtSnapshot := e.w.Size()
		e.mu.Unlock()

		result, err := compaction.Run(e.cfg.DataDir, e.w, snapshot, nowUnix())
		if err != nil {
			return err
		}

		e.mu.Lock()
		if e.closed {
			e.mu.Unlock()
			os.Remove(result.NewPath)
			return ErrClosed
		}
		if e.w.Size() != sizeAtSnapshot {
			// A Put/Delete committed to the old WAL while the rewrite was in
			// flight; that record is not in result.NewIndex. Discard and
			// restart against a fresh snapshot rather than drop it.
			e.mu.Unlock()
			os.Remove(result.NewPath)
			continue
		}
		if err := e.w.ReplaceWith(result.NewPath, result.NewSize); err != nil {
			e.mu.Unlock()
			return fmt.Errorf("compaction: install result: %w", err)
		}
		e.idx.Replace(result.NewIndex)
		result.Stats.LastRun = time.Now()
		e.tracker.Record(result.Stats)
		e.mu.Unlock()
		return nil
	}
	return fmt.Errorf("compaction: exceeded %d restart attempts", compaction.MaxRestarts)
}
