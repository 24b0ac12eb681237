package engine

import "time"

// Stats is a point-in-time snapshot of engine health: live key count, WAL
// size accounting, and facts about the most recent compaction pass. It is a
// supplemented feature (spec.md is silent on introspection; the teacher's
// Store exposed no equivalent, but every example server in the pack exposes
// some form of stats/metrics endpoint, so CrabKv does too).
type Stats struct {
	Keys          int64     `json:"keys"`
	WALTotalBytes int64     `json:"wal_total_bytes"`
	WALLiveBytes  int64     `json:"wal_live_bytes"`
	WALStaleBytes int64     `json:"wal_stale_bytes"`
	LastCompactAt time.Time `json:"last_compact_at"`
	CompactPasses int64     `json:"compact_passes"`
}

// Stats returns a consistent snapshot of the engine's current state.
func (e *Engine) Stats() (Stats, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.checkClosedLocked(); err != nil {
		return Stats{}, err
	}

	total := e.w.Size()
	live := e.idx.LiveBytes()
	cs := e.tracker.Stats()

	return Stats{
		Keys:          int64(e.idx.Len()),
		WALTotalBytes: total,
		WALLiveBytes:  live,
		WALStaleBytes: total - live,
		LastCompactAt: cs.LastRun,
		CompactPasses: cs.Passes,
	}, nil
}
