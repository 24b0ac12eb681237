package compaction

import (
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// Stats reports facts about the most recently completed compaction pass.
type Stats struct {
	LastRun        time.Time
	LastLiveBytes  int64
	LastTotalBytes int64
	LastDropped    int64 // stale/expired records reclaimed by the pass
	Passes         int64
}

// statsKey is the sole key used in the tracker's map; a concurrent map is
// overkill for one value, but it is the teacher's own idiom for sharing
// mutable state across the compaction goroutine and any reader goroutine
// without introducing a second ad hoc mutex (go-persist's Store used the
// same xsync.Map-as-registry shape for its PersistMap instances).
const statsKey = "last"

// Tracker records compaction stats without its own mutex, so Stats() never
// contends with a running pass.
type Tracker struct {
	m *xsync.Map
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{m: xsync.NewMap()}
}

// Record stores the outcome of a just-completed pass.
func (t *Tracker) Record(s Stats) {
	s.Passes = t.passes() + 1
	t.m.Store(statsKey, s)
}

func (t *Tracker) passes() int64 {
	v, ok := t.m.Load(statsKey)
	if !ok {
		return 0
	}
	return v.(Stats).Passes
}

// Stats returns the most recently recorded pass, or the zero value if none
// has run yet.
func (t *Tracker) Stats() Stats {
	v, ok := t.m.Load(statsKey)
	if !ok {
		return Stats{}
	}
	return v.(Stats)
}
