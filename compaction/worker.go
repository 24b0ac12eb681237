// Package compaction provides the background compaction worker and the
// synchronous rewrite algorithm used by both compaction modes of
// spec.md §4.5. The worker itself knows nothing about WALs or indexes: it
// is handed a closure that performs one compaction pass, and its only job
// is to run that closure at most once concurrently while coalescing
// requests that arrive while a pass is already pending or running.
package compaction

import "sync"

// request is the single message type flowing over the worker's channel.
type request int

const (
	requestCompact request = iota
	requestShutdown
)

// Worker runs compaction passes on a dedicated goroutine. The channel
// between producer (engine) and this worker is a capacity-1 buffer: a
// second RequestCompact while one is already pending is a coalescing no-op,
// matching spec.md §4.5's "additional requests are coalesced."
type Worker struct {
	pending chan request
	wg      sync.WaitGroup
	runPass func()
}

// NewWorker returns a Worker that invokes runPass for every compaction
// request, including the final one before shutdown.
func NewWorker(runPass func()) *Worker {
	return &Worker{
		pending: make(chan request, 1),
		runPass: runPass,
	}
}

// Start launches the worker goroutine. It must be called at most once.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for req := range w.pending {
		w.runPass()
		if req == requestShutdown {
			return
		}
	}
}

// RequestCompact enqueues a compaction pass without blocking the caller on
// compaction I/O. If a request is already pending, this call is a no-op:
// the worker processes one request at a time and a pending request already
// guarantees the next pass will see the latest state.
func (w *Worker) RequestCompact() {
	select {
	case w.pending <- requestCompact:
	default:
	}
}

// Shutdown enqueues a final compaction pass and blocks until the worker has
// run it and exited. Safe to call even if a requestCompact is already
// sitting in the buffer: Shutdown's send may block briefly until the
// worker drains that slot, then its own request takes over as the last one
// processed.
func (w *Worker) Shutdown() {
	w.pending <- requestShutdown
	close(w.pending)
	w.wg.Wait()
}
