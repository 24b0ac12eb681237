// Package engine orchestrates the record codec, WAL, index, cache, and
// compactor behind the single concurrency envelope spec.md §5 describes: one
// readers-writer lock guards every piece of mutable engine state. This is
// CrabKv's public API.
package engine

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/AntoineB0/CrabKV/cache"
	"github.com/AntoineB0/CrabKV/compaction"
	"github.com/AntoineB0/CrabKV/index"
	"github.com/AntoineB0/CrabKV/record"
	"github.com/AntoineB0/CrabKV/wal"
)

// Engine is CrabKv's embedded storage engine. The zero value is not usable;
// construct one with Open. An *Engine is safe for concurrent use by
// multiple goroutines — duplicate the pointer, not the struct.
type Engine struct {
	cfg Config

	mu  sync.RWMutex
	w   *wal.Wal
	idx *index.Index
	lru *cache.LRU       // nil when CacheCapacity == 0
	wb  *cache.WriteBack // nil when WriteBackCache == false
	closed bool

	// compactMu serializes compaction passes against each other: Compact
	// can be called on a caller's goroutine while the background worker is
	// mid-pass, and runCompactionPass's WAL-size recheck is only valid
	// against Put/Delete if exactly one pass runs at a time.
	compactMu sync.Mutex

	compactor *compaction.Worker // nil in synchronous mode
	tracker   *compaction.Tracker

	// ErrorHandler receives fatal errors from the background compaction
	// goroutine, mirroring the teacher's Store.ErrorHandler field. It
	// defaults to logging via the standard logger.
	ErrorHandler func(error)
}

const logPrefix = "crabkv: "

// Open creates data_dir if absent, opens (or creates) the active WAL,
// replays it to rebuild the index, and launches the background compactor
// if cfg.AsyncCompaction is set.
func Open(cfg Config) (*Engine, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("%w: DataDir is required", record.ErrInvalidInput)
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("engine: create data dir: %w", err)
	}

	activePath, err := wal.ResolveActive(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	idx, err := recoverIndex(activePath)
	if err != nil {
		return nil, err
	}

	w, err := wal.Open(activePath, cfg.SyncInterval)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:     cfg,
		w:       w,
		idx:     idx,
		tracker: compaction.NewTracker(),
		ErrorHandler: func(err error) {
			log.Println(logPrefix+"background compaction error:", err)
		},
	}

	if cfg.CacheCapacity > 0 {
		lru, err := cache.NewLRU(cfg.CacheCapacity)
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("engine: create cache: %w", err)
		}
		e.lru = lru
	}
	if cfg.WriteBackCache {
		e.wb = cache.NewWriteBack()
	}

	if cfg.AsyncCompaction {
		e.compactor = compaction.NewWorker(func() {
			if err := e.runCompactionPass(); err != nil {
				e.ErrorHandler(fmt.Errorf("compaction pass: %w", err))
			}
		})
		e.compactor.Start()
	}

	return e, nil
}

func nowUnix() uint64 {
	return uint64(time.Now().Unix())
}

// checkClosedLocked must be called with mu held (read or write).
func (e *Engine) checkClosedLocked() error {
	if e.closed {
		return ErrClosed
	}
	return nil
}

// Close flushes the write-back buffer, signals the background compactor to
// finish and exit, and fsyncs the WAL. The Engine must not be used
// afterward.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	flushErr := e.Flush()

	if e.compactor != nil {
		e.compactor.Shutdown()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	if err := e.w.Close(); err != nil {
		if flushErr != nil {
			return flushErr
		}
		return err
	}
	return flushErr
}
