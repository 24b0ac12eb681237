package engine

import "time"

// Config is the configuration surface of spec.md §6.4.
type Config struct {
	// DataDir is the directory holding the WAL and any transient
	// compaction/swap files. Required.
	DataDir string

	// CacheCapacity, if > 0, enables the read-through LRU with room for
	// this many decoded values. Zero disables the read cache.
	CacheCapacity int

	// DefaultTTL is applied to Put calls that don't specify their own TTL.
	// Zero means "no default — entries never expire unless a TTL is given
	// explicitly."
	DefaultTTL time.Duration

	// SyncInterval, if zero, fsyncs after every append (the durable
	// default). If positive, fsync is only issued once this much
	// wall-clock time has elapsed since the previous one.
	SyncInterval time.Duration

	// Compression enables Snappy compression of Put value payloads.
	Compression bool

	// AsyncCompaction runs compaction on a dedicated background goroutine
	// instead of blocking the caller's Put/Delete.
	AsyncCompaction bool

	// WriteBackCache stages puts/deletes in memory and only persists them
	// on an explicit Flush, trading durability for throughput.
	WriteBackCache bool
}
