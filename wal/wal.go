// Package wal owns the single append-only file that is CrabKv's sole
// source of truth on disk. It provides buffered/batched append with a
// configurable fsync cadence, positional reads that always see previously
// successful appends, a restartable streaming scan, and an atomic
// replace-with-new-file operation used by compaction.
package wal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/AntoineB0/CrabKV/record"
)

// Wal owns one active file on disk.
type Wal struct {
	mu  sync.Mutex
	f   *os.File
	bw  *bufio.Writer
	path string

	size int64 // tracked end-of-file offset; appends are always at size

	syncInterval time.Duration // 0 means: fsync after every append
	lastSync     time.Time
}

// Filenames within a data directory, per spec.md §6.1.
const (
	ActiveFilename  = "wal.log"
	OldFilename     = "wal.log.old"
	CompactFilename = "wal.log.compact"
)

// ResolveActive implements the recovery-on-open file resolution of
// spec.md §6.1 steps 1-3: prefer an existing active file, fall back to a
// stray .old left by a crashed swap, otherwise there is nothing to resolve
// and the caller should create a fresh file. It also clears stray
// .old/.compact files once the active file is settled, since at most one
// of them is ever meaningful after a clean resolution.
func ResolveActive(dataDir string) (activePath string, err error) {
	active := dataDir + string(os.PathSeparator) + ActiveFilename
	old := dataDir + string(os.PathSeparator) + OldFilename
	compact := dataDir + string(os.PathSeparator) + CompactFilename

	if _, statErr := os.Stat(active); statErr == nil {
		_ = os.Remove(old)
		_ = os.Remove(compact)
		return active, nil
	} else if !os.IsNotExist(statErr) {
		return "", fmt.Errorf("wal: stat active: %w", statErr)
	}

	if _, statErr := os.Stat(old); statErr == nil {
		if err := os.Rename(old, active); err != nil {
			return "", fmt.Errorf("wal: recover .old: %w", err)
		}
		_ = os.Remove(compact)
		return active, nil
	}

	// Neither exists: a fresh Open(active, ...) below creates it.
	_ = os.Remove(compact)
	return active, nil
}

// TruncateFile truncates the file at path to size bytes. Used by recovery
// to drop a trailing corrupt record at the last good record boundary,
// before the WAL is opened for normal operation.
func TruncateFile(path string, size int64) error {
	if err := os.Truncate(path, size); err != nil {
		return fmt.Errorf("wal: truncate: %w", err)
	}
	return nil
}

// Open opens (creating if absent) the WAL file at path in append mode and
// positions the tracked size at the current end of file. syncInterval==0
// means fsync after every logical append, matching spec.md §4.3's default.
func Open(path string, syncInterval time.Duration) (*Wal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("wal: open %s: %w", path, err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("wal: stat %s: %w", path, err)
	}
	return &Wal{
		f:            f,
		bw:           bufio.NewWriter(f),
		path:         path,
		size:         stat.Size(),
		syncInterval: syncInterval,
		lastSync:     time.Now(),
	}, nil
}

// Path returns the file path this Wal was opened with.
func (w *Wal) Path() string {
	return w.path
}

// Size returns the current logical length of the WAL, including bytes
// buffered but not yet fsynced.
func (w *Wal) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Append encodes rec and writes it at the current end of file, returning
// the byte offset at which the record starts. The write is drained to the
// OS (so a subsequent ReadAt sees it) before Append returns; whether it is
// additionally fsynced depends on the configured sync interval.
func (w *Wal) Append(rec *record.Record, compress bool) (int64, error) {
	buf, err := record.Encode(rec, record.EncodeOptions{Compress: compress})
	if err != nil {
		return 0, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	offset := w.size
	if _, err := w.bw.Write(buf); err != nil {
		return 0, fmt.Errorf("wal: append: %w", err)
	}
	if err := w.bw.Flush(); err != nil {
		return 0, fmt.Errorf("wal: flush: %w", err)
	}
	w.size += int64(len(buf))

	if err := w.maybeSyncLocked(false); err != nil {
		return 0, err
	}
	return offset, nil
}

// AppendBatch encodes and appends every record contiguously, sharing one
// fsync decision for the whole batch. It returns the starting offset of
// each record in input order.
func (w *Wal) AppendBatch(recs []*record.Record, compress bool) ([]int64, error) {
	if len(recs) == 0 {
		return nil, nil
	}

	encoded := make([][]byte, len(recs))
	for i, rec := range recs {
		buf, err := record.Encode(rec, record.EncodeOptions{Compress: compress})
		if err != nil {
			return nil, err
		}
		encoded[i] = buf
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	offsets := make([]int64, len(recs))
	offset := w.size
	for i, buf := range encoded {
		offsets[i] = offset
		if _, err := w.bw.Write(buf); err != nil {
			return nil, fmt.Errorf("wal: append batch: %w", err)
		}
		offset += int64(len(buf))
	}
	if err := w.bw.Flush(); err != nil {
		return nil, fmt.Errorf("wal: flush: %w", err)
	}
	w.size = offset

	if err := w.maybeSyncLocked(false); err != nil {
		return nil, err
	}
	return offsets, nil
}

// maybeSyncLocked decides whether to fsync, per the configured policy.
// Caller must hold w.mu.
func (w *Wal) maybeSyncLocked(force bool) error {
	if !force && w.syncInterval > 0 && time.Since(w.lastSync) < w.syncInterval {
		return nil
	}
	if err := w.f.Sync(); err != nil {
		return fmt.Errorf("wal: fsync: %w", err)
	}
	w.lastSync = time.Now()
	return nil
}

// Sync forces an fsync regardless of the configured interval. Used by
// flush() and on engine close, per spec.md §4.3.
func (w *Wal) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.maybeSyncLocked(true)
}

// ReadAt decodes exactly one record starting at offset. It opens an
// independent file handle so concurrent appends never disturb the active
// write position, and always observes bytes from any Append that has
// already returned (append drains to the OS before returning).
func (w *Wal) ReadAt(offset int64) (*record.Record, error) {
	rec, _, err := w.ReadAtSize(offset)
	return rec, err
}

// ReadAtSize is ReadAt but also returns the record's total on-disk size.
func (w *Wal) ReadAtSize(offset int64) (*record.Record, int64, error) {
	f, err := os.Open(w.path)
	if err != nil {
		return nil, 0, fmt.Errorf("wal: read open: %w", err)
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("wal: seek: %w", err)
	}
	rec, n, err := record.Decode(f)
	if err != nil {
		if err == io.EOF {
			return nil, 0, fmt.Errorf("%w: offset %d past end of file", record.ErrCorruption, offset)
		}
		return nil, 0, err
	}
	return rec, n, nil
}

// Scanner yields every record in a WAL file from offset 0 in write order.
type Scanner struct {
	f      *os.File
	r      *bufio.Reader
	offset int64
}

// Scan opens a fresh read handle and returns a restartable, single-pass
// Scanner over the WAL's records from offset 0.
func (w *Wal) Scan() (*Scanner, error) {
	f, err := os.Open(w.path)
	if err != nil {
		return nil, fmt.Errorf("wal: scan open: %w", err)
	}
	return &Scanner{f: f, r: bufio.NewReader(f)}, nil
}

// Next decodes the next record. It returns io.EOF when the file is cleanly
// exhausted. A truncated trailing record is reported as record.ErrCorruption,
// with offset set to the byte at which the bad record starts so callers can
// truncate the file there. size is the record's total on-disk length
// (header+key+value), valid only when err is nil.
func (s *Scanner) Next() (offset int64, rec *record.Record, size int64, err error) {
	start := s.offset
	rec, n, err := record.Decode(s.r)
	if err != nil {
		return start, nil, 0, err
	}
	s.offset += n
	return start, rec, n, nil
}

// Close releases the Scanner's file handle.
func (s *Scanner) Close() error {
	return s.f.Close()
}

// ReplaceWith installs newPath as the active WAL using the rename sequence
// of spec.md §4.3, safe on both Unix and Windows:
//  1. close the current active file
//  2. rename active -> active.old
//  3. rename newPath -> active
//  4. delete active.old
//
// On success, w is reopened against the new active file with size set to
// newSize (the caller already knows this from having just written the
// compaction file).
func (w *Wal) ReplaceWith(newPath string, newSize int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	oldPath := w.path + ".old"

	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("wal: flush before swap: %w", err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("wal: close before swap: %w", err)
	}
	if err := os.Rename(w.path, oldPath); err != nil {
		return fmt.Errorf("wal: rename active->old: %w", err)
	}
	if err := os.Rename(newPath, w.path); err != nil {
		return fmt.Errorf("wal: rename new->active: %w", err)
	}
	if err := os.Remove(oldPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("wal: remove stale .old: %w", err)
	}

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("wal: reopen after swap: %w", err)
	}
	w.f = f
	w.bw = bufio.NewWriter(f)
	w.size = newSize
	w.lastSync = time.Now()
	return nil
}

// Close flushes buffered writes, fsyncs, and closes the file handle. The
// Wal must not be used afterward.
func (w *Wal) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("wal: close flush: %w", err)
	}
	if err := w.f.Sync(); err != nil {
		return fmt.Errorf("wal: close fsync: %w", err)
	}
	return w.f.Close()
}
