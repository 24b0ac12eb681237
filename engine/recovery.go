package engine

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/AntoineB0/CrabKV/index"
	"github.com/AntoineB0/CrabKV/record"
	"github.com/AntoineB0/CrabKV/wal"
)

// recoverIndex implements spec.md §6.1 steps 4-5: scan the WAL at path from
// offset 0, applying every decoded record to a fresh index and dropping
// already-expired Puts, using a single "now" for the whole scan so that
// recovery's expiry decisions are internally consistent. If decoding fails
// partway through, the file is truncated to the last successful record
// boundary and recovery continues with everything before it — a per-record
// decode failure is non-fatal, per spec.md §7.
func recoverIndex(path string) (*index.Index, error) {
	idx := index.New()
	now := nowUnix()

	w, err := wal.Open(path, 0)
	if err != nil {
		return nil, err
	}
	// This Open is only used to drive a scan; the caller reopens its own
	// long-lived *wal.Wal with the configured sync interval afterward.
	defer w.Close()

	sc, err := w.Scan()
	if err != nil {
		return nil, err
	}
	defer sc.Close()

	for {
		offset, rec, size, err := sc.Next()
		if err == nil {
			applyRecordToIndex(idx, rec, offset, size, now)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, record.ErrCorruption) {
			log.Printf(logPrefix+"truncating WAL at offset %d: %v", offset, err)
			sc.Close()
			w.Close()
			if err := wal.TruncateFile(path, offset); err != nil {
				return nil, err
			}
			break
		}
		return nil, fmt.Errorf("engine: recovery scan: %w", err)
	}

	return idx, nil
}

func applyRecordToIndex(idx *index.Index, rec *record.Record, offset, size int64, now uint64) {
	key := string(rec.Key)
	switch rec.Kind {
	case record.KindPut:
		if record.Expired(rec.ExpiresAt, now) {
			idx.Delete(key)
			return
		}
		onDiskValueLen := size - int64(record.HeaderSize) - int64(len(rec.Key))
		idx.Set(key, index.Pointer{
			Offset:     offset,
			Length:     size,
			ExpiresAt:  rec.ExpiresAt,
			ValueLen:   uint32(onDiskValueLen),
			Compressed: rec.Compressed,
		})
	case record.KindDelete:
		idx.Delete(key)
	}
}
