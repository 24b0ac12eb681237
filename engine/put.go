package engine

import (
	"time"

	"github.com/AntoineB0/CrabKV/index"
	"github.com/AntoineB0/CrabKV/record"
)

// Put writes a Put record for key. If ttl is zero, the engine's configured
// DefaultTTL (if any) applies; pass a positive ttl to override it for this
// call. key must be non-empty; value may be empty.
func (e *Engine) Put(key, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = e.cfg.DefaultTTL
	}
	var expiresAt uint64
	if ttl > 0 {
		expiresAt = uint64(time.Now().Add(ttl).Unix())
	}

	e.mu.Lock()
	if err := e.checkClosedLocked(); err != nil {
		e.mu.Unlock()
		return err
	}

	if e.wb != nil {
		valueCopy := append([]byte(nil), value...)
		e.wb.Put(string(key), valueCopy, expiresAt)
		e.mu.Unlock()
		return nil
	}

	rec := &record.Record{Kind: record.KindPut, Key: key, Value: value, ExpiresAt: expiresAt}
	if err := rec.Validate(); err != nil {
		e.mu.Unlock()
		return err
	}

	offset, err := e.w.Append(rec, e.cfg.Compression)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	size := e.w.Size() - offset
	e.applyPutLocked(string(key), value, index.Pointer{
		Offset:     offset,
		Length:     size,
		ExpiresAt:  expiresAt,
		ValueLen:   uint32(size) - uint32(record.HeaderSize) - uint32(len(key)),
		Compressed: e.cfg.Compression && len(value) > 0,
	})

	total, live := e.w.Size(), e.idx.LiveBytes()
	e.mu.Unlock()

	e.maybeCompact(total, live)
	return nil
}

// applyPutLocked updates the index and, if enabled, the read cache. Caller
// must hold e.mu for writing.
func (e *Engine) applyPutLocked(key string, value []byte, ptr index.Pointer) {
	e.idx.Set(key, ptr)
	if e.lru != nil {
		e.lru.Put(key, value)
	}
}

// PutBatch is semantically equivalent to issuing each Put in order, but the
// whole batch is encoded, appended, and fsynced as a single unit.
func (e *Engine) PutBatch(entries []PutEntry) error {
	e.mu.Lock()
	if err := e.checkClosedLocked(); err != nil {
		e.mu.Unlock()
		return err
	}

	if e.wb != nil {
		for _, ent := range entries {
			ttl := ent.TTL
			if ttl == 0 {
				ttl = e.cfg.DefaultTTL
			}
			var expiresAt uint64
			if ttl > 0 {
				expiresAt = uint64(time.Now().Add(ttl).Unix())
			}
			valueCopy := append([]byte(nil), ent.Value...)
			e.wb.Put(string(ent.Key), valueCopy, expiresAt)
		}
		e.mu.Unlock()
		return nil
	}

	recs := make([]*record.Record, len(entries))
	expiries := make([]uint64, len(entries))
	for i, ent := range entries {
		ttl := ent.TTL
		if ttl == 0 {
			ttl = e.cfg.DefaultTTL
		}
		var expiresAt uint64
		if ttl > 0 {
			expiresAt = uint64(time.Now().Add(ttl).Unix())
		}
		expiries[i] = expiresAt
		rec := &record.Record{Kind: record.KindPut, Key: ent.Key, Value: ent.Value, ExpiresAt: expiresAt}
		if err := rec.Validate(); err != nil {
			e.mu.Unlock()
			return err
		}
		recs[i] = rec
	}

	offsets, err := e.w.AppendBatch(recs, e.cfg.Compression)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	for i, ent := range entries {
		var size int64
		if i+1 < len(offsets) {
			size = offsets[i+1] - offsets[i]
		} else {
			size = e.w.Size() - offsets[i]
		}
		e.applyPutLocked(string(ent.Key), ent.Value, index.Pointer{
			Offset:     offsets[i],
			Length:     size,
			ExpiresAt:  expiries[i],
			ValueLen:   uint32(size) - uint32(record.HeaderSize) - uint32(len(ent.Key)),
			Compressed: e.cfg.Compression && len(ent.Value) > 0,
		})
	}

	total, live := e.w.Size(), e.idx.LiveBytes()
	e.mu.Unlock()

	e.maybeCompact(total, live)
	return nil
}

// PutEntry is one entry of a PutBatch call. A zero TTL means "use the
// engine's DefaultTTL."
type PutEntry struct {
	Key   []byte
	Value []byte
	TTL   time.Duration
}
