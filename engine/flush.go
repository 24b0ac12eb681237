package engine

import "github.com/AntoineB0/CrabKV/record"

// Flush drains the write-back buffer (if enabled) into the WAL as a single
// batch and unconditionally fsyncs — the only defined durability point when
// write-back caching is enabled.
func (e *Engine) Flush() error {
	e.mu.Lock()
	if err := e.checkClosedLocked(); err != nil {
		e.mu.Unlock()
		return err
	}

	if e.wb != nil {
		drained := e.wb.Drain()
		if len(drained) > 0 {
			recs := make([]*record.Record, len(drained))
			for i, d := range drained {
				if d.Deleted {
					recs[i] = &record.Record{Kind: record.KindDelete, Key: []byte(d.Key)}
				} else {
					recs[i] = &record.Record{Kind: record.KindPut, Key: []byte(d.Key), Value: d.Value, ExpiresAt: d.ExpiresAt}
				}
			}
			offsets, err := e.w.AppendBatch(recs, e.cfg.Compression)
			if err != nil {
				e.mu.Unlock()
				return err
			}
			for i, d := range drained {
				if d.Deleted {
					e.idx.Delete(d.Key)
					if e.lru != nil {
						e.lru.Remove(d.Key)
					}
					continue
				}
				var size int64
				if i+1 < len(offsets) {
					size = offsets[i+1] - offsets[i]
				} else {
					size = e.w.Size() - offsets[i]
				}
				e.applyPutLocked(d.Key, d.Value, indexPointerFor(offsets[i], size, d.ExpiresAt, len(d.Key), e.cfg.Compression && len(d.Value) > 0))
			}
		}
	}

	if err := e.w.Sync(); err != nil {
		e.mu.Unlock()
		return err
	}

	total, live := e.w.Size(), e.idx.LiveBytes()
	e.mu.Unlock()

	e.maybeCompact(total, live)
	return nil
}
