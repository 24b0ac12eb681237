package engine

import "github.com/AntoineB0/CrabKV/record"

// Delete removes key. It reports whether the key existed and was not
// already expired. A Delete record is always appended to the WAL when the
// key was live, so it shadows every earlier Put for that key (invariant 5).
// With write-back caching enabled, a tombstone is staged in the buffer
// instead, and the Delete record reaches the WAL on the next Flush.
func (e *Engine) Delete(key []byte) (existed bool, err error) {
	e.mu.Lock()
	if err := e.checkClosedLocked(); err != nil {
		e.mu.Unlock()
		return false, err
	}

	k := string(key)
	now := nowUnix()

	if e.wb != nil {
		existed = e.wbKeyIsLiveLocked(k, now)
		e.wb.Delete(k)
		e.mu.Unlock()
		return existed, nil
	}

	ptr, found := e.idx.Get(k)
	if !found {
		e.mu.Unlock()
		return false, nil
	}
	if record.Expired(ptr.ExpiresAt, now) {
		e.idx.Delete(k)
		if e.lru != nil {
			e.lru.Remove(k)
		}
		e.mu.Unlock()
		return false, nil
	}

	rec := &record.Record{Kind: record.KindDelete, Key: key}
	if _, err := e.w.Append(rec, false); err != nil {
		e.mu.Unlock()
		return false, err
	}
	e.idx.Delete(k)
	if e.lru != nil {
		e.lru.Remove(k)
	}

	total, live := e.w.Size(), e.idx.LiveBytes()
	e.mu.Unlock()

	e.maybeCompact(total, live)
	return true, nil
}

// wbKeyIsLiveLocked reports whether key is currently visible (not a pending
// tombstone, not expired), consulting the write-back buffer first and
// falling back to the index — the same visibility rule Get uses. Caller
// must hold e.mu.
func (e *Engine) wbKeyIsLiveLocked(key string, now uint64) bool {
	if ent, ok := e.wb.Get(key); ok {
		return !ent.Deleted && !record.Expired(ent.ExpiresAt, now)
	}
	ptr, ok := e.idx.Get(key)
	return ok && !record.Expired(ptr.ExpiresAt, now)
}
