package engine

import "github.com/AntoineB0/CrabKV/record"

// Get returns the current value for key, transparently dropping and
// reporting a miss for expired entries. ok is false both when the key was
// never set and when it has expired or been deleted.
func (e *Engine) Get(key []byte) (value []byte, ok bool, err error) {
	e.mu.RLock()
	if err := e.checkClosedLocked(); err != nil {
		e.mu.RUnlock()
		return nil, false, err
	}

	k := string(key)
	now := nowUnix()

	if e.wb != nil {
		if ent, found := e.wb.Get(k); found {
			e.mu.RUnlock()
			if ent.Deleted || record.Expired(ent.ExpiresAt, now) {
				return nil, false, nil
			}
			return ent.Value, true, nil
		}
	}

	ptr, found := e.idx.Get(k)
	if !found {
		e.mu.RUnlock()
		return nil, false, nil
	}

	if record.Expired(ptr.ExpiresAt, now) {
		e.mu.RUnlock()
		e.expireKey(k)
		return nil, false, nil
	}

	if e.lru != nil {
		if v, hit := e.lru.Get(k); hit {
			e.mu.RUnlock()
			return v, true, nil
		}
	}

	rec, err := e.w.ReadAt(ptr.Offset)
	if err != nil {
		e.mu.RUnlock()
		return nil, false, err
	}
	if e.lru != nil {
		e.lru.Put(k, rec.Value)
	}
	e.mu.RUnlock()
	return rec.Value, true, nil
}

// expireKey upgrades to the write lock to remove an entry discovered
// expired during a Get, re-checking the pointer is still the same (and
// still expired) in case a concurrent write already handled it.
func (e *Engine) expireKey(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	ptr, ok := e.idx.Get(key)
	if !ok || !record.Expired(ptr.ExpiresAt, nowUnix()) {
		return
	}
	e.idx.Delete(key)
	if e.lru != nil {
		e.lru.Remove(key)
	}
}
