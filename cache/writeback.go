package cache

// BufferedEntry is one pending mutation staged in the write-back buffer:
// either a value with its absolute expiry, or a tombstone (Deleted==true).
type BufferedEntry struct {
	Value     []byte
	ExpiresAt uint64
	Deleted   bool
}

// WriteBack stages puts and deletes in memory. Nothing here touches the
// WAL or the index; Drain (invoked by Engine.Flush) hands back entries in
// insertion order so the caller can preserve last-write-wins per key
// across a batch append.
type WriteBack struct {
	order   []string
	entries map[string]BufferedEntry
}

// NewWriteBack returns an empty write-back buffer.
func NewWriteBack() *WriteBack {
	return &WriteBack{entries: make(map[string]BufferedEntry)}
}

// Put stages a value for key, overwriting any prior pending entry for the
// same key in place (so repeated puts to one key before a flush do not
// grow the order slice unboundedly).
func (w *WriteBack) Put(key string, value []byte, expiresAt uint64) {
	if _, exists := w.entries[key]; !exists {
		w.order = append(w.order, key)
	}
	w.entries[key] = BufferedEntry{Value: value, ExpiresAt: expiresAt}
}

// Delete stages a tombstone for key.
func (w *WriteBack) Delete(key string) {
	if _, exists := w.entries[key]; !exists {
		w.order = append(w.order, key)
	}
	w.entries[key] = BufferedEntry{Deleted: true}
}

// Get returns the pending entry for key, if any. The caller must check
// Deleted: a pending tombstone is a hit on "key is pending-deleted", not a
// miss on the buffer.
func (w *WriteBack) Get(key string) (BufferedEntry, bool) {
	e, ok := w.entries[key]
	return e, ok
}

// Len reports the number of distinct pending keys.
func (w *WriteBack) Len() int {
	return len(w.entries)
}

// Drain returns every pending (key, entry) pair in the order each key was
// first staged since the last Drain, then clears the buffer. This ordering
// is what lets flush() preserve per-key last-write-wins when it appends the
// drained entries as a single WAL batch.
func (w *WriteBack) Drain() []DrainedEntry {
	out := make([]DrainedEntry, 0, len(w.order))
	for _, key := range w.order {
		e, ok := w.entries[key]
		if !ok {
			continue // defensive: key already removed, shouldn't happen
		}
		out = append(out, DrainedEntry{Key: key, BufferedEntry: e})
	}
	w.order = nil
	w.entries = make(map[string]BufferedEntry)
	return out
}

// DrainedEntry pairs a key with its staged entry, in drain order.
type DrainedEntry struct {
	Key string
	BufferedEntry
}
