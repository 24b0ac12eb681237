// Package index holds the RAM-resident mapping from key to the location of
// that key's most recent live Put record in the active WAL. There is no
// on-disk index; it is rebuilt by replaying the WAL on every engine open.
package index

// Pointer locates a key's current value in the WAL.
type Pointer struct {
	Offset     int64  // byte offset of the record's header within the WAL
	Length     int64  // total on-disk size of the record (header+key+value)
	ExpiresAt  uint64 // unix seconds, 0 = never
	ValueLen   uint32 // length of the stored (possibly compressed) value payload
	Compressed bool
}

// Index is a mapping from key to Pointer. It is not internally
// synchronized: callers (the engine) serialize access under their own lock,
// per spec.md §5.
type Index struct {
	m map[string]Pointer
}

// New returns an empty Index.
func New() *Index {
	return &Index{m: make(map[string]Pointer)}
}

// Get returns the pointer for key, if present.
func (idx *Index) Get(key string) (Pointer, bool) {
	p, ok := idx.m[key]
	return p, ok
}

// Set records the latest pointer for key, replacing any prior one.
func (idx *Index) Set(key string, p Pointer) {
	idx.m[key] = p
}

// Delete removes key from the index. It reports whether the key was
// present.
func (idx *Index) Delete(key string) bool {
	_, ok := idx.m[key]
	if ok {
		delete(idx.m, key)
	}
	return ok
}

// Len returns the number of live keys.
func (idx *Index) Len() int {
	return len(idx.m)
}

// LiveBytes sums Length over every pointer, i.e. the number of WAL bytes
// still referenced by a live key.
func (idx *Index) LiveBytes() int64 {
	var total int64
	for _, p := range idx.m {
		total += p.Length
	}
	return total
}

// Snapshot returns a point-in-time copy of key -> Pointer, for the
// compactor to iterate without holding the engine's write lock for the
// duration of the rewrite pass.
func (idx *Index) Snapshot() map[string]Pointer {
	out := make(map[string]Pointer, len(idx.m))
	for k, v := range idx.m {
		out[k] = v
	}
	return out
}

// Replace swaps the entire backing map, used by compaction to repoint every
// live key at its offset in the freshly compacted WAL in one step.
func (idx *Index) Replace(m map[string]Pointer) {
	idx.m = m
}

// Range calls fn for every key/pointer pair. fn must not mutate idx.
func (idx *Index) Range(fn func(key string, p Pointer) bool) {
	for k, v := range idx.m {
		if !fn(k, v) {
			return
		}
	}
}
