// Package cache implements CrabKv's optional two-layer cache: a
// read-through LRU over decoded values, and a separate write-back buffer
// that can stage puts/deletes in memory until an explicit flush.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// LRU is a bounded, recency-ordered cache from key to decoded value. It
// bypasses the WAL entirely on a hit.
type LRU struct {
	c *lru.Cache[string, []byte]
}

// NewLRU returns an LRU cache with room for capacity entries. capacity must
// be > 0.
func NewLRU(capacity int) (*LRU, error) {
	c, err := lru.New[string, []byte](capacity)
	if err != nil {
		return nil, err
	}
	return &LRU{c: c}, nil
}

// Get returns the cached value for key, touching its recency.
func (l *LRU) Get(key string) ([]byte, bool) {
	return l.c.Get(key)
}

// Put inserts or replaces the cached value for key.
func (l *LRU) Put(key string, value []byte) {
	l.c.Add(key, value)
}

// Remove evicts key, if present. Used on delete and on expired-on-read.
func (l *LRU) Remove(key string) {
	l.c.Remove(key)
}

// Len reports the number of entries currently cached.
func (l *LRU) Len() int {
	return l.c.Len()
}
