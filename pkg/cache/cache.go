// Package cache provides the three storage tiers behind glyph resolution: a
// bounded in-memory byte cache, a time-windowed failure ledger, and a
// filesystem-backed persistent store. The memory tier and ledger are volatile
// and rebuilt empty on every process start; the disk tier is the durable
// source of truth.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/glyphkit/glyphcache/pkg/glyph"
)

// DefaultMemoryCapacity bounds the memory tier. Sized well above the distinct
// glyph cardinality seen in practice so eviction only matters under
// adversarial input.
const DefaultMemoryCapacity = 4096

// Memory is the fastest resolution tier: a concurrent LRU from key to raw
// image bytes. Entries never expire; they are only displaced by capacity
// pressure.
type Memory struct {
	entries *lru.Cache[glyph.Key, []byte]
}

// NewMemory creates a memory tier holding at most capacity entries. A
// non-positive capacity selects DefaultMemoryCapacity.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	entries, err := lru.New[glyph.Key, []byte](capacity)
	if err != nil {
		// lru.New only fails for non-positive sizes, excluded above.
		panic(err)
	}
	return &Memory{entries: entries}
}

// Get retrieves the cached bytes for key.
func (m *Memory) Get(key glyph.Key) ([]byte, bool) {
	return m.entries.Get(key)
}

// Put stores bytes for key, displacing the least recently used entry when at
// capacity.
func (m *Memory) Put(key glyph.Key, data []byte) {
	m.entries.Add(key, data)
}

// Remove drops the entry for key, if present.
func (m *Memory) Remove(key glyph.Key) {
	m.entries.Remove(key)
}

// Len returns the number of cached entries.
func (m *Memory) Len() int {
	return m.entries.Len()
}
