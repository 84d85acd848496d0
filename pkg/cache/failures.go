package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/glyphkit/glyphcache/pkg/glyph"
)

// DefaultFailureCapacity bounds the failure ledger.
const DefaultFailureCapacity = 4096

// FailureLedger remembers when a glyph last failed to resolve so that repeat
// requests inside the suppression window are rejected without any I/O. The
// TTL is supplied per call rather than stored with the record, so a live
// configuration change takes effect immediately. The ledger is never
// persisted; a restart always permits a fresh attempt.
type FailureLedger struct {
	failures *lru.Cache[glyph.Key, time.Time]
}

// NewFailureLedger creates a ledger holding at most capacity records. A
// non-positive capacity selects DefaultFailureCapacity.
func NewFailureLedger(capacity int) *FailureLedger {
	if capacity <= 0 {
		capacity = DefaultFailureCapacity
	}
	failures, err := lru.New[glyph.Key, time.Time](capacity)
	if err != nil {
		panic(err)
	}
	return &FailureLedger{failures: failures}
}

// Suppressed reports whether key failed within ttl of now. Stale records are
// evicted lazily on lookup.
func (l *FailureLedger) Suppressed(key glyph.Key, now time.Time, ttl time.Duration) bool {
	failedAt, ok := l.failures.Get(key)
	if !ok {
		return false
	}
	if now.Sub(failedAt) >= ttl {
		l.failures.Remove(key)
		return false
	}
	return true
}

// RecordFailure upserts the last-failure timestamp for key.
func (l *FailureLedger) RecordFailure(key glyph.Key, now time.Time) {
	l.failures.Add(key, now)
}

// Clear removes any failure record for key. Called whenever a resolution
// succeeds: success supersedes failure.
func (l *FailureLedger) Clear(key glyph.Key) {
	l.failures.Remove(key)
}

// Len returns the number of live-or-stale records currently held.
func (l *FailureLedger) Len() int {
	return l.failures.Len()
}
