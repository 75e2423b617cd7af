// Package history keeps the time-windowed record of previously published
// texts used for duplicate detection. The in-memory window is authoritative;
// durable storage is best-effort and never blocks the pipeline.
package history

import "time"

// Record is one previously published (post-rewrite) text.
type Record struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Store owns the lifetime of history records.
type Store interface {
	// Load reads persisted records at process start. A missing or corrupt
	// source yields an empty window; Load never fails the process.
	Load() error

	// Prune drops every record older than the window relative to now.
	Prune(now time.Time)

	// Append prunes, records text at now, and persists the resulting
	// window. A persistence error is returned for logging but the
	// in-memory append is never rolled back.
	Append(text string, now time.Time) error

	// Snapshot returns the live window in append order (oldest first).
	Snapshot() []Record
}

func pruneRecords(records []Record, now time.Time, window time.Duration) []Record {
	cutoff := now.Add(-window)
	fresh := records[:0]
	for _, r := range records {
		if r.Timestamp.After(cutoff) {
			fresh = append(fresh, r)
		}
	}
	return fresh
}
