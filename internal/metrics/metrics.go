package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	EntriesProcessed   int64
	DuplicatesFiltered int64
	PostsPublished     int64
	PublishFailures    int64
	RewriteFallbacks   int64
	EmbeddingErrors    int64

	// Status
	LastCycleTime time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementEntriesProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EntriesProcessed++
}

func (m *Metrics) IncrementDuplicatesFiltered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered++
}

func (m *Metrics) IncrementPostsPublished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PostsPublished++
}

func (m *Metrics) IncrementPublishFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishFailures++
}

func (m *Metrics) IncrementRewriteFallbacks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RewriteFallbacks++
}

func (m *Metrics) IncrementEmbeddingErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EmbeddingErrors++
}

func (m *Metrics) SetLastCycle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastCycleTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"entries_processed":   m.EntriesProcessed,
		"duplicates_filtered": m.DuplicatesFiltered,
		"posts_published":     m.PostsPublished,
		"publish_failures":    m.PublishFailures,
		"rewrite_fallbacks":   m.RewriteFallbacks,
		"embedding_errors":    m.EmbeddingErrors,
		"last_cycle_time":     m.LastCycleTime.Format(time.RFC3339),
		"last_error_time":     m.LastErrorTime.Format(time.RFC3339),
		"last_error":          m.LastError,
		"is_healthy":          m.IsHealthy,
	}
}
