// Package dedup decides whether a candidate text is a near-duplicate of a
// recently published one, using cosine similarity over sentence embeddings.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deusflow/newsrelay/internal/cache"
	"github.com/deusflow/newsrelay/internal/embed"
	"github.com/deusflow/newsrelay/internal/history"
	"github.com/deusflow/newsrelay/internal/logger"
)

// ErrEmbedding marks an embedding backend failure. The caller skips the
// current item instead of crashing the process.
var ErrEmbedding = errors.New("embedding failed")

type Detector struct {
	embedder  embed.Embedder
	threshold float64
	vectors   *cache.VectorCache
	window    time.Duration
}

// NewDetector returns a detector with the given similarity threshold.
// window bounds how long cached record vectors stay valid; it should equal
// the history window so cached vectors expire with their records.
func NewDetector(embedder embed.Embedder, threshold float64, window time.Duration) *Detector {
	return &Detector{
		embedder:  embedder,
		threshold: threshold,
		vectors:   cache.New(),
		window:    window,
	}
}

// IsDuplicate embeds the candidate once and compares it against the history
// window newest-first, returning true on the first similarity strictly above
// the threshold. A similarity exactly equal to the threshold is not a
// duplicate. Any embedding failure wraps ErrEmbedding.
func (d *Detector) IsDuplicate(ctx context.Context, candidate string, records []history.Record) (bool, error) {
	if len(records) == 0 {
		return false, nil
	}

	candVec, err := d.embedder.Embed(ctx, candidate)
	if err != nil {
		return false, fmt.Errorf("%w: candidate: %v", ErrEmbedding, err)
	}

	// Newest records are most likely to match, so walk backwards.
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		recVec, err := d.recordVector(ctx, rec.Text)
		if err != nil {
			return false, fmt.Errorf("%w: history record: %v", ErrEmbedding, err)
		}

		similarity := embed.Cosine(candVec, recVec)
		logger.Debug("similarity check",
			"candidate", prefix(candidate), "record", prefix(rec.Text), "similarity", similarity)

		if similarity > d.threshold {
			return true, nil
		}
	}
	return false, nil
}

func (d *Detector) recordVector(ctx context.Context, text string) ([]float32, error) {
	key := cache.Key(text)
	if vec, ok := d.vectors.Get(key); ok {
		return vec, nil
	}
	vec, err := d.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	d.vectors.Set(key, vec, d.window)
	return vec, nil
}

func prefix(s string) string {
	runes := []rune(s)
	if len(runes) > 100 {
		return string(runes[:100]) + "..."
	}
	return s
}
