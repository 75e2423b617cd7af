package dedup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/deusflow/newsrelay/internal/history"
)

// stubEmbedder maps exact texts to fixed vectors and counts calls.
type stubEmbedder struct {
	vectors map[string][]float32
	calls   int
	err     error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	vec, ok := s.vectors[text]
	if !ok {
		return nil, errors.New("unknown text")
	}
	return vec, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func records(texts ...string) []history.Record {
	now := time.Now()
	recs := make([]history.Record, len(texts))
	for i, t := range texts {
		recs[i] = history.Record{Text: t, Timestamp: now}
	}
	return recs
}

func TestIsDuplicateAboveThreshold(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"candidate": {1, 0},
		"same":      {1, 0}, // cosine 1.0
	}}
	d := NewDetector(emb, 0.60, time.Hour)

	dup, err := d.IsDuplicate(context.Background(), "candidate", records("same"))
	if err != nil {
		t.Fatal(err)
	}
	if !dup {
		t.Fatal("identical vectors must be a duplicate")
	}
}

func TestIsDuplicateBelowThreshold(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"candidate": {1, 0},
		"other":     {0, 1}, // cosine 0
	}}
	d := NewDetector(emb, 0.60, time.Hour)

	dup, err := d.IsDuplicate(context.Background(), "candidate", records("other"))
	if err != nil {
		t.Fatal(err)
	}
	if dup {
		t.Fatal("orthogonal vectors must not be a duplicate")
	}
}

func TestSimilarityEqualToThresholdIsNotDuplicate(t *testing.T) {
	// cosine((1,0),(0,1)) is exactly 0; with threshold 0 the comparison
	// must be strict, so this is not a duplicate.
	emb := &stubEmbedder{vectors: map[string][]float32{
		"candidate":  {1, 0},
		"orthogonal": {0, 1},
	}}
	d := NewDetector(emb, 0, time.Hour)

	dup, err := d.IsDuplicate(context.Background(), "candidate", records("orthogonal"))
	if err != nil {
		t.Fatal(err)
	}
	if dup {
		t.Fatal("similarity equal to the threshold must not count as duplicate")
	}
}

func TestEmptyHistoryNeverDuplicate(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{"candidate": {1, 0}}}
	d := NewDetector(emb, 0.60, time.Hour)

	dup, err := d.IsDuplicate(context.Background(), "candidate", nil)
	if err != nil {
		t.Fatal(err)
	}
	if dup {
		t.Fatal("empty history must never report a duplicate")
	}
	if emb.calls != 0 {
		t.Fatalf("no embedding should happen for empty history, got %d calls", emb.calls)
	}
}

func TestEmbeddingFailureWrapsErrEmbedding(t *testing.T) {
	emb := &stubEmbedder{err: errors.New("backend down")}
	d := NewDetector(emb, 0.60, time.Hour)

	_, err := d.IsDuplicate(context.Background(), "candidate", records("anything"))
	if !errors.Is(err, ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding, got %v", err)
	}
}

func TestShortCircuitsOnFirstMatch(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"candidate": {1, 0},
		"oldest":    {0, 1},
		"newest":    {1, 0},
	}}
	d := NewDetector(emb, 0.60, time.Hour)

	dup, err := d.IsDuplicate(context.Background(), "candidate", records("oldest", "newest"))
	if err != nil {
		t.Fatal(err)
	}
	if !dup {
		t.Fatal("expected duplicate")
	}
	// candidate + newest only: traversal is newest-first and stops on match.
	if emb.calls != 2 {
		t.Fatalf("expected 2 embed calls, got %d", emb.calls)
	}
}

func TestRecordVectorsAreCached(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"candidate": {1, 0},
		"record":    {0, 1},
	}}
	d := NewDetector(emb, 0.60, time.Hour)

	for i := 0; i < 3; i++ {
		if _, err := d.IsDuplicate(context.Background(), "candidate", records("record")); err != nil {
			t.Fatal(err)
		}
	}
	// 3 candidate embeds + 1 record embed (then cached).
	if emb.calls != 4 {
		t.Fatalf("expected 4 embed calls with caching, got %d", emb.calls)
	}
}
