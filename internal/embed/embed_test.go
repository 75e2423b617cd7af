package embed

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestEmbedBatchAgainstMockServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			http.Error(w, "not found", 404)
			return
		}

		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		if req.Model != "test-model" {
			t.Errorf("unexpected model: %s", req.Model)
		}

		data := make([]struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}, len(req.Input))
		for i := range data {
			data[i].Embedding = []float32{float32(i + 1), 0, 0}
			data[i].Index = i
		}
		json.NewEncoder(w).Encode(map[string]any{"data": data, "model": req.Model})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-model", 5*time.Second)

	vecs, err := c.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vecs))
	}
	for i, v := range vecs {
		if v[0] != float32(i+1) {
			t.Errorf("vec[%d][0] = %f, want %f", i, v[0], float32(i+1))
		}
	}

	vec, err := c.Embed(context.Background(), "solo")
	if err != nil {
		t.Fatal(err)
	}
	if len(vec) != 3 {
		t.Fatalf("expected 3 dims, got %d", len(vec))
	}
}

func TestEmbedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-model", 5*time.Second)
	if _, err := c.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error from failing server")
	}
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	c := NewClient("http://unused", "m", time.Second)
	vecs, err := c.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if vecs != nil {
		t.Fatalf("expected nil for empty input, got %v", vecs)
	}
}

func TestCosine(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{1, 0, 0}
	c := []float32{0, 1, 0}

	if sim := Cosine(a, b); math.Abs(sim-1.0) > 1e-6 {
		t.Fatalf("identical vectors should have similarity ~1.0, got %f", sim)
	}
	if sim := Cosine(a, c); math.Abs(sim) > 1e-6 {
		t.Fatalf("orthogonal vectors should have similarity ~0, got %f", sim)
	}
	if sim := Cosine(a, []float32{-1, 0, 0}); math.Abs(sim+1.0) > 1e-6 {
		t.Fatalf("opposite vectors should have similarity ~-1.0, got %f", sim)
	}
	if sim := Cosine(a, []float32{1, 0}); sim != 0 {
		t.Fatalf("mismatched lengths should score 0, got %f", sim)
	}
	if sim := Cosine(a, []float32{0, 0, 0}); sim != 0 {
		t.Fatalf("zero vector should score 0, got %f", sim)
	}
}
