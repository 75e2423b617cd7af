package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New()
	c.Set("k", []float32{1, 2, 3}, time.Hour)

	vec, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if len(vec) != 3 || vec[0] != 1 {
		t.Fatalf("vec = %v", vec)
	}
}

func TestMiss(t *testing.T) {
	c := New()
	if _, ok := c.Get("absent"); ok {
		t.Fatal("expected miss")
	}
}

func TestExpiry(t *testing.T) {
	c := New()
	c.Set("k", []float32{1}, -time.Second) // already expired

	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry must be a miss")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry must be evicted, len = %d", c.Len())
	}
}

func TestKeyIsStable(t *testing.T) {
	if Key("text") != Key("text") {
		t.Fatal("same text must produce the same key")
	}
	if Key("a") == Key("b") {
		t.Fatal("different texts must produce different keys")
	}
}
