package service

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestEmbedTextsNormalizes(t *testing.T) {
	client := &stubAI{
		enabled: true,
		embedFn: func(texts []string) ([][]float32, error) {
			vecs := make([][]float32, len(texts))
			for i := range texts {
				vecs[i] = []float32{3, 4} // norm 5
			}
			return vecs, nil
		},
	}
	e := NewEmbedder(client, 2)

	vecs, err := e.EmbedTexts(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}
	for i, v := range vecs {
		var sum float64
		for _, x := range v {
			sum += float64(x) * float64(x)
		}
		if math.Abs(math.Sqrt(sum)-1) > 1e-5 {
			t.Errorf("vector %d norm = %v, want 1", i, math.Sqrt(sum))
		}
	}
	if math.Abs(float64(vecs[0][0])-0.6) > 1e-5 || math.Abs(float64(vecs[0][1])-0.8) > 1e-5 {
		t.Errorf("normalized vector = %v, want [0.6 0.8]", vecs[0])
	}
}

func TestEmbedTextsDeterministic(t *testing.T) {
	client := &stubAI{
		enabled: true,
		embedFn: func(texts []string) ([][]float32, error) {
			// Deterministic per-text vector derived from length
			vecs := make([][]float32, len(texts))
			for i, txt := range texts {
				vecs[i] = []float32{float32(len(txt)), 1}
			}
			return vecs, nil
		},
	}
	e := NewEmbedder(client, 2)

	first, err := e.EmbedQuery(context.Background(), "same text")
	if err != nil {
		t.Fatalf("EmbedQuery() error = %v", err)
	}
	second, err := e.EmbedQuery(context.Background(), "same text")
	if err != nil {
		t.Fatalf("EmbedQuery() error = %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("component %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestEmbedTextsRejectsBlank(t *testing.T) {
	called := false
	client := &stubAI{
		enabled: true,
		embedFn: func(texts []string) ([][]float32, error) {
			called = true
			return nil, nil
		},
	}
	e := NewEmbedder(client, 2)

	if _, err := e.EmbedTexts(context.Background(), []string{"ok", "   "}); !errors.Is(err, ErrEmptyText) {
		t.Errorf("EmbedTexts() error = %v, want ErrEmptyText", err)
	}
	if called {
		t.Error("embedding request was sent despite blank input")
	}
}

func TestEmbedTextsDimensionMismatch(t *testing.T) {
	client := &stubAI{
		enabled: true,
		embedFn: func(texts []string) ([][]float32, error) {
			return [][]float32{{1, 2, 3}}, nil
		},
	}
	e := NewEmbedder(client, 2)

	if _, err := e.EmbedQuery(context.Background(), "text"); err == nil {
		t.Error("EmbedQuery() accepted a vector of the wrong dimension")
	}
}

func TestEmbedTextsCountMismatch(t *testing.T) {
	client := &stubAI{
		enabled: true,
		embedFn: func(texts []string) ([][]float32, error) {
			return [][]float32{{1, 0}}, nil
		},
	}
	e := NewEmbedder(client, 2)

	if _, err := e.EmbedTexts(context.Background(), []string{"a", "b"}); err == nil {
		t.Error("EmbedTexts() accepted fewer vectors than inputs")
	}
}
