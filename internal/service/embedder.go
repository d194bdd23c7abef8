package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrEmptyText is returned when an embedding is requested for blank input.
// Rejected locally, before any network call.
var ErrEmptyText = errors.New("cannot embed empty text")

// Embedder turns text into fixed-length, L2-normalized vectors. Every
// embedding stored in or queried against a collection must come from the same
// model: mixing models corrupts all distances silently, so the dimension is
// pinned here and checked on every response.
type Embedder struct {
	client    AIClient
	dimension int
}

// NewEmbedder creates an embedder on the given client
func NewEmbedder(client AIClient, dimension int) *Embedder {
	return &Embedder{client: client, dimension: dimension}
}

// Dimension returns the pinned embedding dimension
func (e *Embedder) Dimension() int {
	return e.dimension
}

// EmbedQuery embeds a single text
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedTexts embeds a batch of texts, order-preserving. Blank inputs are
// rejected before the request is sent.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, fmt.Errorf("%w (input %d)", ErrEmptyText, i)
		}
	}

	vecs, err := e.client.CreateEmbeddings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(vecs))
	}

	for i, v := range vecs {
		if len(v) != e.dimension {
			return nil, fmt.Errorf("embedding %d has dimension %d, expected %d", i, len(v), e.dimension)
		}
		normalize(v)
	}
	return vecs, nil
}

// normalize scales v to unit L2 norm in place. Providers that already return
// normalized vectors are unaffected within floating tolerance.
func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}
