// Package embedding turns text into fixed-dimension vectors through a
// pluggable backend and provides similarity helpers over those vectors.
package embedding

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownModel reports an embedding model identifier with no known
// backend or dimension.
var ErrUnknownModel = errors.New("unknown embedding model")

// Backend produces embeddings for a batch of texts. Every vector a backend
// returns has the same, model-specific dimension, known at construction.
type Backend interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	Dimension() int
	ModelID() string
}

// Generator normalizes input handling and shape checking around a Backend.
type Generator struct {
	backend Backend
}

// NewGenerator wraps a backend.
func NewGenerator(backend Backend) *Generator {
	return &Generator{backend: backend}
}

// Generate embeds a batch of texts into an [len(texts)][dimension] matrix.
func (g *Generator) Generate(ctx context.Context, texts []string) ([][]float64, error) {
	vectors, err := g.backend.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("backend %s returned %d vectors for %d texts",
			g.backend.ModelID(), len(vectors), len(texts))
	}
	dim := g.backend.Dimension()
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("backend %s returned vector %d with dimension %d, want %d",
				g.backend.ModelID(), i, len(v), dim)
		}
	}
	return vectors, nil
}

// GenerateOne embeds a single text.
func (g *Generator) GenerateOne(ctx context.Context, text string) ([]float64, error) {
	vectors, err := g.Generate(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Dimension returns the backend's vector dimension.
func (g *Generator) Dimension() int { return g.backend.Dimension() }

// ModelID returns the backend's model identifier.
func (g *Generator) ModelID() string { return g.backend.ModelID() }
