// Package vectorstore implements an exact nearest-neighbor index over
// fixed-dimension vectors with parallel document and metadata storage.
package vectorstore

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"ragpipe/internal/domain"
)

var (
	// ErrDimensionMismatch reports vectors whose width differs from the
	// index dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrCorruptSnapshot reports snapshot artifacts that disagree with
	// each other or are malformed.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// Index stores vectors together with their source documents and metadata,
// keyed by insertion order. documents[i] and metadata[i] always describe
// the vector at position i.
//
// One RWMutex guards all mutation and snapshotting; concurrent use from
// multiple goroutines is safe, but the index itself is single-writer.
type Index struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	documents []string
	metadata  []domain.Metadata
}

// New creates an empty index for vectors of the given dimension.
func New(dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("invalid dimension %d", dimension)
	}
	return &Index{dimension: dimension}, nil
}

// Dimension returns the fixed vector width of this index.
func (x *Index) Dimension() int { return x.dimension }

// Add appends vectors and their documents to the index. Metadata may be
// nil or shorter than documents; missing entries default to an empty
// record. The index is left unchanged if validation fails.
func (x *Index) Add(embeddings [][]float64, documents []string, metadata []domain.Metadata) error {
	if len(embeddings) != len(documents) {
		return fmt.Errorf("got %d embeddings for %d documents", len(embeddings), len(documents))
	}
	for i, v := range embeddings {
		if len(v) != x.dimension {
			return fmt.Errorf("%w: vector %d has dimension %d, index has %d",
				ErrDimensionMismatch, i, len(v), x.dimension)
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.vectors = append(x.vectors, embeddings...)
	x.documents = append(x.documents, documents...)
	for i := range documents {
		if i < len(metadata) && metadata[i] != nil {
			x.metadata = append(x.metadata, metadata[i])
		} else {
			x.metadata = append(x.metadata, domain.Metadata{})
		}
	}
	return nil
}

// Search returns the k stored entries nearest to the query by squared
// Euclidean distance, ascending. Ties are broken by insertion id. If k
// exceeds the stored count all entries are returned; an empty index
// yields an empty result.
func (x *Index) Search(query []float64, k int) ([]domain.SearchResult, error) {
	if len(query) != x.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d",
			ErrDimensionMismatch, len(query), x.dimension)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()
	if k <= 0 || len(x.vectors) == 0 {
		return []domain.SearchResult{}, nil
	}

	ids := make([]int, len(x.vectors))
	dists := make([]float64, len(x.vectors))
	for i, v := range x.vectors {
		ids[i] = i
		dists[i] = squaredL2(query, v)
	}
	sort.SliceStable(ids, func(a, b int) bool {
		return dists[ids[a]] < dists[ids[b]]
	})

	if k > len(ids) {
		k = len(ids)
	}
	results := make([]domain.SearchResult, k)
	for n := 0; n < k; n++ {
		id := ids[n]
		results[n] = domain.SearchResult{
			ID:       id,
			Distance: dists[id],
			Document: x.documents[id],
			Metadata: x.metadata[id],
			Score:    1 / (1 + dists[id]),
		}
	}
	return results, nil
}

// Clear resets vectors, documents, and metadata together. Id assignment
// restarts at zero.
func (x *Index) Clear() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.vectors = nil
	x.documents = nil
	x.metadata = nil
}

// Size returns the current vector count.
func (x *Index) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.vectors)
}

func squaredL2(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
