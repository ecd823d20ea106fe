package embedding

import (
	"errors"
	"fmt"
	"math"
)

// ErrZeroVector reports a similarity computation over an all-zero vector,
// for which cosine similarity is undefined.
var ErrZeroVector = errors.New("cosine similarity undefined for zero vector")

// Cosine computes the cosine similarity between two vectors.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine similarity dimension mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("cosine similarity on empty vectors")
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, ErrZeroVector
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

// BatchSimilarity computes the cosine similarity between a query vector
// and every row of a vector matrix, returning one score per row.
func BatchSimilarity(vectors [][]float64, query []float64) ([]float64, error) {
	var qn float64
	for _, x := range query {
		qn += x * x
	}
	if qn == 0 {
		return nil, ErrZeroVector
	}
	qn = math.Sqrt(qn)

	scores := make([]float64, len(vectors))
	for i, v := range vectors {
		if len(v) != len(query) {
			return nil, fmt.Errorf("batch similarity dimension mismatch at row %d: %d vs %d", i, len(v), len(query))
		}
		var dot, vn float64
		for j := range v {
			dot += v[j] * query[j]
			vn += v[j] * v[j]
		}
		if vn == 0 {
			return nil, fmt.Errorf("batch similarity row %d: %w", i, ErrZeroVector)
		}
		scores[i] = dot / (math.Sqrt(vn) * qn)
	}
	return scores, nil
}

// l2normalize scales a vector to unit length in place. Zero vectors are
// left untouched.
func l2normalize(v []float64) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] *= inv
	}
}
