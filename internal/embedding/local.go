package embedding

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"
)

// LocalDimension is the vector size of the in-process encoder.
const LocalDimension = 384

// LocalBackend is an in-process feature-hashing encoder. Each token and
// each adjacent token bigram is hashed into a fixed number of buckets and
// the resulting vector is L2-normalized. It needs no network access and is
// fully deterministic, which makes it the default for offline use and
// tests. The dimension is fixed at construction, like any resident model.
type LocalBackend struct {
	dim int
}

var tokenRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

// NewLocalBackend creates the in-process encoder. A non-positive dimension
// selects the default.
func NewLocalBackend(dimension int) *LocalBackend {
	if dimension <= 0 {
		dimension = LocalDimension
	}
	return &LocalBackend{dim: dimension}
}

// Embed encodes each text independently.
func (b *LocalBackend) Embed(_ context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vectors[i] = b.encode(text)
	}
	return vectors, nil
}

func (b *LocalBackend) encode(text string) []float64 {
	vec := make([]float64, b.dim)
	tokens := tokenRe.FindAllString(strings.ToLower(text), -1)
	for i, tok := range tokens {
		vec[b.bucket(tok)]++
		if i > 0 {
			vec[b.bucket(tokens[i-1]+" "+tok)]++
		}
	}
	l2normalize(vec)
	return vec
}

func (b *LocalBackend) bucket(token string) int {
	h := fnv.New32a()
	h.Write([]byte(token))
	return int(h.Sum32() % uint32(b.dim))
}

// Dimension returns the fixed vector size.
func (b *LocalBackend) Dimension() int { return b.dim }

// ModelID identifies the encoder.
func (b *LocalBackend) ModelID() string { return "local-hash-v1" }
