// Package rerank rescores a short candidate list against a query with a
// pairwise relevance model.
package rerank

import (
	"context"
	"fmt"
	"sort"

	"ragpipe/internal/domain"
)

// Scorer rates the relevance of a single (query, document) pair. Higher
// is more relevant.
type Scorer interface {
	Score(ctx context.Context, query, document string) (float64, error)
}

// Reranker sorts candidates by pairwise relevance score.
type Reranker struct {
	scorer Scorer
}

// New creates a reranker over the given scorer.
func New(scorer Scorer) *Reranker {
	return &Reranker{scorer: scorer}
}

// Rerank scores every document against the query independently and
// returns the topK highest-scoring candidates, descending by score. Equal
// scores keep input order, so the operation is deterministic. A topK of
// zero or less returns all candidates.
func (r *Reranker) Rerank(ctx context.Context, query string, documents []string, topK int) ([]domain.RerankResult, error) {
	results := make([]domain.RerankResult, len(documents))
	for i, doc := range documents {
		score, err := r.scorer.Score(ctx, query, doc)
		if err != nil {
			return nil, fmt.Errorf("score document %d: %w", i, err)
		}
		results[i] = domain.RerankResult{Index: i, Score: score, Document: doc}
	}
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})
	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}
