package rerank

import (
	"context"
	"math"
	"regexp"
	"strings"
)

// LexicalScorer rates relevance by token overlap between query and
// document using the Ochiai coefficient |A∩B| / sqrt(|A||B|). It needs no
// model endpoint, which makes it the offline scorer variant.
type LexicalScorer struct{}

// NewLexicalScorer creates the token-overlap scorer.
func NewLexicalScorer() *LexicalScorer { return &LexicalScorer{} }

var wordRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// Score returns the Ochiai coefficient of the two token sets, in [0, 1].
func (s *LexicalScorer) Score(_ context.Context, query, document string) (float64, error) {
	qset := tokenSet(query)
	dset := tokenSet(document)
	if len(qset) == 0 || len(dset) == 0 {
		return 0, nil
	}
	inter := 0
	for t := range dset {
		if _, ok := qset[t]; ok {
			inter++
		}
	}
	return float64(inter) / (math.Sqrt(float64(len(qset))) * math.Sqrt(float64(len(dset)))), nil
}

func tokenSet(s string) map[string]struct{} {
	tokens := wordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}
