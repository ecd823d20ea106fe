package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"ragpipe/internal/domain"
)

// SentenceChunker groups whole sentences into chunks bounded by a maximum
// character size. Sentences are split at terminal punctuation (., !, ?)
// followed by whitespace.
//
// minChunkSize is accepted for configuration compatibility but is not
// enforced: a flushed chunk may be smaller than the minimum. Callers that
// need a hard lower bound must filter the output themselves.
type SentenceChunker struct {
	maxChunkSize int
	minChunkSize int
}

var sentenceBoundary = regexp.MustCompile(`(?s)(.*?[.!?])(?:\s+|$)`)

// NewSentenceChunker creates a sentence-aware chunker.
func NewSentenceChunker(maxChunkSize, minChunkSize int) (*SentenceChunker, error) {
	if maxChunkSize <= 0 {
		return nil, fmt.Errorf("%w: max chunk size %d must be positive", ErrChunkConfig, maxChunkSize)
	}
	if minChunkSize < 0 {
		return nil, fmt.Errorf("%w: min chunk size %d must be non-negative", ErrChunkConfig, minChunkSize)
	}
	return &SentenceChunker{maxChunkSize: maxChunkSize, minChunkSize: minChunkSize}, nil
}

// Chunk accumulates sentences until adding the next one would exceed the
// maximum chunk size, then flushes the buffer. The trailing buffer is
// always flushed regardless of its size.
func (c *SentenceChunker) Chunk(text string) ([]domain.Chunk, error) {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil, nil
	}

	var chunks []domain.Chunk
	var current []string
	currentSize := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, domain.Chunk{
			Text:          strings.Join(current, " "),
			Index:         len(chunks),
			SentenceCount: len(current),
		})
		current = nil
		currentSize = 0
	}

	for _, sentence := range sentences {
		size := len(sentence)
		if currentSize+size > c.maxChunkSize && len(current) > 0 {
			flush()
		}
		current = append(current, sentence)
		currentSize += size
	}
	flush()
	return chunks, nil
}

func splitSentences(text string) []string {
	matches := sentenceBoundary.FindAllStringSubmatch(text, -1)
	var sentences []string
	consumed := 0
	for _, m := range matches {
		s := strings.TrimSpace(m[1])
		if s != "" {
			sentences = append(sentences, s)
		}
		consumed += len(m[0])
	}
	// Trailing text without terminal punctuation counts as one sentence.
	if rest := strings.TrimSpace(text[consumed:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}
