package chunker

import (
	"errors"
	"fmt"

	"ragpipe/internal/domain"
)

// ErrChunkConfig reports an invalid chunker configuration.
var ErrChunkConfig = errors.New("invalid chunker configuration")

// FixedChunker splits text into fixed-size windows with character overlap.
type FixedChunker struct {
	chunkSize int
	overlap   int
}

// NewFixedChunker creates a fixed-window chunker. The overlap must be
// strictly smaller than the chunk size, otherwise the cursor would never
// advance.
func NewFixedChunker(chunkSize, overlap int) (*FixedChunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", ErrChunkConfig, chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap %d must be non-negative", ErrChunkConfig, overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", ErrChunkConfig, overlap, chunkSize)
	}
	return &FixedChunker{chunkSize: chunkSize, overlap: overlap}, nil
}

// Chunk splits text into overlapping windows. Sizes and offsets count
// characters, not bytes, so multibyte input never splits mid-rune.
// Consecutive chunks overlap by exactly the configured amount except
// possibly the final chunk, which may be shorter than the window.
func (c *FixedChunker) Chunk(text string) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	runes := []rune(text)
	length := len(runes)
	stride := c.chunkSize - c.overlap
	for start := 0; start < length; start += stride {
		end := start + c.chunkSize
		if end > length {
			end = length
		}
		chunks = append(chunks, domain.Chunk{
			Text:  string(runes[start:end]),
			Start: start,
			End:   end,
			Index: len(chunks),
		})
	}
	return chunks, nil
}
