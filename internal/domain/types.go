package domain

// Document represents a single text source loaded into the system.
type Document struct {
	ID      string
	Path    string
	Content string
}

// Chunk is a contiguous span of a document used as one retrievable unit.
// Start/End are character offsets set by the fixed-window chunker;
// SentenceCount is set by the sentence-aware chunker instead.
type Chunk struct {
	Text          string
	Start         int
	End           int
	Index         int
	SentenceCount int
}

// Metadata is the free-form record stored alongside each indexed vector.
type Metadata map[string]any

// SearchResult is one nearest-neighbor match from the vector index.
// Distance is squared Euclidean; Score maps it into (0, 1] via 1/(1+d).
type SearchResult struct {
	ID       int
	Distance float64
	Document string
	Metadata Metadata
	Score    float64
}

// RerankResult is one rescored candidate. Index is the candidate's
// position in the input slice passed to the reranker.
type RerankResult struct {
	Index    int
	Score    float64
	Document string
}

// Chunker splits raw text into an ordered sequence of chunks.
type Chunker interface {
	Chunk(text string) ([]Chunk, error)
}
