// Package pipeline wires chunking, embedding, vector search, optional
// reranking, and answer generation into index and query operations.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"ragpipe/internal/domain"
	"ragpipe/internal/embedding"
	"ragpipe/internal/llm"
	"ragpipe/internal/rerank"
	"ragpipe/internal/vectorstore"
)

// Config is the immutable pipeline configuration.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
	RetrievalK   int
	Rerank       bool
	// MaxChunks caps the number of chunks a single Index call will embed
	// and store. Zero means no cap.
	MaxChunks int
}

// Result is the structured outcome of a query.
type Result struct {
	Question string
	Answer   string
	Sources  []string
	Scores   []float64
	Metadata ResultMetadata
	// GenerationErr carries the generation backend's failure text when the
	// answer could not be generated. The Answer then describes the failure
	// instead of answering the question; callers that must distinguish
	// content from errors check this field.
	GenerationErr string
}

// ResultMetadata describes how a result was produced.
type ResultMetadata struct {
	ChunksUsed     int
	EmbeddingModel string
}

const noContextAnswer = "No indexed context is available to answer this question."

const promptTemplate = `Context information:
%s

Question: %s

Based on the context above, please provide a comprehensive answer to the question.`

// Pipeline owns one vector index for its lifetime. It starts empty and
// grows additively with each Index call until Reset or a snapshot load
// replaces its contents.
type Pipeline struct {
	cfg       Config
	chunker   domain.Chunker
	embedder  *embedding.Generator
	store     *vectorstore.Index
	reranker  *rerank.Reranker
	generator llm.Generator
}

// New assembles a pipeline from explicitly constructed collaborators. The
// reranker may be nil, which disables reranking regardless of Config.
func New(cfg Config, chunker domain.Chunker, embedder *embedding.Generator, generator llm.Generator, reranker *rerank.Reranker) (*Pipeline, error) {
	if chunker == nil {
		return nil, fmt.Errorf("pipeline requires a chunker")
	}
	if embedder == nil {
		return nil, fmt.Errorf("pipeline requires an embedding generator")
	}
	if generator == nil {
		return nil, fmt.Errorf("pipeline requires a generation client")
	}
	if cfg.RetrievalK <= 0 {
		cfg.RetrievalK = 5
	}
	store, err := vectorstore.New(embedder.Dimension())
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:       cfg,
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		reranker:  reranker,
		generator: generator,
	}, nil
}

// Index chunks each document, embeds all chunk texts in one ordered batch,
// and adds them to the vector index with the chunk offsets as metadata.
// It returns the number of chunks indexed by this call.
func (p *Pipeline) Index(ctx context.Context, documents []string) (int, error) {
	var chunks []domain.Chunk
	var texts []string
	for _, doc := range documents {
		cs, err := p.chunker.Chunk(doc)
		if err != nil {
			return 0, fmt.Errorf("chunk document: %w", err)
		}
		for _, ch := range cs {
			chunks = append(chunks, ch)
			texts = append(texts, ch.Text)
		}
	}
	if p.cfg.MaxChunks > 0 && len(chunks) > p.cfg.MaxChunks {
		chunks = chunks[:p.cfg.MaxChunks]
		texts = texts[:p.cfg.MaxChunks]
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	vectors, err := p.embedder.Generate(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}

	metadata := make([]domain.Metadata, len(chunks))
	for i, ch := range chunks {
		m := domain.Metadata{"index": ch.Index}
		if ch.SentenceCount > 0 {
			m["sentence_count"] = ch.SentenceCount
		} else {
			m["start"] = ch.Start
			m["end"] = ch.End
		}
		metadata[i] = m
	}
	if err := p.store.Add(vectors, texts, metadata); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// Query embeds the question, retrieves the nearest chunks, optionally
// reranks them, and asks the generation backend for a context-grounded
// answer. A query against an empty index returns a well-formed result
// with no sources rather than an error. A generation failure is reported
// inside the result (see Result.GenerationErr), not as an error return.
func (p *Pipeline) Query(ctx context.Context, question string) (*Result, error) {
	result := &Result{
		Question: question,
		Sources:  []string{},
		Scores:   []float64{},
		Metadata: ResultMetadata{EmbeddingModel: p.embedder.ModelID()},
	}

	vec, err := p.embedder.GenerateOne(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	matches, err := p.store.Search(vec, p.cfg.RetrievalK)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		result.Answer = noContextAnswer
		return result, nil
	}

	sources := make([]string, len(matches))
	scores := make([]float64, len(matches))
	for i, m := range matches {
		sources[i] = m.Document
		scores[i] = m.Score
	}

	if p.cfg.Rerank && p.reranker != nil {
		reranked, err := p.reranker.Rerank(ctx, question, sources, p.cfg.RetrievalK)
		if err != nil {
			return nil, fmt.Errorf("rerank: %w", err)
		}
		sources = make([]string, len(reranked))
		scores = make([]float64, len(reranked))
		for i, r := range reranked {
			sources[i] = r.Document
			scores[i] = r.Score
		}
	}

	result.Sources = sources
	result.Scores = scores
	result.Metadata.ChunksUsed = len(sources)

	contextText := strings.Join(sources, "\n\n")
	prompt := fmt.Sprintf(promptTemplate, contextText, question)
	answer, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		result.GenerationErr = err.Error()
		result.Answer = fmt.Sprintf("Error generating answer: %s", err)
		return result, nil
	}
	result.Answer = answer
	return result, nil
}

// Size returns the number of vectors currently indexed.
func (p *Pipeline) Size() int { return p.store.Size() }

// Reset empties the index, returning the pipeline to its initial state.
func (p *Pipeline) Reset() { p.store.Clear() }

// SaveSnapshot persists the index under dir.
func (p *Pipeline) SaveSnapshot(dir string) error { return p.store.Save(dir) }

// LoadSnapshot replaces the pipeline's index with one loaded from dir.
// The snapshot must have been written for the same embedding dimension.
func (p *Pipeline) LoadSnapshot(dir string) error {
	store, err := vectorstore.Load(dir)
	if err != nil {
		return err
	}
	if store.Dimension() != p.embedder.Dimension() {
		return fmt.Errorf("%w: snapshot dimension %d, embedding model %q produces %d",
			vectorstore.ErrDimensionMismatch, store.Dimension(), p.embedder.ModelID(), p.embedder.Dimension())
	}
	p.store = store
	return nil
}
