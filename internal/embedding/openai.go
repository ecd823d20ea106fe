package embedding

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// openaiDimensions maps supported remote models to their fixed dimensions.
var openaiDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// OpenAIConfig configures the remote embedding backend. The API key is
// read from the environment variable named by APIKeyEnv so secrets never
// live in config files.
type OpenAIConfig struct {
	Model     string
	BaseURL   string
	APIKeyEnv string
	Timeout   time.Duration
}

// OpenAIBackend embeds text through an OpenAI-compatible endpoint. The
// endpoint is invoked once per text; there is no request batching.
type OpenAIBackend struct {
	client *openai.Client
	model  string
	dim    int
}

// NewOpenAIBackend creates the remote backend. Unknown models fail with
// ErrUnknownModel before any request is made.
func NewOpenAIBackend(cfg OpenAIConfig) (*OpenAIBackend, error) {
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	dim, ok := openaiDimensions[cfg.Model]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, cfg.Model)
	}
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	cc := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		cc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &OpenAIBackend{
		client: openai.NewClientWithConfig(cc),
		model:  cfg.Model,
		dim:    dim,
	}, nil
}

// Embed requests one embedding per text, preserving input order.
func (b *OpenAIBackend) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		resp, err := b.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: openai.EmbeddingModel(b.model),
			Input: []string{text},
		})
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		if len(resp.Data) == 0 {
			return nil, fmt.Errorf("embed text %d: no embedding returned", i)
		}
		src := resp.Data[0].Embedding
		v := make([]float64, len(src))
		for j := range src {
			v[j] = float64(src[j])
		}
		vectors[i] = v
	}
	return vectors, nil
}

// Dimension returns the model's fixed vector size.
func (b *OpenAIBackend) Dimension() int { return b.dim }

// ModelID identifies the remote model.
func (b *OpenAIBackend) ModelID() string { return b.model }
