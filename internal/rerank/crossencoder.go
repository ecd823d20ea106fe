package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// CrossEncoderScorer rates relevance through a hosted cross-encoder
// inference endpoint speaking the text-embeddings-inference rerank API
// (POST /rerank with a query and candidate texts).
type CrossEncoderScorer struct {
	url    string
	client *http.Client
}

// CrossEncoderConfig configures the remote scorer.
type CrossEncoderConfig struct {
	URL     string
	Timeout time.Duration
}

// NewCrossEncoderScorer creates a client for the rerank endpoint.
func NewCrossEncoderScorer(cfg CrossEncoderConfig) *CrossEncoderScorer {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &CrossEncoderScorer{
		url:    cfg.URL,
		client: &http.Client{Timeout: timeout},
	}
}

// Score submits one (query, document) pair and returns its relevance.
func (s *CrossEncoderScorer) Score(ctx context.Context, query, document string) (float64, error) {
	body, err := json.Marshal(map[string]any{
		"query": query,
		"texts": []string{document},
	})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url+"/rerank", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("rerank endpoint returned %s", resp.Status)
	}

	var out []struct {
		Index int     `json:"index"`
		Score float64 `json:"score"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode rerank response: %w", err)
	}
	if len(out) == 0 {
		return 0, fmt.Errorf("rerank endpoint returned no scores")
	}
	return out[0].Score, nil
}
