// Package config loads the application configuration from YAML, following
// the usual lookup order of a config.yaml in the working directory, then
// ~/.config/ragpipe/config.yaml, writing defaults on first run.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	Type      string `yaml:"type"` // "fixed" or "sentence"
	ChunkSize int    `yaml:"chunk_size"`
	Overlap   int    `yaml:"overlap"`
	// Sentence strategy bounds. MinChunkSize is accepted but currently has
	// no effect; see the sentence chunker.
	MaxChunkSize int `yaml:"max_chunk_size"`
	MinChunkSize int `yaml:"min_chunk_size"`
}

// EmbedderConfig selects and configures the embedding backend.
type EmbedderConfig struct {
	Type        string `yaml:"type"` // "local" or "openai"
	Model       string `yaml:"model,omitempty"`
	Dimension   int    `yaml:"dimension,omitempty"` // local backend only
	BaseURL     string `yaml:"base_url,omitempty"`
	APIKeyEnv   string `yaml:"api_key_env,omitempty"`
	TimeoutSecs int    `yaml:"timeout_secs,omitempty"`
}

// GeneratorConfig selects and configures the answer generation backend.
type GeneratorConfig struct {
	Type        string `yaml:"type"` // "ollama" or "openai"
	Model       string `yaml:"model,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
	APIKeyEnv   string `yaml:"api_key_env,omitempty"`
	TimeoutSecs int    `yaml:"timeout_secs,omitempty"`
}

// RerankerConfig configures the optional rerank stage.
type RerankerConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Type        string `yaml:"type,omitempty"` // "lexical" or "crossencoder"
	URL         string `yaml:"url,omitempty"`  // crossencoder endpoint
	TimeoutSecs int    `yaml:"timeout_secs,omitempty"`
}

// RetrievalConfig bounds the search stage.
type RetrievalConfig struct {
	K int `yaml:"k"`
}

// SnapshotConfig locates the on-disk index snapshot.
type SnapshotConfig struct {
	Dir string `yaml:"dir"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Generator GeneratorConfig `yaml:"generator"`
	Reranker  RerankerConfig  `yaml:"reranker"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Snapshot  SnapshotConfig  `yaml:"snapshot"`
}

// Load reads a config from path. A missing file yields the defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/ragpipe/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ragpipe", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Chunker:   ChunkerConfig{Type: "fixed", ChunkSize: 512, Overlap: 50, MaxChunkSize: 512, MinChunkSize: 100},
		Embedder:  EmbedderConfig{Type: "local"},
		Generator: GeneratorConfig{Type: "ollama"},
		Reranker:  RerankerConfig{Enabled: true, Type: "lexical"},
		Retrieval: RetrievalConfig{K: 5},
		Snapshot:  SnapshotConfig{Dir: "data/vector_store"},
	}
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Chunker.Type == "" {
		cfg.Chunker.Type = "fixed"
	}
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = 512
	}
	if cfg.Chunker.MaxChunkSize == 0 {
		cfg.Chunker.MaxChunkSize = 512
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "local"
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.Model == "" {
			cfg.Embedder.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.APIKeyEnv == "" {
			cfg.Embedder.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.TimeoutSecs == 0 {
			cfg.Embedder.TimeoutSecs = 30
		}
	}
	if cfg.Generator.Type == "" {
		cfg.Generator.Type = "ollama"
	}
	if cfg.Generator.Type == "openai" && cfg.Generator.APIKeyEnv == "" {
		cfg.Generator.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Reranker.Enabled && cfg.Reranker.Type == "" {
		cfg.Reranker.Type = "lexical"
	}
	if cfg.Retrieval.K == 0 {
		cfg.Retrieval.K = 5
	}
	if cfg.Snapshot.Dir == "" {
		cfg.Snapshot.Dir = "data/vector_store"
	}
}
