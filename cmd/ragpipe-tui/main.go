package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"ragpipe/internal/chunker"
	"ragpipe/internal/config"
	"ragpipe/internal/domain"
	"ragpipe/internal/embedding"
	"ragpipe/internal/llm"
	"ragpipe/internal/pipeline"
	"ragpipe/internal/rerank"
	"ragpipe/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/ragpipe/config.yaml if not provided)")
	flag.Parse()
	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Println("Usage: ragpipe-tui [--config=config.yaml] file1.txt [file2.txt ...]")
		os.Exit(1)
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	p := buildPipeline(cfg)

	var documents []string
	for _, path := range inputs {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("read %s: %v", path, err)
		}
		documents = append(documents, string(data))
	}
	n, err := p.Index(context.Background(), documents)
	if err != nil {
		log.Fatalf("index failed: %v", err)
	}
	if n == 0 {
		log.Fatal("no chunks produced from the given files")
	}

	m := tui.New(p)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}

func buildPipeline(cfg *config.AppConfig) *pipeline.Pipeline {
	var ck domain.Chunker
	var err error
	switch cfg.Chunker.Type {
	case "fixed", "":
		ck, err = chunker.NewFixedChunker(cfg.Chunker.ChunkSize, cfg.Chunker.Overlap)
	case "sentence":
		ck, err = chunker.NewSentenceChunker(cfg.Chunker.MaxChunkSize, cfg.Chunker.MinChunkSize)
	default:
		log.Fatalf("unknown chunker: %s", cfg.Chunker.Type)
	}
	if err != nil {
		log.Fatalf("chunker init failed: %v", err)
	}

	var backend embedding.Backend
	switch cfg.Embedder.Type {
	case "local", "":
		backend = embedding.NewLocalBackend(cfg.Embedder.Dimension)
	case "openai":
		backend, err = embedding.NewOpenAIBackend(embedding.OpenAIConfig{
			Model:     cfg.Embedder.Model,
			BaseURL:   cfg.Embedder.BaseURL,
			APIKeyEnv: cfg.Embedder.APIKeyEnv,
			Timeout:   time.Duration(cfg.Embedder.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatalf("openai embedder init failed: %v", err)
		}
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
	}

	var gen llm.Generator
	switch cfg.Generator.Type {
	case "ollama", "":
		gen = llm.NewOllamaGenerator(llm.OllamaConfig{
			Model:   cfg.Generator.Model,
			BaseURL: cfg.Generator.BaseURL,
			Timeout: time.Duration(cfg.Generator.TimeoutSecs) * time.Second,
		})
	case "openai":
		gen, err = llm.NewOpenAIGenerator(llm.OpenAIConfig{
			Model:     cfg.Generator.Model,
			BaseURL:   cfg.Generator.BaseURL,
			APIKeyEnv: cfg.Generator.APIKeyEnv,
			Timeout:   time.Duration(cfg.Generator.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatalf("openai generator init failed: %v", err)
		}
	default:
		log.Fatalf("unknown generator: %s", cfg.Generator.Type)
	}

	var rr *rerank.Reranker
	if cfg.Reranker.Enabled {
		switch cfg.Reranker.Type {
		case "lexical", "":
			rr = rerank.New(rerank.NewLexicalScorer())
		case "crossencoder":
			rr = rerank.New(rerank.NewCrossEncoderScorer(rerank.CrossEncoderConfig{
				URL:     cfg.Reranker.URL,
				Timeout: time.Duration(cfg.Reranker.TimeoutSecs) * time.Second,
			}))
		default:
			log.Fatalf("unknown reranker: %s", cfg.Reranker.Type)
		}
	}

	p, err := pipeline.New(pipeline.Config{
		ChunkSize:    cfg.Chunker.ChunkSize,
		ChunkOverlap: cfg.Chunker.Overlap,
		RetrievalK:   cfg.Retrieval.K,
		Rerank:       cfg.Reranker.Enabled,
	}, ck, embedding.NewGenerator(backend), gen, rr)
	if err != nil {
		log.Fatalf("pipeline init failed: %v", err)
	}
	return p
}
