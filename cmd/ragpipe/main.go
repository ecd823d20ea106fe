package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"ragpipe/internal/chunker"
	"ragpipe/internal/config"
	"ragpipe/internal/domain"
	"ragpipe/internal/embedding"
	"ragpipe/internal/llm"
	"ragpipe/internal/pipeline"
	"ragpipe/internal/rerank"
	"ragpipe/internal/vectorstore"
)

const usage = `Usage:
  ragpipe process -source <file> [-chunks N] [-config path]
  ragpipe query -question "<question>" [-config path]`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "process":
		fs := flag.NewFlagSet("process", flag.ExitOnError)
		source := fs.String("source", "", "Source text file to index")
		chunks := fs.Int("chunks", 0, "Max chunks to process (0 = unlimited)")
		cfgPath := fs.String("config", "", "Path to YAML config file")
		fs.Parse(os.Args[2:])
		if *source == "" {
			log.Fatal("process requires -source")
		}
		runProcess(*source, *chunks, *cfgPath)
	case "query":
		fs := flag.NewFlagSet("query", flag.ExitOnError)
		question := fs.String("question", "", "Question to ask")
		cfgPath := fs.String("config", "", "Path to YAML config file")
		fs.Parse(os.Args[2:])
		if *question == "" {
			log.Fatal("query requires -question")
		}
		runQuery(*question, *cfgPath)
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

func runProcess(source string, chunkBudget int, cfgPath string) {
	cfg := loadConfig(cfgPath)
	p := buildPipeline(cfg, chunkBudget)

	// Additive: extend an existing snapshot when one is present.
	if vectorstore.SnapshotExists(cfg.Snapshot.Dir) {
		if err := p.LoadSnapshot(cfg.Snapshot.Dir); err != nil {
			log.Fatalf("load snapshot: %v", err)
		}
	}

	data, err := os.ReadFile(source)
	if err != nil {
		log.Fatalf("read source: %v", err)
	}
	n, err := p.Index(context.Background(), []string{string(data)})
	if err != nil {
		log.Fatalf("index failed: %v", err)
	}
	if err := p.SaveSnapshot(cfg.Snapshot.Dir); err != nil {
		log.Fatalf("save snapshot: %v", err)
	}
	fmt.Printf("Processed %s: %d new chunks, %d vectors total\n", source, n, p.Size())
}

func runQuery(question, cfgPath string) {
	cfg := loadConfig(cfgPath)
	p := buildPipeline(cfg, 0)

	if err := p.LoadSnapshot(cfg.Snapshot.Dir); err != nil {
		log.Fatalf("load snapshot: %v", err)
	}
	result, err := p.Query(context.Background(), question)
	if err != nil {
		log.Fatalf("query failed: %v", err)
	}
	fmt.Printf("\nQuestion: %s\n", result.Question)
	fmt.Printf("\nAnswer: %s\n", result.Answer)
	fmt.Printf("\nSources used: %d\n", len(result.Sources))
}

func loadConfig(path string) *config.AppConfig {
	if path == "" {
		cfg, _, err := config.LoadDefault()
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		return cfg
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func buildPipeline(cfg *config.AppConfig, chunkBudget int) *pipeline.Pipeline {
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
		MaxChunks:    chunkBudget,
	}, ck, embedding.NewGenerator(backend), gen, rr)
	if err != nil {
		log.Fatalf("pipeline init failed: %v", err)
	}
	return p
}
