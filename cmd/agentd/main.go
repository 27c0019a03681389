// Command agentd serves the agent over HTTP: chat with tool use, document
// ingestion, and a health probe.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/promptlane/agentd/config"
	"github.com/promptlane/agentd/docstore"
	"github.com/promptlane/agentd/httpapi"
	"github.com/promptlane/agentd/llm"
	"github.com/promptlane/agentd/llm/openai"
	"github.com/promptlane/agentd/logging"
	"github.com/promptlane/agentd/rag"
	"github.com/promptlane/agentd/tools"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "agentd:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := buildStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	embedder := rag.NewHashEmbedder(cfg.Retrieval.EmbeddingDim)
	retriever := &rag.Retriever{
		Store:    store,
		Embedder: embedder,
		Chunker: rag.Chunker{
			Size:    cfg.Retrieval.ChunkSize,
			Overlap: cfg.Retrieval.ChunkOverlap,
		},
		DefaultTopK:  cfg.Retrieval.TopK,
		MaxTopK:      cfg.Retrieval.MaxTopK,
		SnippetChars: cfg.Retrieval.SnippetChars,
	}

	chatter, err := buildLLM(cfg.LLM)
	if err != nil {
		return err
	}

	registry := tools.NewRegistry(tools.WithAllowlist(cfg.Agent.AllowlistList()))
	if err := tools.RegisterRetrieval(registry); err != nil {
		return err
	}
	if err := tools.RegisterSystem(registry); err != nil {
		return err
	}

	server := httpapi.New(httpapi.Deps{
		Logger:     logger,
		LLM:        chatter,
		Registry:   registry,
		Policies:   cfg.Agent.Policies(),
		Retriever:  retriever,
		Classifier: &rag.Classifier{LLM: chatter},
		Suggester:  &rag.Suggester{LLM: chatter},
		Namespace:  cfg.Retrieval.Namespace,
	})

	logger.Info("agentd_starting",
		"addr", cfg.Server.Addr,
		"llm_backend", cfg.LLM.Backend,
		"store_backend", cfg.Store.Backend,
		"tools", registry.Names(),
	)
	return server.ListenAndServe(ctx, cfg.Server.Addr,
		cfg.Server.ReadTimeout.Std(), cfg.Server.WriteTimeout.Std(), cfg.Server.ShutdownTimeout.Std())
}

func buildStore(ctx context.Context, cfg config.Store) (docstore.Store, func(), error) {
	switch cfg.Backend {
	case "", "memory":
		return docstore.NewMemoryStore(), func() {}, nil
	case "redis":
		store, err := docstore.NewRedisStore(ctx, docstore.RedisConfig{
			Addr:     cfg.RedisAddr,
			DB:       cfg.RedisDB,
			Password: cfg.RedisPass,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis store: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func buildLLM(cfg config.LLM) (llm.Chatter, error) {
	switch cfg.Backend {
	case "", "openai":
		return openai.NewClient(openai.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
		})
	case "gollm":
		return llm.NewGollmAdapter(llm.GollmConfig{
			Provider:    cfg.Provider,
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		})
	default:
		return nil, fmt.Errorf("unknown llm backend %q", cfg.Backend)
	}
}
