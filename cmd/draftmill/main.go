package main

import (
	"context"
	"fmt"
	"os"

	configfile "github.com/draftmill/draftmill-cli/internal/adapters/driven/config/file"
	embeddinggemini "github.com/draftmill/draftmill-cli/internal/adapters/driven/embedding/gemini"
	embeddingollama "github.com/draftmill/draftmill-cli/internal/adapters/driven/embedding/ollama"
	llmgemini "github.com/draftmill/draftmill-cli/internal/adapters/driven/llm/gemini"
	llmollama "github.com/draftmill/draftmill-cli/internal/adapters/driven/llm/ollama"
	"github.com/draftmill/draftmill-cli/internal/adapters/driven/render/chartpng"
	"github.com/draftmill/draftmill-cli/internal/adapters/driven/render/echarts"
	"github.com/draftmill/draftmill-cli/internal/adapters/driven/render/table"
	storagefile "github.com/draftmill/draftmill-cli/internal/adapters/driven/storage/file"
	"github.com/draftmill/draftmill-cli/internal/adapters/driven/storage/sqlite"
	"github.com/draftmill/draftmill-cli/internal/adapters/driven/websearch/tavily"
	"github.com/draftmill/draftmill-cli/internal/adapters/driving/cli"
	"github.com/draftmill/draftmill-cli/internal/core/domain"
	"github.com/draftmill/draftmill-cli/internal/core/ports/driven"
	"github.com/draftmill/draftmill-cli/internal/normalisers"
	"github.com/draftmill/draftmill-cli/internal/postprocessors/chunker"
)

func main() {
	cfg, err := buildConfig(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cli.SetConfig(cfg)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildConfig wires the adapters behind the CLI. Backends that are not
// configured stay nil; commands that need them report their own errors.
func buildConfig(ctx context.Context) (*cli.Config, error) {
	store, err := configfile.NewConfigStore("")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settings := configfile.LoadSettings(store)

	cfg := &cli.Config{
		Settings:    settings,
		ConfigStore: store,
		Registry:    normalisers.DefaultRegistry(),
		Chunker: chunker.New(
			chunker.WithChunkSize(settings.Chunking.Size),
			chunker.WithOverlap(settings.Chunking.Overlap),
		),
		Renderers: []driven.Renderer{
			echarts.NewRenderer(),
			chartpng.NewRenderer(),
			table.NewRenderer(),
		},
	}

	if settings.Generator.IsConfigured() {
		gen, err := buildGenerator(ctx, settings.Generator)
		if err != nil {
			return nil, err
		}
		cfg.Generator = gen
	}

	if settings.Embedding.IsConfigured() {
		emb, err := buildEmbedder(ctx, settings.Embedding)
		if err != nil {
			return nil, err
		}
		cfg.Embedder = emb
	}

	if settings.WebSearch.IsConfigured() {
		backend, err := tavily.NewBackend(tavily.Config{
			APIKey:            settings.WebSearch.APIKey,
			BaseURL:           settings.WebSearch.BaseURL,
			MaxResults:        settings.WebSearch.MaxResults,
			RequestsPerMinute: settings.WebSearch.RequestsPerMinute,
		})
		if err != nil {
			return nil, fmt.Errorf("configuring lookup backend: %w", err)
		}
		cfg.SearchBackend = backend
	}

	evidenceStore, err := storagefile.NewEvidenceStore(settings.Evidence.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("opening evidence cache: %w", err)
	}
	cfg.EvidenceStore = evidenceStore

	runStore, err := sqlite.NewStore(settings.Workspace.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening run database: %w", err)
	}
	cfg.UnitStore = runStore
	cfg.CheckpointStore = runStore

	return cfg, nil
}

func buildGenerator(ctx context.Context, s domain.GeneratorSettings) (driven.Generator, error) {
	switch s.Provider {
	case domain.ProviderGemini:
		gen, err := llmgemini.NewGenerator(ctx, llmgemini.Config{
			APIKey:            s.APIKey,
			Model:             s.Model,
			RequestsPerMinute: s.RequestsPerMinute,
		})
		if err != nil {
			return nil, fmt.Errorf("configuring gemini generator: %w", err)
		}
		return gen, nil
	case domain.ProviderOllama:
		return llmollama.NewGenerator(llmollama.Config{
			BaseURL: s.BaseURL,
			Model:   s.Model,
		}), nil
	default:
		return nil, fmt.Errorf("unknown generator provider %q", s.Provider)
	}
}

func buildEmbedder(ctx context.Context, s domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	switch s.Provider {
	case domain.ProviderGemini:
		emb, err := embeddinggemini.NewEmbeddingService(ctx, embeddinggemini.Config{
			APIKey: s.APIKey,
			Model:  s.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("configuring gemini embeddings: %w", err)
		}
		return emb, nil
	case domain.ProviderOllama:
		return embeddingollama.NewEmbeddingService(embeddingollama.Config{
			BaseURL: s.BaseURL,
			Model:   s.Model,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", s.Provider)
	}
}
