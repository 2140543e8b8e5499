// Package app wires configuration, adapters and core services together.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docchat/internal/adapters/driven/ai"
	"github.com/custodia-labs/docchat/internal/adapters/driven/config/env"
	"github.com/custodia-labs/docchat/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/services"
	"github.com/custodia-labs/docchat/internal/extractors/pdf"
	"github.com/custodia-labs/docchat/internal/logger"
	"github.com/custodia-labs/docchat/internal/postprocessors"
)

// Options controls how the application is assembled.
type Options struct {
	// HomeDir holds config.toml, prompts/ and relative storage roots.
	// Defaults to ~/.docchat.
	HomeDir string

	// ConfigPath overrides <HomeDir>/config.toml. YAML files are accepted.
	ConfigPath string

	// EnvFiles are loaded before the environment is read. Defaults to ".env".
	EnvFiles []string

	// Lookup replaces os.LookupEnv.
	Lookup func(string) (string, bool)

	// Ephemeral starts from an in-memory config with the memory storage
	// backend. No config file is read or written.
	Ephemeral bool
}

// App holds the wired services.
// Ingest and Chat are nil when their providers are not configured;
// Unavailable explains why.
type App struct {
	Settings *services.SettingsService
	Stores   *services.StoreService
	Ingest   *services.IngestService
	Chat     *services.ChatService

	// Config is the settings snapshot the services were built from.
	Config domain.AppSettings

	// Warnings lists non-fatal problems found while wiring.
	Warnings []string

	registry driven.StoreRegistry
	ai       *ai.InitResult
}

// New loads configuration and builds every service it can.
// Only configuration and storage failures are fatal.
func New(ctx context.Context, opts Options) (*App, error) {
	home, err := homeDir(opts.HomeDir)
	if err != nil {
		return nil, err
	}

	if err := env.LoadDotEnv(opts.EnvFiles...); err != nil {
		logger.Warn("Loading .env: %v", err)
	}

	store, err := openConfigStore(home, opts)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	var envOpts []env.Option
	if opts.Lookup != nil {
		envOpts = append(envOpts, env.WithLookup(opts.Lookup))
	}
	settingsService := services.NewSettingsService(env.New(store, envOpts...), ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	logger.Debug("Config: %s, storage backend: %s", store.Path(), settings.Storage.Backend)

	registry, err := OpenRegistry(ctx, settings.Storage, home)
	if err != nil {
		return nil, err
	}

	a := &App{
		Settings: settingsService,
		Stores:   services.NewStoreService(registry),
		Config:   *settings,
		registry: registry,
	}

	a.ai = ai.Initialise(ctx, settings, filepath.Join(home, "prompts"))
	a.Warnings = append(a.Warnings, a.ai.Warnings...)

	if a.ai.EmbeddingService == nil {
		return a, nil
	}

	pipeline, err := buildPipeline(settingsService.GetPipelineConfig())
	if err != nil {
		a.Close() //nolint:errcheck
		return nil, err
	}

	builder := services.NewStoreBuilder(a.ai.EmbeddingService, settings.Embedding.BatchSize)
	a.Ingest = services.NewIngestService(pdf.New(), pipeline, builder, registry, settings.Ingest.Concurrency)

	if a.ai.LLMService == nil {
		return a, nil
	}

	retriever := services.NewRetriever(registry, a.ai.EmbeddingService, settings.Retrieval)
	a.Chat = services.NewChatService(retriever, a.ai.LLMService, driven.ChatOptions{
		MaxTokens:   settings.LLM.MaxTokens,
		Temperature: settings.LLM.Temperature,
	})
	if a.ai.PromptStore != nil {
		a.Chat.SetPromptStore(a.ai.PromptStore)
	}

	return a, nil
}

// Unavailable returns why a service could not be built, or nil.
func (a *App) Unavailable(service string) error {
	switch {
	case a.ai == nil || a.ai.EmbeddingService == nil:
		return fmt.Errorf("%s unavailable: %w", service, domain.ErrEmbeddingUnavailable)
	case service == "chat" && a.ai.LLMService == nil:
		return fmt.Errorf("%s unavailable: %w", service, domain.ErrLLMUnavailable)
	default:
		return nil
	}
}

// WatchPrompts reloads edited prompt templates in the background until ctx
// is cancelled. Long-running servers call it; one-shot commands do not.
func (a *App) WatchPrompts(ctx context.Context) {
	if a.ai == nil {
		return
	}
	w, ok := a.ai.PromptStore.(interface{ Watch(context.Context) error })
	if !ok {
		return
	}
	go func() {
		if err := w.Watch(ctx); err != nil {
			logger.Warn("Prompt templates will not reload: %v", err)
		}
	}()
}

// Close releases AI clients and the store registry.
func (a *App) Close() error {
	if a.ai != nil {
		a.ai.Close()
	}
	if a.registry != nil {
		return a.registry.Close()
	}
	return nil
}

// OpenRegistry opens the store registry for the configured backend.
// A relative sqlite root is resolved against home.
func OpenRegistry(ctx context.Context, cfg domain.StorageSettings, home string) (driven.StoreRegistry, error) {
	switch cfg.Backend {
	case domain.StorageSQLite, "":
		root := cfg.Root
		if root == "" {
			root = domain.DefaultStorageDir
		}
		if !filepath.IsAbs(root) {
			root = filepath.Join(home, root)
		}
		return sqlite.NewRegistry(root)

	case domain.StoragePostgres:
		return postgres.NewRegistry(ctx, cfg.PostgresDSN)

	case domain.StorageMemory:
		return memory.NewRegistry(), nil

	default:
		return nil, fmt.Errorf("%w: storage backend %q", domain.ErrUnsupportedType, cfg.Backend)
	}
}

func openConfigStore(home string, opts Options) (driven.ConfigStore, error) {
	switch {
	case opts.Ephemeral:
		return memory.NewConfigStoreFrom(map[string]any{
			services.KeyStorageBackend: string(domain.StorageMemory),
		}), nil
	case opts.ConfigPath != "":
		return file.NewConfigStoreAt(opts.ConfigPath)
	default:
		return file.NewConfigStore(home)
	}
}

func buildPipeline(cfg domain.PipelineConfig) (driven.PostProcessorPipeline, error) {
	r := postprocessors.NewRegistry()
	if err := postprocessors.RegisterDefaults(r); err != nil {
		return nil, err
	}
	pipeline, err := postprocessors.BuildPipeline(r, cfg)
	if err != nil {
		return nil, fmt.Errorf("building chunking pipeline: %w", err)
	}
	logger.Debug("Chunking pipeline: %s", strings.Join(pipeline.Names(), " -> "))
	return pipeline, nil
}

func homeDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".docchat"), nil
}
