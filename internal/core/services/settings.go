package services

import (
	"fmt"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyLLMProvider        = "llm.provider"
	KeyLLMModel           = "llm.model"
	KeyLLMBaseURL         = "llm.base_url"
	KeyLLMAPIKey          = "llm.api_key"
	KeyLLMMaxTokens       = "llm.max_tokens"
	KeyLLMTemperature     = "llm.temperature"
	KeyEmbedProvider      = "embedding.provider"
	KeyEmbedModel         = "embedding.model"
	KeyEmbedBaseURL       = "embedding.base_url"
	KeyEmbedAPIKey        = "embedding.api_key"
	KeyEmbedBatchSize     = "embedding.batch_size"
	KeyEmbedRPS           = "embedding.requests_per_second"
	KeyChunkSize          = "chunker.chunk_size"
	KeyChunkOverlap       = "chunker.chunk_overlap"
	KeyStorageBackend     = "storage.backend"
	KeyStorageRoot        = "storage.root"
	KeyStoragePostgresDSN = "storage.postgres_dsn"
	KeyMultiTurnK         = "retrieval.multi_turn_k"
	KeySingleShotK        = "retrieval.single_shot_k"
	KeyIngestConcurrency  = "ingest.concurrency"
	KeyServerAddr         = "server.addr"
)

// defaultOllamaURL is used when a local provider is selected without a base URL.
const defaultOllamaURL = "http://localhost:11434"

type keyValue struct {
	key string
	val any
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
// Missing or invalid values fall back to domain.DefaultAppSettings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	llmProvider := s.getProvider(KeyLLMProvider, defaults.LLM.Provider)
	llmModel := defaults.LLM.Model
	if llmProvider != defaults.LLM.Provider {
		llmModel = domain.DefaultLLMModels()[llmProvider]
	}

	embedProvider := s.getProvider(KeyEmbedProvider, defaults.Embedding.Provider)
	embedModel := defaults.Embedding.Model
	if embedProvider != defaults.Embedding.Provider {
		embedModel = domain.DefaultEmbeddingModels()[embedProvider]
	}

	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider:    llmProvider,
			Model:       s.getString(KeyLLMModel, llmModel),
			BaseURL:     s.configStore.GetString(KeyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:      s.configStore.GetString(KeyLLMAPIKey),
			MaxTokens:   s.getInt(KeyLLMMaxTokens, defaults.LLM.MaxTokens),
			Temperature: s.getFloat(KeyLLMTemperature, defaults.LLM.Temperature),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          embedProvider,
			Model:             s.getString(KeyEmbedModel, embedModel),
			BaseURL:           s.configStore.GetString(KeyEmbedBaseURL),
			APIKey:            s.configStore.GetString(KeyEmbedAPIKey),
			BatchSize:         s.getInt(KeyEmbedBatchSize, defaults.Embedding.BatchSize),
			RequestsPerSecond: s.getFloat(KeyEmbedRPS, defaults.Embedding.RequestsPerSecond),
		},
		Chunker: domain.ChunkerSettings{
			ChunkSize:    s.getInt(KeyChunkSize, defaults.Chunker.ChunkSize),
			ChunkOverlap: s.getIntAllowZero(KeyChunkOverlap, defaults.Chunker.ChunkOverlap),
		},
		Storage: domain.StorageSettings{
			Backend:     s.getBackend(defaults.Storage.Backend),
			Root:        s.getString(KeyStorageRoot, defaults.Storage.Root),
			PostgresDSN: s.configStore.GetString(KeyStoragePostgresDSN),
		},
		Retrieval: domain.RetrievalSettings{
			MultiTurnK:  s.getInt(KeyMultiTurnK, defaults.Retrieval.MultiTurnK),
			SingleShotK: s.getInt(KeySingleShotK, defaults.Retrieval.SingleShotK),
		},
		Ingest: domain.IngestSettings{
			Concurrency: s.getInt(KeyIngestConcurrency, defaults.Ingest.Concurrency),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(KeyServerAddr, defaults.Server.Addr),
		},
	}

	return settings, nil
}

// Save persists application settings.
// Empty API keys are never written so a saved file cannot clear a key.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []keyValue{
		{KeyLLMProvider, settings.LLM.Provider.String()},
		{KeyLLMModel, settings.LLM.Model},
		{KeyLLMBaseURL, settings.LLM.BaseURL},
		{KeyLLMMaxTokens, settings.LLM.MaxTokens},
		{KeyLLMTemperature, settings.LLM.Temperature},
		{KeyEmbedProvider, settings.Embedding.Provider.String()},
		{KeyEmbedModel, settings.Embedding.Model},
		{KeyEmbedBaseURL, settings.Embedding.BaseURL},
		{KeyEmbedBatchSize, settings.Embedding.BatchSize},
		{KeyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{KeyChunkSize, settings.Chunker.ChunkSize},
		{KeyChunkOverlap, settings.Chunker.ChunkOverlap},
		{KeyStorageBackend, settings.Storage.Backend.String()},
		{KeyStorageRoot, settings.Storage.Root},
		{KeyStoragePostgresDSN, settings.Storage.PostgresDSN},
		{KeyMultiTurnK, settings.Retrieval.MultiTurnK},
		{KeySingleShotK, settings.Retrieval.SingleShotK},
		{KeyIngestConcurrency, settings.Ingest.Concurrency},
		{KeyServerAddr, settings.Server.Addr},
	}
	if settings.LLM.APIKey != "" {
		values = append(values, keyValue{KeyLLMAPIKey, settings.LLM.APIKey})
	}
	if settings.Embedding.APIKey != "" {
		values = append(values, keyValue{KeyEmbedAPIKey, settings.Embedding.APIKey})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.val); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !provider.SupportsEmbeddings() {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else if defaultModel, ok := domain.DefaultEmbeddingModels()[provider]; ok {
		settings.Embedding.Model = defaultModel
	}

	if provider.IsLocal() {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = defaultOllamaURL
		}
	} else {
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = defaultModel
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = defaultOllamaURL
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that both AI providers are configured and the storage
// backend has what it needs.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider.Description())
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider %q is not configured",
			domain.ErrLLMUnavailable, settings.LLM.Provider.Description())
	}
	if settings.Storage.Backend == domain.StoragePostgres && settings.Storage.PostgresDSN == "" {
		return fmt.Errorf("%w: storage backend postgres requires %s", domain.ErrInvalidInput, KeyStoragePostgresDSN)
	}
	if settings.Chunker.ChunkOverlap >= settings.Chunker.ChunkSize {
		return fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d",
			domain.ErrInvalidInput, settings.Chunker.ChunkOverlap, settings.Chunker.ChunkSize)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// GetPipelineConfig returns the post-processor pipeline configuration.
// Returns the chunker-only pipeline if nothing is configured.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	settings, _ := s.Get()
	cfg := domain.PipelineConfigFor(settings.Chunker)

	if processors := s.configStore.GetStringSlice("pipeline.processors"); len(processors) > 0 {
		cfg.Processors = processors
	}
	return cfg
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

// getIntAllowZero is getInt for settings where zero is meaningful.
func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	if val := s.configStore.GetInt(key); val >= 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	val := s.configStore.GetFloat(key)
	if val < 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	val := s.configStore.GetString(KeyStorageBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.StorageBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
