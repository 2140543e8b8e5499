package driving

import "github.com/custodia-labs/docchat/internal/core/domain"

// SettingsService reads and updates docchat's provider, storage and
// retrieval settings.
type SettingsService interface {
	// Get returns the effective settings: defaults, then the settings file,
	// then DOCCHAT_* environment variables.
	Get() (*domain.AppSettings, error)

	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider switches the embedding provider. Stores built
	// with another model stop answering until re-ingested.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks the settings are complete without contacting providers.
	Validate() error

	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig embeds a probe string with the current provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig checks the current LLM provider is reachable.
	ValidateLLMConfig() error
}
