package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderGroq is the Groq cloud API (OpenAI compatible).
	AIProviderGroq AIProvider = "groq"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGoogle is the Google Gemini API.
	AIProviderGoogle AIProvider = "google"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderGroq, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGoogle:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p.IsValid() && !p.IsLocal()
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// SupportsEmbeddings returns true if the provider can produce embeddings.
func (p AIProvider) SupportsEmbeddings() bool {
	for _, e := range AllEmbeddingProviders() {
		if e == p {
			return true
		}
	}
	return false
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderGroq:
		return "Groq (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGoogle:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string

	// BatchSize is the number of chunks sent per embedding request.
	BatchSize int

	// RequestsPerSecond caps embedding calls. Zero disables limiting.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.SupportsEmbeddings() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or an OpenAI compatible proxy).
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string

	// MaxTokens bounds the generated answer.
	MaxTokens int

	// Temperature controls sampling. Kept low so answers stay close to the context.
	Temperature float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkerSettings holds text splitting configuration.
type ChunkerSettings struct {
	ChunkSize    int
	ChunkOverlap int
}

// StorageBackend selects the document store implementation.
type StorageBackend string

// Available storage backends.
const (
	// StorageSQLite keeps one SQLite file per store under the storage root.
	StorageSQLite StorageBackend = "sqlite"

	// StoragePostgres keeps all stores in one Postgres database with pgvector.
	StoragePostgres StorageBackend = "postgres"

	// StorageMemory keeps stores in process memory only.
	StorageMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageSQLite, StoragePostgres, StorageMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// StorageSettings holds document store configuration.
type StorageSettings struct {
	Backend StorageBackend

	// Root is the directory holding one subdirectory per store (sqlite backend).
	Root string

	// PostgresDSN is the connection string (postgres backend).
	PostgresDSN string
}

// RetrievalSettings holds per-store retrieval depth.
type RetrievalSettings struct {
	// MultiTurnK is the number of chunks taken from each store in multi-turn mode.
	MultiTurnK int

	// SingleShotK is the number of chunks taken from each store in any other mode.
	SingleShotK int
}

// K returns the per-store retrieval depth for a mode.
func (r RetrievalSettings) K(mode Mode) int {
	if mode.IsMultiTurn() {
		return r.MultiTurnK
	}
	return r.SingleShotK
}

// IngestSettings holds ingestion configuration.
type IngestSettings struct {
	// Concurrency is the number of files processed at once.
	Concurrency int
}

// ServerSettings holds HTTP server configuration.
type ServerSettings struct {
	Addr string
}

// AppSettings holds all application settings.
type AppSettings struct {
	LLM       LLMSettings
	Embedding EmbeddingSettings
	Chunker   ChunkerSettings
	Storage   StorageSettings
	Retrieval RetrievalSettings
	Ingest    IngestSettings
	Server    ServerSettings
}

// Default values used when a setting is absent.
const (
	DefaultChunkSize          = 1000
	DefaultChunkOverlap       = 200
	DefaultMaxTokens          = 1000
	DefaultTemperature        = 0.1
	DefaultEmbeddingBatchSize = 32
	DefaultMultiTurnK         = 5
	DefaultSingleShotK        = 10
	DefaultIngestConcurrency  = 4
	DefaultServerAddr         = ":8000"
	DefaultStorageDir         = "vector_stores"
)

// DefaultAppSettings returns settings with sensible defaults.
// API keys are left empty; they come from the config file or the environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{
			Provider:    AIProviderGroq,
			Model:       DefaultLLMModels()[AIProviderGroq],
			MaxTokens:   DefaultMaxTokens,
			Temperature: DefaultTemperature,
		},
		Embedding: EmbeddingSettings{
			Provider:  AIProviderOpenAI,
			Model:     DefaultEmbeddingModels()[AIProviderOpenAI],
			BatchSize: DefaultEmbeddingBatchSize,
		},
		Chunker: ChunkerSettings{
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
		},
		Storage: StorageSettings{
			Backend: StorageSQLite,
			Root:    DefaultStorageDir,
		},
		Retrieval: RetrievalSettings{
			MultiTurnK:  DefaultMultiTurnK,
			SingleShotK: DefaultSingleShotK,
		},
		Ingest: IngestSettings{
			Concurrency: DefaultIngestConcurrency,
		},
		Server: ServerSettings{
			Addr: DefaultServerAddr,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOpenAI,
		AIProviderOllama,
		AIProviderGoogle,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGroq,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGoogle,
		AIProviderOllama,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGoogle: "text-embedding-004",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGroq:      "llama3-8b-8192",
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGoogle:    "gemini-1.5-flash",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Google models
		"text-embedding-004": 768,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config for extensibility - new processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfigFor returns the pipeline configuration derived from chunker settings.
func PipelineConfigFor(c ChunkerSettings) PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": c.ChunkSize,
				"overlap":    c.ChunkOverlap,
			},
		},
	}
}

// DefaultPipelineConfig returns the default pipeline configuration.
// Works out-of-the-box with chunker using sensible defaults.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfigFor(DefaultAppSettings().Chunker)
}
