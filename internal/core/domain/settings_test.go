package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAIProvider_IsValid tests provider recognition
func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		provider AIProvider
		expected bool
	}{
		{"groq is valid", AIProviderGroq, true},
		{"ollama is valid", AIProviderOllama, true},
		{"openai is valid", AIProviderOpenAI, true},
		{"anthropic is valid", AIProviderAnthropic, true},
		{"google is valid", AIProviderGoogle, true},
		{"empty is invalid", AIProvider(""), false},
		{"unknown is invalid", AIProvider("mistral"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

// TestAIProvider_RequiresAPIKey tests API key requirements
func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.True(t, AIProviderGroq.RequiresAPIKey())
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderAnthropic.RequiresAPIKey())
	assert.True(t, AIProviderGoogle.RequiresAPIKey())
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.False(t, AIProvider("unknown").RequiresAPIKey())
}

func TestAIProvider_SupportsEmbeddings(t *testing.T) {
	assert.True(t, AIProviderOpenAI.SupportsEmbeddings())
	assert.True(t, AIProviderOllama.SupportsEmbeddings())
	assert.True(t, AIProviderGoogle.SupportsEmbeddings())
	assert.False(t, AIProviderGroq.SupportsEmbeddings())
	assert.False(t, AIProviderAnthropic.SupportsEmbeddings())
}

func TestAIProvider_Description(t *testing.T) {
	for _, p := range AllLLMProviders() {
		assert.NotEqual(t, unknownDescription, p.Description(), p.String())
	}
	assert.Equal(t, unknownDescription, AIProvider("nope").Description())
}

// TestEmbeddingSettings_IsConfigured tests embedding configuration checks
func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		expected bool
	}{
		{"ollama without key", EmbeddingSettings{Provider: AIProviderOllama}, true},
		{"openai with key", EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk"}, true},
		{"openai without key", EmbeddingSettings{Provider: AIProviderOpenAI}, false},
		{"groq cannot embed", EmbeddingSettings{Provider: AIProviderGroq, APIKey: "gsk"}, false},
		{"empty provider", EmbeddingSettings{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

// TestLLMSettings_IsConfigured tests LLM configuration checks
func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.True(t, LLMSettings{Provider: AIProviderOllama}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderGroq, APIKey: "gsk"}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderGroq}.IsConfigured())
	assert.False(t, LLMSettings{Provider: "bogus", APIKey: "x"}.IsConfigured())
}

func TestStorageBackend_IsValid(t *testing.T) {
	assert.True(t, StorageSQLite.IsValid())
	assert.True(t, StoragePostgres.IsValid())
	assert.True(t, StorageMemory.IsValid())
	assert.False(t, StorageBackend("qdrant").IsValid())
}

func TestRetrievalSettings_K(t *testing.T) {
	r := RetrievalSettings{MultiTurnK: 5, SingleShotK: 10}

	assert.Equal(t, 5, r.K(ModeMultiTurn))
	assert.Equal(t, 10, r.K(ModeSingleShot))
	assert.Equal(t, 10, r.K(Mode("anything-else")))
	assert.Equal(t, 10, r.K(Mode("")))
}

// TestDefaultAppSettings tests default values
func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, AIProviderGroq, s.LLM.Provider)
	assert.Equal(t, "llama3-8b-8192", s.LLM.Model)
	assert.Equal(t, 1000, s.LLM.MaxTokens)
	assert.InDelta(t, 0.1, s.LLM.Temperature, 1e-9)
	assert.Empty(t, s.LLM.APIKey)

	assert.Equal(t, AIProviderOpenAI, s.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", s.Embedding.Model)
	assert.Equal(t, 32, s.Embedding.BatchSize)

	assert.Equal(t, 1000, s.Chunker.ChunkSize)
	assert.Equal(t, 200, s.Chunker.ChunkOverlap)
	assert.Equal(t, StorageSQLite, s.Storage.Backend)
	assert.Equal(t, "vector_stores", s.Storage.Root)
	assert.Equal(t, 5, s.Retrieval.MultiTurnK)
	assert.Equal(t, 10, s.Retrieval.SingleShotK)
	assert.Equal(t, 4, s.Ingest.Concurrency)
	assert.Equal(t, ":8000", s.Server.Addr)
}

func TestDefaultModels_CoverProviders(t *testing.T) {
	llm := DefaultLLMModels()
	for _, p := range AllLLMProviders() {
		assert.NotEmpty(t, llm[p], p.String())
	}

	emb := DefaultEmbeddingModels()
	dims := EmbeddingDimensions()
	for _, p := range AllEmbeddingProviders() {
		model := emb[p]
		require.NotEmpty(t, model, p.String())
		assert.Positive(t, dims[model], model)
	}
}

// TestPipelineConfig tests pipeline configuration helpers
func TestPipelineConfig(t *testing.T) {
	cfg := PipelineConfigFor(ChunkerSettings{ChunkSize: 500, ChunkOverlap: 50})

	assert.Equal(t, []string{"chunker"}, cfg.Processors)
	chunker := cfg.GetProcessorConfig("chunker")
	require.NotNil(t, chunker)
	assert.Equal(t, 500, chunker["chunk_size"])
	assert.Equal(t, 50, chunker["overlap"])
	assert.Nil(t, cfg.GetProcessorConfig("missing"))

	var empty PipelineConfig
	assert.Nil(t, empty.GetProcessorConfig("chunker"))

	def := DefaultPipelineConfig()
	assert.Equal(t, 1000, def.GetProcessorConfig("chunker")["chunk_size"])
}
