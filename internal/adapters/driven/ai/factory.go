// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docchat/internal/adapters/driven/config/file"
	googleembed "github.com/custodia-labs/docchat/internal/adapters/driven/embedding/google"
	ollamaembed "github.com/custodia-labs/docchat/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/docchat/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/docchat/internal/adapters/driven/llm/anthropic"
	googlellm "github.com/custodia-labs/docchat/internal/adapters/driven/llm/google"
	groqllm "github.com/custodia-labs/docchat/internal/adapters/driven/llm/groq"
	ollamallm "github.com/custodia-labs/docchat/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/docchat/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// fixHint is appended to provider errors shown to the user.
const fixHint = "Run 'docchat settings set-key' to fix"

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	PromptStore      driven.PromptStore // User-customisable prompt templates.
	Warnings         []string           // Non-fatal issues found while initialising.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Initialise creates the configured AI services without contacting them.
// Problems are recorded as warnings so that commands needing neither
// service still run. The prompt store reads templates from promptDir.
func Initialise(ctx context.Context, settings *domain.AppSettings, promptDir string) *InitResult {
	result := &InitResult{}
	if settings == nil {
		return result
	}

	embedding, err := CreateEmbeddingService(ctx, &settings.Embedding)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("embedding provider: %v. %s", err, fixHint))
	case embedding == nil:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("embedding provider %s is not configured. %s", settings.Embedding.Provider, fixHint))
	default:
		result.EmbeddingService = embedding
	}

	llm, err := CreateLLMService(ctx, &settings.LLM)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("LLM provider: %v. %s", err, fixHint))
	case llm == nil:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("LLM provider %s is not configured. %s", settings.LLM.Provider, fixHint))
	default:
		result.LLMService = llm
	}

	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("prompt templates: %v", err))
	} else {
		result.PromptStore = prompts
	}

	return result
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured. A positive RequestsPerSecond
// wraps the service in a rate limiter.
func CreateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, nil
	}
	if settings.Provider.IsValid() && !settings.Provider.SupportsEmbeddings() {
		return nil, fmt.Errorf("%s does not support embeddings, use openai, ollama or google", settings.Provider)
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = createOllamaEmbedding(settings)

	case domain.AIProviderOpenAI:
		svc, err = createOpenAIEmbedding(settings)

	case domain.AIProviderGoogle:
		svc, err = googleembed.NewEmbeddingService(ctx, googleembed.Config{
			APIKey: settings.APIKey,
			Model:  settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	if settings.RequestsPerSecond > 0 {
		svc = NewRateLimitedEmbedding(svc, RateLimitConfig{RequestsPerSecond: settings.RequestsPerSecond})
	}
	return svc, nil
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderGroq:
		return groqllm.NewLLMService(groqllm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGoogle:
		return googlellm.NewLLMService(ctx, googlellm.Config{
			APIKey: settings.APIKey,
			Model:  settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: domain.EmbeddingDimensions()[settings.Model],
	})
}
