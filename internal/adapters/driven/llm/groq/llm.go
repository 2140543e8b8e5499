// Package groq provides an LLM service adapter for Groq's OpenAI compatible API.
package groq

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/docchat/internal/adapters/driven/httpclient"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.groq.com/openai/v1"
	DefaultLLMModel   = "llama3-8b-8192"
	DefaultLLMTimeout = 60 * time.Second
)

// LLMConfig holds configuration for the Groq LLM service.
type LLMConfig struct {
	// APIKey is the Groq API key (required).
	APIKey string

	// BaseURL overrides the API endpoint (default: Groq's OpenAI compatible endpoint).
	BaseURL string

	// Model is the LLM model to use (default: llama3-8b-8192).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// HTTPClient overrides the traced default client.
	HTTPClient *http.Client
}

// LLMService provides chat completions using Groq.
type LLMService struct {
	client *openai.Client
	model  string
}

// NewLLMService creates a new Groq LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("groq: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = httpclient.OrNew(cfg.HTTPClient, cfg.Timeout)

	return &LLMService{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}, nil
}

// Chat conducts a multi-turn conversation.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    toMessages(messages),
		MaxTokens:   opts.MaxTokens,
		Temperature: float32(opts.Temperature),
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("groq: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("groq: no choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

func toMessages(messages []driven.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		role := openai.ChatMessageRoleUser
		switch msg.Role {
		case driven.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case driven.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}
	return out
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key by listing models.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("groq: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
