// Package anthropic provides an LLM service adapter using the Anthropic API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/custodia-labs/docchat/internal/adapters/driven/httpclient"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 1024
)

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the LLM model to use (default: claude-3-5-sonnet-latest).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// HTTPClient overrides the traced default client.
	HTTPClient *http.Client
}

// LLMService provides LLM operations using the Anthropic API.
type LLMService struct {
	client anthropic.Client
	model  string
}

// NewLLMService creates a new Anthropic LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpclient.OrNew(cfg.HTTPClient, cfg.Timeout)),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &LLMService{
		client: anthropic.NewClient(opts...),
		model:  cfg.Model,
	}, nil
}

// Chat conducts a multi-turn conversation.
// System messages are sent as the top-level system prompt.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	system, turns := splitMessages(messages)
	if len(turns) == 0 {
		return "", errors.New("anthropic: conversation has no user message")
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(s.model),
		MaxTokens:   int64(maxTokens),
		Messages:    turns,
		Temperature: anthropic.Float(opts.Temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic: messages: %w", err)
	}

	var b strings.Builder
	for _, content := range resp.Content {
		if text, ok := content.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("anthropic: no text in response")
	}

	return b.String(), nil
}

// splitMessages separates system text from the conversation turns.
// The Messages API requires turns to alternate starting with the user, so
// consecutive messages of the same role are merged and leading assistant
// turns are dropped.
func splitMessages(messages []driven.ChatMessage) (string, []anthropic.MessageParam) {
	var system []string
	type turn struct {
		role    string
		content []string
	}
	var turns []turn

	for _, msg := range messages {
		switch msg.Role {
		case driven.RoleSystem:
			system = append(system, msg.Content)
			continue
		case driven.RoleAssistant:
			if len(turns) == 0 {
				continue
			}
		}
		role := driven.RoleUser
		if msg.Role == driven.RoleAssistant {
			role = driven.RoleAssistant
		}
		if n := len(turns); n > 0 && turns[n-1].role == role {
			turns[n-1].content = append(turns[n-1].content, msg.Content)
			continue
		}
		turns = append(turns, turn{role: role, content: []string{msg.Content}})
	}

	out := make([]anthropic.MessageParam, 0, len(turns))
	for _, t := range turns {
		block := anthropic.NewTextBlock(strings.Join(t.content, "\n\n"))
		if t.role == driven.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(block))
		} else {
			out = append(out, anthropic.NewUserMessage(block))
		}
	}
	return strings.Join(system, "\n\n"), out
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key by listing models.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.Models.List(ctx, anthropic.ModelListParams{}); err != nil {
		return fmt.Errorf("anthropic: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
