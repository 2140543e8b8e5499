// Package google provides an LLM service adapter for the Gemini API.
package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-1.5-flash"

// Gemini names the assistant role "model".
const (
	roleUser  = "user"
	roleModel = "model"
)

// Config holds configuration for the Gemini LLM service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the LLM model to use (default: gemini-1.5-flash).
	Model string

	// Endpoint overrides the API endpoint.
	Endpoint string

	// HTTPClient overrides the default transport.
	HTTPClient *http.Client
}

// LLMService answers conversations with Gemini models.
type LLMService struct {
	client *genai.Client
	model  string
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("google: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("google: create client: %w", err)
	}

	return &LLMService{client: client, model: cfg.Model}, nil
}

// Chat conducts a multi-turn conversation. System messages become the
// model's system instruction and the final user message is sent against
// the preceding history.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	system, history, last := splitContents(messages)
	if last == "" {
		return "", errors.New("google: conversation has no user message")
	}

	model := s.client.GenerativeModel(s.model)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	model.SetTemperature(float32(opts.Temperature))

	session := model.StartChat()
	session.History = history

	rsp, err := session.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return "", fmt.Errorf("google: send message: %w", err)
	}
	if len(rsp.Candidates) == 0 || rsp.Candidates[0].Content == nil {
		return "", errors.New("google: no candidates returned")
	}

	var b strings.Builder
	for _, part := range rsp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}

// splitContents turns messages into a system instruction, an alternating
// history that starts with the user, and the trailing user message.
func splitContents(messages []driven.ChatMessage) (string, []*genai.Content, string) {
	var system []string
	var history []*genai.Content

	for _, msg := range messages {
		role := roleUser
		switch msg.Role {
		case driven.RoleSystem:
			system = append(system, msg.Content)
			continue
		case driven.RoleAssistant:
			if len(history) == 0 {
				continue
			}
			role = roleModel
		}
		if n := len(history); n > 0 && history[n-1].Role == role {
			history[n-1].Parts = append(history[n-1].Parts, genai.Text(msg.Content))
			continue
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(msg.Content)}})
	}

	n := len(history)
	if n == 0 || history[n-1].Role != roleUser {
		return strings.Join(system, "\n\n"), history, ""
	}

	var last []string
	for _, p := range history[n-1].Parts {
		if text, ok := p.(genai.Text); ok {
			last = append(last, string(text))
		}
	}
	return strings.Join(system, "\n\n"), history[:n-1], strings.Join(last, "\n\n")
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping fetches the model description, which validates the key and model name.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.GenerativeModel(s.model).Info(ctx); err != nil {
		return fmt.Errorf("google: ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *LLMService) Close() error {
	return s.client.Close()
}
