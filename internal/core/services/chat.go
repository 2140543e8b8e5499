package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// ChatService answers questions from retrieved document context.
// It is the only place where core errors are turned into user-facing text.
type ChatService struct {
	retriever   driving.RetrievalService
	llm         driven.LLMService
	promptStore driven.PromptStore
	opts        driven.ChatOptions
	now         func() time.Time
}

// NewChatService creates a new chat service.
// Zero generation options fall back to 1000 tokens at temperature 0.1.
func NewChatService(retriever driving.RetrievalService, llm driven.LLMService, opts driven.ChatOptions) *ChatService {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = domain.DefaultMaxTokens
	}
	if opts.Temperature <= 0 {
		opts.Temperature = domain.DefaultTemperature
	}
	return &ChatService{
		retriever: retriever,
		llm:       llm,
		opts:      opts,
		now:       time.Now,
	}
}

// SetPromptStore sets the prompt store for loading the system prompt.
// If not set, DefaultChatSystemPrompt is used.
func (s *ChatService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Respond retrieves context for the question and asks the LLM to answer from it.
//
// When nothing is retrieved the fixed no-context answer is returned without
// calling the LLM. Any retrieval or generation failure is logged and replaced
// by the fixed failure answer with an empty context.
func (s *ChatService) Respond(ctx context.Context, req domain.ChatRequest) domain.ChatResponse {
	ctx, span := tracer.Start(ctx, "chat.Respond")
	var spanErr error
	defer func() { endSpan(span, spanErr) }()

	logger.Section("Chat")
	logger.Debug("Question: %q, stores: %v, history: %d turns", req.Question, req.StoreIDs, len(req.History))

	mode := req.Mode
	if mode == "" {
		mode = domain.DefaultMode
	}

	retrieved, err := s.retriever.Retrieve(ctx, req.Question, req.StoreIDs, mode)
	if err != nil {
		spanErr = err
		logger.Error("Retrieval failed: %v", err)
		return s.failed(retrieved.Diagnostics)
	}

	if retrieved.IsEmpty() {
		logger.Info("No context retrieved, answering without the LLM")
		return domain.ChatResponse{
			Answer:      domain.AnswerNoContext,
			Timestamp:   s.now(),
			Outcome:     domain.OutcomeNoContext,
			Diagnostics: retrieved.Diagnostics,
		}
	}

	if s.llm == nil {
		spanErr = domain.ErrLLMUnavailable
		logger.Error("Generation failed: %v", domain.ErrLLMUnavailable)
		return s.failed(retrieved.Diagnostics)
	}

	contextText := retrieved.String()
	messages := s.buildMessages(contextText, req)

	answer, err := s.llm.Chat(ctx, messages, s.opts)
	if err != nil {
		spanErr = fmt.Errorf("%w: %w", domain.ErrGenerationProvider, err)
		logger.Error("Generation failed: %v", spanErr)
		return s.failed(retrieved.Diagnostics)
	}

	logger.Info("Answered with %d passages of context", len(retrieved.Passages))
	return domain.ChatResponse{
		Answer:      answer,
		Context:     contextText,
		Timestamp:   s.now(),
		Outcome:     domain.OutcomeAnswered,
		Diagnostics: retrieved.Diagnostics,
	}
}

// buildMessages assembles the system prompt, the caller's history in order,
// and the question.
func (s *ChatService) buildMessages(contextText string, req domain.ChatRequest) []driven.ChatMessage {
	messages := make([]driven.ChatMessage, 0, len(req.History)+2)
	messages = append(messages, driven.ChatMessage{
		Role:    driven.RoleSystem,
		Content: s.systemPrompt(contextText),
	})
	for _, turn := range req.History {
		messages = append(messages, driven.ChatMessage{Role: string(turn.Role), Content: turn.Content})
	}
	messages = append(messages, driven.ChatMessage{Role: driven.RoleUser, Content: req.Question})
	return messages
}

// systemPrompt fills the chat_system template with the retrieved context.
func (s *ChatService) systemPrompt(contextText string) string {
	tmpl := driven.DefaultChatSystemPrompt
	if s.promptStore != nil {
		if custom, err := s.promptStore.Load(driven.PromptChatSystem); err == nil && strings.TrimSpace(custom) != "" {
			tmpl = custom
		} else if err != nil {
			logger.Warn("Using default system prompt: %v", err)
		}
	}

	if strings.Contains(tmpl, "%s") {
		return strings.Replace(tmpl, "%s", contextText, 1)
	}
	return tmpl + "\n\n" + contextText
}

func (s *ChatService) failed(diag domain.RetrievalDiagnostics) domain.ChatResponse {
	return domain.ChatResponse{
		Answer:      domain.AnswerFailure,
		Timestamp:   s.now(),
		Outcome:     domain.OutcomeFailed,
		Diagnostics: diag,
	}
}
