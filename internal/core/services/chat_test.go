package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestChatService(retriever *mockRetriever, llm driven.LLMService) *ChatService {
	s := NewChatService(retriever, llm, driven.ChatOptions{})
	s.now = func() time.Time { return fixedNow }
	return s
}

func twoPassages() domain.RetrievalContext {
	return domain.RetrievalContext{
		Passages: []domain.Passage{
			{StoreID: "s1", Page: 3, Content: "Revenue grew 12%."},
			{StoreID: "s1", Page: 7, Content: "Costs were flat."},
		},
		Diagnostics: domain.RetrievalDiagnostics{Requested: 1, Searched: 1},
	}
}

func TestNewChatService_DefaultOptions(t *testing.T) {
	s := NewChatService(&mockRetriever{}, &mockLLMService{}, driven.ChatOptions{})

	assert.Equal(t, 1000, s.opts.MaxTokens)
	assert.InDelta(t, 0.1, s.opts.Temperature, 1e-9)
}

func TestChatService_Respond_Answered(t *testing.T) {
	retriever := &mockRetriever{result: twoPassages()}
	llm := &mockLLMService{answer: "Revenue grew 12% [Page 3]."}
	s := newTestChatService(retriever, llm)

	resp := s.Respond(context.Background(), domain.ChatRequest{
		Question: "How did revenue change?",
		StoreIDs: []string{"s1"},
		History: []domain.Turn{
			{Role: domain.RoleUser, Content: "Hi"},
			{Role: domain.RoleAssistant, Content: "Hello"},
		},
	})

	assert.Equal(t, domain.OutcomeAnswered, resp.Outcome)
	assert.Equal(t, "Revenue grew 12% [Page 3].", resp.Answer)
	assert.Equal(t, "[Page 3]: Revenue grew 12%.\n\n[Page 7]: Costs were flat.", resp.Context)
	assert.Equal(t, fixedNow, resp.Timestamp)
	assert.Equal(t, domain.ModeMultiTurn, retriever.mode, "empty mode defaults to multi-turn")

	require.Len(t, llm.messages, 4)
	assert.Equal(t, driven.RoleSystem, llm.messages[0].Role)
	assert.Contains(t, llm.messages[0].Content, "[Page 3]: Revenue grew 12%.")
	assert.Contains(t, llm.messages[0].Content, "Include page numbers in citations")
	assert.NotContains(t, llm.messages[0].Content, "%s")
	assert.Equal(t, driven.ChatMessage{Role: driven.RoleUser, Content: "Hi"}, llm.messages[1])
	assert.Equal(t, driven.ChatMessage{Role: driven.RoleAssistant, Content: "Hello"}, llm.messages[2])
	assert.Equal(t, driven.ChatMessage{Role: driven.RoleUser, Content: "How did revenue change?"}, llm.messages[3])
	assert.Equal(t, driven.ChatOptions{MaxTokens: 1000, Temperature: 0.1}, llm.opts)
}

func TestChatService_Respond_NoContextSkipsLLM(t *testing.T) {
	diag := domain.RetrievalDiagnostics{Requested: 2, Failed: 2, FailedIDs: []string{"a", "b"}}
	llm := &mockLLMService{answer: "should not be used"}
	s := newTestChatService(&mockRetriever{result: domain.RetrievalContext{Diagnostics: diag}}, llm)

	resp := s.Respond(context.Background(), domain.ChatRequest{Question: "q", StoreIDs: []string{"a", "b"}})

	assert.Equal(t, domain.OutcomeNoContext, resp.Outcome)
	assert.Equal(t, "I cannot find relevant information in the provided documents.", resp.Answer)
	assert.Empty(t, resp.Context)
	assert.Equal(t, diag, resp.Diagnostics)
	assert.Zero(t, llm.calls)
}

func TestChatService_Respond_Failures(t *testing.T) {
	tests := []struct {
		name      string
		retriever *mockRetriever
		llm       driven.LLMService
	}{
		{
			name:      "retrieval error",
			retriever: &mockRetriever{err: domain.ErrEmbeddingProvider},
			llm:       &mockLLMService{answer: "unused"},
		},
		{
			name:      "generation error",
			retriever: &mockRetriever{result: twoPassages()},
			llm:       &mockLLMService{err: errors.New("503 from provider")},
		},
		{
			name:      "no llm configured",
			retriever: &mockRetriever{result: twoPassages()},
			llm:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewChatService(tt.retriever, tt.llm, driven.ChatOptions{})
			resp := s.Respond(context.Background(), domain.ChatRequest{Question: "q", StoreIDs: []string{"s1"}})

			assert.Equal(t, domain.OutcomeFailed, resp.Outcome)
			assert.Equal(t, "Sorry, I encountered an error processing your question.", resp.Answer)
			assert.Empty(t, resp.Context)
			assert.False(t, resp.Timestamp.IsZero())
		})
	}
}

func TestChatService_Respond_PassesMode(t *testing.T) {
	retriever := &mockRetriever{result: twoPassages()}
	s := newTestChatService(retriever, &mockLLMService{answer: "a"})

	s.Respond(context.Background(), domain.ChatRequest{Question: "q", StoreIDs: []string{"s1"}, Mode: domain.ModeSingleShot})

	assert.Equal(t, domain.ModeSingleShot, retriever.mode)
}

func TestChatService_SystemPrompt(t *testing.T) {
	tests := []struct {
		name  string
		store driven.PromptStore
		want  string
	}{
		{
			name:  "template with placeholder",
			store: &mockPromptStore{prompts: map[string]string{driven.PromptChatSystem: "Use this:\n%s\nEnd."}},
			want:  "Use this:\nCTX\nEnd.",
		},
		{
			name:  "template without placeholder",
			store: &mockPromptStore{prompts: map[string]string{driven.PromptChatSystem: "Answer briefly."}},
			want:  "Answer briefly.\n\nCTX",
		},
		{
			name:  "blank template falls back",
			store: &mockPromptStore{prompts: map[string]string{driven.PromptChatSystem: "  "}},
			want:  fillDefault("CTX"),
		},
		{
			name:  "store error falls back",
			store: &mockPromptStore{err: errors.New("unreadable")},
			want:  fillDefault("CTX"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewChatService(&mockRetriever{}, &mockLLMService{}, driven.ChatOptions{})
			s.SetPromptStore(tt.store)
			assert.Equal(t, tt.want, s.systemPrompt("CTX"))
		})
	}
}

func fillDefault(ctx string) string {
	s := NewChatService(nil, nil, driven.ChatOptions{})
	return s.systemPrompt(ctx)
}

func TestChatService_Respond_ConfiguredOptions(t *testing.T) {
	llm := &mockLLMService{answer: "a"}
	s := NewChatService(&mockRetriever{result: twoPassages()}, llm, driven.ChatOptions{MaxTokens: 256, Temperature: 0.7})

	s.Respond(context.Background(), domain.ChatRequest{Question: "q", StoreIDs: []string{"s1"}})

	assert.Equal(t, driven.ChatOptions{MaxTokens: 256, Temperature: 0.7}, llm.opts)
}
