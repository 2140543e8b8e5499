package driven

import "context"

// LLMService generates answers from a conversation.
//
// Implementations may include:
//   - Groq (llama3 via the OpenAI compatible API)
//   - OpenAI (GPT-4o)
//   - Anthropic (Claude)
//   - Google (Gemini)
//   - Ollama (local models)
type LLMService interface {
	// Chat conducts a multi-turn conversation and returns the assistant's reply.
	// The first message may carry the system role.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Message roles understood by every LLMService.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
