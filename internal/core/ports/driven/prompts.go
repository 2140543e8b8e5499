package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptChatSystem is the system prompt for answering from document context.
	// The template expects a %s placeholder for the retrieved context; without
	// one, the context is appended after the template text.
	PromptChatSystem = "chat_system"
)

// DefaultChatSystemPrompt is used when no PromptStore is configured or the
// store has no chat_system template. The %s placeholder receives the context.
const DefaultChatSystemPrompt = `You are a helpful AI assistant that answers questions based on provided document context.

Rules:
1. Answer based ONLY on the provided context
2. Include page numbers in citations like [Page X]
3. If the context doesn't contain relevant information, say "I cannot find relevant information in the provided documents"
4. Be concise but thorough

Context from documents:
%s`
