package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role is the speaker of a conversation turn.
type Role string

// Available roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid returns true if the role is recognised.
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// Turn is one prior exchange supplied by the caller.
// The orchestrator prepends turns verbatim and never rewrites them.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Mode controls retrieval depth per store.
type Mode string

// Known conversation modes. Any other value behaves like ModeSingleShot.
const (
	// ModeMultiTurn keeps per-store retrieval small so context stays compact
	// across a running conversation.
	ModeMultiTurn Mode = "multi-turn"

	// ModeSingleShot retrieves more per store since no history competes for context.
	ModeSingleShot Mode = "single-shot"
)

// DefaultMode is used when the caller does not supply one.
const DefaultMode = ModeMultiTurn

// IsMultiTurn reports whether the mode is multi-turn.
func (m Mode) IsMultiTurn() bool {
	return m == ModeMultiTurn
}

// String returns the string representation.
func (m Mode) String() string {
	return string(m)
}

// Fixed user-facing answers.
const (
	// AnswerNoContext is returned when retrieval finds nothing.
	AnswerNoContext = "I cannot find relevant information in the provided documents."

	// AnswerFailure is returned when retrieval or generation fails.
	AnswerFailure = "Sorry, I encountered an error processing your question."
)

// ChatRequest is a question asked against one or more stores.
type ChatRequest struct {
	Question string
	StoreIDs []string
	History  []Turn
	Mode     Mode
}

// Validate rejects requests that must never reach the core.
// It also fills in the default mode.
func (r *ChatRequest) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return fmt.Errorf("%w: question cannot be empty", ErrValidation)
	}
	if len(r.StoreIDs) == 0 {
		return fmt.Errorf("%w: no document stores provided", ErrValidation)
	}
	for _, id := range r.StoreIDs {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: store id cannot be empty", ErrValidation)
		}
	}
	for i, turn := range r.History {
		if !turn.Role.IsValid() {
			return fmt.Errorf("%w: chat_history[%d] has unknown role %q", ErrValidation, i, turn.Role)
		}
	}
	if r.Mode == "" {
		r.Mode = DefaultMode
	}
	return nil
}

// Outcome classifies how a chat request was answered.
type Outcome string

// Possible outcomes.
const (
	OutcomeAnswered  Outcome = "answered"
	OutcomeNoContext Outcome = "no_context"
	OutcomeFailed    Outcome = "failed"
)

// ChatResponse is the orchestrator's answer.
type ChatResponse struct {
	// Answer is the generated text, or one of the fixed answers.
	Answer string

	// Context is the raw concatenated context the answer was grounded on.
	Context string

	// Timestamp is when the response was produced.
	Timestamp time.Time

	// Outcome records which path produced the answer.
	Outcome Outcome

	// Diagnostics reports per-store retrieval failures.
	Diagnostics RetrievalDiagnostics
}
