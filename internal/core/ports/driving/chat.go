package driving

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// RetrievalService collects context for a question from a set of stores.
type RetrievalService interface {
	// Retrieve embeds the question once and searches each store in caller order.
	// Stores that cannot be resolved or searched are skipped and reported in
	// the context diagnostics.
	Retrieve(ctx context.Context, question string, storeIDs []string, mode domain.Mode) (domain.RetrievalContext, error)
}

// ChatService answers questions from retrieved document context.
type ChatService interface {
	// Respond never fails. Retrieval or generation errors produce the fixed
	// failure answer with an empty context.
	// Callers validate the request first with domain.ChatRequest.Validate.
	Respond(ctx context.Context, req domain.ChatRequest) domain.ChatResponse
}
