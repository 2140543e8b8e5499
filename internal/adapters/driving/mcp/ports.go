package mcp

import (
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Chat answers questions against stores.
	Chat driving.ChatService

	// Ingest turns PDFs on disk into stores.
	Ingest driving.IngestService

	// Stores lists persisted stores.
	Stores driving.StoreService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p == nil || p.Chat == nil {
		return ErrMissingChatService
	}
	// Ingest and Stores are optional
	return nil
}
