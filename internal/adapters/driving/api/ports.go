package api

import (
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
)

// Ports aggregates the driving ports the HTTP server calls into.
type Ports struct {
	// Ingest turns uploaded PDFs into stores.
	Ingest driving.IngestService

	// Chat answers questions against stores.
	Chat driving.ChatService

	// Stores lists persisted stores.
	Stores driving.StoreService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Ingest == nil {
		return ErrMissingIngestService
	}
	if p.Chat == nil {
		return ErrMissingChatService
	}
	if p.Stores == nil {
		return ErrMissingStoreService
	}
	return nil
}
