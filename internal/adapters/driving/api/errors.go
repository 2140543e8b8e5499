// Package api provides the HTTP adapter for docchat.
// It exposes document upload, chat and store listing over JSON.
package api

import "errors"

var (
	// ErrMissingIngestService is returned when the ingest service is not provided.
	ErrMissingIngestService = errors.New("api: ingest service is required")

	// ErrMissingChatService is returned when the chat service is not provided.
	ErrMissingChatService = errors.New("api: chat service is required")

	// ErrMissingStoreService is returned when the store service is not provided.
	ErrMissingStoreService = errors.New("api: store service is required")
)
