// Package mcp provides an MCP (Model Context Protocol) server adapter for docchat.
// It lets AI assistants ask questions against ingested PDFs and ingest new ones.
package mcp

import "errors"

var (
	// ErrMissingChatService is returned when the chat service is not provided.
	ErrMissingChatService = errors.New("mcp: chat service is required")

	// ErrIngestUnavailable is returned by ingest_pdf when no ingest service is wired.
	ErrIngestUnavailable = errors.New("mcp: ingestion is not available")
)
