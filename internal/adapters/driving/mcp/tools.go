package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// AskInput is the input schema for the ask_documents tool.
type AskInput struct {
	Question string        `json:"question" jsonschema:"the question to answer from the documents"`
	StoreIDs []string      `json:"store_ids" jsonschema:"identifiers of the stores to search, in priority order"`
	Mode     string        `json:"mode,omitempty" jsonschema:"multi-turn (default) or single-shot"`
	History  []domain.Turn `json:"history,omitempty" jsonschema:"prior conversation turns, oldest first"`
}

// AskOutput is the output schema for the ask_documents tool.
type AskOutput struct {
	Answer      string                      `json:"answer"`
	Context     string                      `json:"context"`
	Outcome     string                      `json:"outcome"`
	Timestamp   string                      `json:"timestamp"`
	Diagnostics domain.RetrievalDiagnostics `json:"diagnostics"`
}

// IngestInput is the input schema for the ingest_pdf tool.
type IngestInput struct {
	Paths []string `json:"paths" jsonschema:"absolute paths of PDF files to ingest"`
}

// IngestOutput is the output schema for the ingest_pdf tool.
type IngestOutput struct {
	StoreIDs []string           `json:"store_ids"`
	Files    []IngestFileOutput `json:"files"`
	Count    int                `json:"count"`
}

// IngestFileOutput reports the outcome for one file.
type IngestFileOutput struct {
	Path    string `json:"path"`
	StoreID string `json:"store_id,omitempty"`
	Chunks  int    `json:"chunks,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ListStoresInput is the input schema for the list_stores tool.
type ListStoresInput struct{}

// ListStoresOutput is the output schema for the list_stores tool.
type ListStoresOutput struct {
	Stores []StoreOutput `json:"stores"`
	Count  int           `json:"count"`
}

// StoreOutput represents a single store.
type StoreOutput struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Pages     int    `json:"pages"`
	Chunks    int    `json:"chunks"`
	Model     string `json:"embedding_model"`
	CreatedAt string `json:"created_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_documents",
		Description: "Answer a question using passages retrieved from ingested PDFs",
	}, s.handleAsk)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest_pdf",
			Description: "Ingest PDF files from disk and return their store identifiers",
		}, s.handleIngest)
	}

	if s.ports.Stores != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_stores",
			Description: "List the document stores available for questions",
		}, s.handleListStores)
	}
}

// handleAsk handles the ask_documents tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	req := domain.ChatRequest{
		Question: input.Question,
		StoreIDs: input.StoreIDs,
		History:  input.History,
		Mode:     domain.Mode(input.Mode),
	}
	if err := req.Validate(); err != nil {
		return nil, AskOutput{}, err
	}

	resp := s.ports.Chat.Respond(ctx, req)
	return nil, AskOutput{
		Answer:      resp.Answer,
		Context:     resp.Context,
		Outcome:     string(resp.Outcome),
		Timestamp:   resp.Timestamp.Format(time.RFC3339),
		Diagnostics: resp.Diagnostics,
	}, nil
}

// handleIngest handles the ingest_pdf tool invocation.
// Unreadable paths are reported per file and never reach the ingest service.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if s.ports.Ingest == nil {
		return nil, IngestOutput{}, ErrIngestUnavailable
	}
	if len(input.Paths) == 0 {
		return nil, IngestOutput{}, fmt.Errorf("%w: no paths provided", domain.ErrValidation)
	}

	output := IngestOutput{
		StoreIDs: []string{},
		Files:    make([]IngestFileOutput, len(input.Paths)),
	}

	var uploads []domain.Upload
	var slots []int
	for i, path := range input.Paths {
		output.Files[i].Path = path
		data, err := os.ReadFile(path)
		if err != nil {
			output.Files[i].Error = err.Error()
			continue
		}
		uploads = append(uploads, domain.Upload{Filename: filepath.Base(path), Content: data})
		slots = append(slots, i)
	}
	if len(uploads) == 0 {
		return nil, output, nil
	}

	result, err := s.ports.Ingest.Ingest(ctx, uploads)
	if err != nil && !errors.Is(err, domain.ErrIngestFailed) {
		return nil, IngestOutput{}, err
	}

	for j, item := range result.Items {
		if j >= len(slots) {
			break
		}
		file := &output.Files[slots[j]]
		if item.Err != nil {
			file.Error = item.Err.Error()
			continue
		}
		file.StoreID = item.StoreID
		file.Chunks = item.Chunks
		output.StoreIDs = append(output.StoreIDs, item.StoreID)
	}
	output.Count = len(output.StoreIDs)

	return nil, output, nil
}

// handleListStores handles the list_stores tool invocation.
func (s *Server) handleListStores(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListStoresInput,
) (*mcp.CallToolResult, ListStoresOutput, error) {
	manifests, err := s.ports.Stores.List(ctx)
	if err != nil {
		return nil, ListStoresOutput{}, err
	}

	output := ListStoresOutput{
		Stores: make([]StoreOutput, len(manifests)),
		Count:  len(manifests),
	}
	for i, m := range manifests {
		output.Stores[i] = toStoreOutput(m)
	}
	return nil, output, nil
}

func toStoreOutput(m domain.StoreManifest) StoreOutput {
	return StoreOutput{
		ID:        m.ID,
		Source:    m.Source,
		Pages:     m.Pages,
		Chunks:    m.Chunks,
		Model:     m.EmbeddingModel,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}
