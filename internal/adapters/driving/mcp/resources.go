package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for docchat resources.
	uriScheme = "docchat://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Stores == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "stores",
		Name:        "stores",
		Description: "List of all ingested document stores",
		MIMEType:    "application/json",
	}, s.handleStoresResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "stores/{storeId}",
		Name:        "store-manifest",
		Description: "Manifest of a specific document store",
		MIMEType:    "application/json",
	}, s.handleStoreResource)
}

// handleStoresResource returns every store manifest.
func (s *Server) handleStoresResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	manifests, err := s.ports.Stores.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing stores: %w", err)
	}

	infos := make([]StoreOutput, len(manifests))
	for i, m := range manifests {
		infos[i] = toStoreOutput(m)
	}
	return jsonResource(req.Params.URI, infos)
}

// handleStoreResource returns one store manifest.
func (s *Server) handleStoreResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract storeId from URI: docchat://stores/{storeId}
	id := extractStoreID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	manifest, err := s.ports.Stores.Get(ctx, id)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResource(req.Params.URI, manifest)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractStoreID extracts the store ID from a URI like docchat://stores/{storeId}.
func extractStoreID(uri string) string {
	const prefix = uriScheme + "stores/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
