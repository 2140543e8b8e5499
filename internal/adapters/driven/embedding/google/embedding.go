// Package google provides an embedding service adapter for the Gemini API.
package google

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "text-embedding-004"
	DefaultDimensions = 768

	// maxBatch is the largest batch the API accepts in one call.
	maxBatch = 100
)

// Config holds configuration for the Gemini embedding service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the embedding model (default: text-embedding-004).
	Model string

	// Endpoint overrides the API endpoint.
	Endpoint string

	// HTTPClient overrides the default transport.
	HTTPClient *http.Client
}

// EmbeddingService generates embeddings with Gemini embedding models.
type EmbeddingService struct {
	client *genai.Client
	model  *genai.EmbeddingModel
	name   string
}

// NewEmbeddingService creates a new Gemini embedding service.
func NewEmbeddingService(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("google: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, clientOptions(cfg.APIKey, cfg.Endpoint, cfg.HTTPClient)...)
	if err != nil {
		return nil, fmt.Errorf("google: create client: %w", err)
	}

	return &EmbeddingService{
		client: client,
		model:  client.EmbeddingModel(cfg.Model),
		name:   cfg.Model,
	}, nil
}

// clientOptions builds the genai client options shared by the Gemini adapters.
func clientOptions(apiKey, endpoint string, hc *http.Client) []option.ClientOption {
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	if hc != nil {
		opts = append(opts, option.WithHTTPClient(hc))
	}
	return opts
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	rsp, err := s.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("google: embed content: %w", err)
	}
	if rsp == nil || rsp.Embedding == nil || len(rsp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("google: no embedding returned")
	}
	return rsp.Embedding.Values, nil
}

// EmbedBatch embeds texts in batches of up to 100.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for _, group := range batches(texts, maxBatch) {
		b := s.model.NewBatch()
		for _, text := range group {
			b.AddContent(genai.Text(text))
		}

		rsp, err := s.model.BatchEmbedContents(ctx, b)
		if err != nil {
			return nil, fmt.Errorf("google: batch embed contents: %w", err)
		}
		if rsp == nil || len(rsp.Embeddings) != len(group) {
			return nil, fmt.Errorf("google: expected %d embeddings", len(group))
		}
		for _, e := range rsp.Embeddings {
			if e == nil || len(e.Values) == 0 {
				return nil, fmt.Errorf("google: empty embedding returned")
			}
			out = append(out, e.Values)
		}
	}
	return out, nil
}

// batches splits texts into consecutive groups of at most size.
func batches(texts []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(texts); start += size {
		end := start + size
		if end > len(texts) {
			end = len(texts)
		}
		out = append(out, texts[start:end])
	}
	return out
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return DefaultDimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.name
}

// Ping fetches the model description, which validates the key and model name.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.model.Info(ctx); err != nil {
		return fmt.Errorf("google: ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *EmbeddingService) Close() error {
	return s.client.Close()
}
