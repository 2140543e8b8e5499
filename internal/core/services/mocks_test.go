package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Texts found in vectors get that vector; everything else gets fallback.
type mockEmbeddingService struct {
	mu        sync.Mutex
	model     string
	vectors   map[string][]float32
	fallback  []float32
	embedErr  error
	batchErr  error
	batchSize []int
	embedded  []string
}

func newMockEmbedder(fallback ...float32) *mockEmbeddingService {
	return &mockEmbeddingService{
		model:    "mock-embed",
		vectors:  make(map[string][]float32),
		fallback: fallback,
	}
}

func (m *mockEmbeddingService) vectorFor(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	return m.fallback
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	m.embedded = append(m.embedded, text)
	return m.vectorFor(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	m.batchSize = append(m.batchSize, len(texts))
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = m.vectorFor(text)
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int { return len(m.fallback) }
func (m *mockEmbeddingService) ModelName() string { return m.model }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error { return nil }

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	answer   string
	err      error
	calls    int
	messages []driven.ChatMessage
	opts     driven.ChatOptions
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.calls++
	m.messages = messages
	m.opts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error { return nil }

// mockRetriever implements driving.RetrievalService for testing.
type mockRetriever struct {
	result domain.RetrievalContext
	err    error
	mode   domain.Mode
}

func (m *mockRetriever) Retrieve(_ context.Context, _ string, _ []string, mode domain.Mode) (domain.RetrievalContext, error) {
	m.mode = mode
	return m.result, m.err
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.prompts[name], nil
}

func (m *mockPromptStore) Reload() {}

// mockExtractor implements driven.TextExtractor by looking up pages by content.
type mockExtractor struct {
	pages map[string][]domain.Page
	errs  map[string]error
}

func (m *mockExtractor) Extract(_ context.Context, data []byte) ([]domain.Page, error) {
	if err, ok := m.errs[string(data)]; ok {
		return nil, err
	}
	return m.pages[string(data)], nil
}

// pageChunker implements driven.PostProcessorPipeline with one chunk per page.
type pageChunker struct {
	err error
}

func (p *pageChunker) Process(_ context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if p.err != nil {
		return nil, p.err
	}
	chunks := make([]domain.Chunk, 0, len(doc.Pages))
	for i, page := range doc.Pages {
		chunks = append(chunks, domain.Chunk{
			ID:       doc.Filename + "-" + string(rune('a'+i)),
			Content:  page.Text,
			Position: i,
			Metadata: map[string]any{domain.MetaPageNumber: page.Number},
		})
	}
	return chunks, nil
}

// failingRegistry wraps a registry and fails Persist for chosen sources.
type failingRegistry struct {
	driven.StoreRegistry
	failSources map[string]error
}

func (f *failingRegistry) Persist(ctx context.Context, store *domain.Store) (string, error) {
	if err, ok := f.failSources[store.Manifest.Source]; ok {
		return "", err
	}
	return f.StoreRegistry.Persist(ctx, store)
}
