package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
)

// Ensure mocks implement interfaces.
var (
	_ driving.SettingsService = (*mockSettingsService)(nil)
	_ driving.IngestService   = (*mockIngestService)(nil)
	_ driving.ChatService     = (*mockChatService)(nil)
	_ driving.StoreService    = (*mockStoreService)(nil)
)

type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	llmErr      error
	embedErr    error

	llmProvider   domain.AIProvider
	llmModel      string
	llmKey        string
	embedProvider domain.AIProvider
	embedModel    string
	embedKey      string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.embedProvider, m.embedModel, m.embedKey = provider, model, apiKey
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.llmProvider, m.llmModel, m.llmKey = provider, model, apiKey
	return nil
}

func (m *mockSettingsService) Validate() error                 { return m.validateErr }
func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettingsService) ValidateEmbeddingConfig() error  { return m.embedErr }
func (m *mockSettingsService) ValidateLLMConfig() error        { return m.llmErr }

// mockIngestService succeeds for every upload whose content is not in fail.
type mockIngestService struct {
	mu      sync.Mutex
	fail    map[string]bool
	uploads []domain.Upload
}

func (m *mockIngestService) Ingest(_ context.Context, uploads []domain.Upload) (domain.IngestResult, error) {
	m.mu.Lock()
	m.uploads = append(m.uploads, uploads...)
	m.mu.Unlock()

	var result domain.IngestResult
	for _, u := range uploads {
		item := domain.IngestItem{Filename: u.Filename}
		if m.fail[string(u.Content)] {
			item.Err = fmt.Errorf("%w: %s", domain.ErrNoText, u.Filename)
		} else {
			item.StoreID = "store_" + u.Filename
			item.Pages = 2
			item.Chunks = 3
			result.StoreIDs = append(result.StoreIDs, item.StoreID)
			result.Count++
		}
		result.Items = append(result.Items, item)
	}
	if result.Count == 0 {
		return result, domain.ErrIngestFailed
	}
	return result, nil
}

type mockChatService struct {
	answer   string
	requests []domain.ChatRequest
}

func (m *mockChatService) Respond(_ context.Context, req domain.ChatRequest) domain.ChatResponse {
	m.requests = append(m.requests, req)
	return domain.ChatResponse{
		Answer:    m.answer,
		Context:   "[Source: paper.pdf, Page 1]\npassage",
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Outcome:   domain.OutcomeAnswered,
		Diagnostics: domain.RetrievalDiagnostics{
			Requested: len(req.StoreIDs),
			Searched:  len(req.StoreIDs),
		},
	}
}

type mockStoreService struct {
	manifests []domain.StoreManifest
	err       error
}

func (m *mockStoreService) List(_ context.Context) ([]domain.StoreManifest, error) {
	return m.manifests, m.err
}

func (m *mockStoreService) Get(_ context.Context, id string) (*domain.StoreManifest, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.manifests {
		if m.manifests[i].ID == id {
			return &m.manifests[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrStoreNotFound, id)
}

var errBoom = errors.New("boom")

type testServices struct {
	settings *mockSettingsService
	ingest   *mockIngestService
	chat     *mockChatService
	stores   *mockStoreService
}

// setupTestServices installs mocks for every service and returns a cleanup
// that restores the previous values.
func setupTestServices() (*testServices, func()) {
	origSettings, origIngest, origChat, origStores := settingsService, ingestService, chatService, storeService

	ts := &testServices{
		settings: newMockSettingsService(),
		ingest:   &mockIngestService{fail: map[string]bool{}},
		chat:     &mockChatService{answer: "The answer is 42 [Page 1]."},
		stores: &mockStoreService{manifests: []domain.StoreManifest{
			{
				ID:             "paper_20240501_120000",
				Source:         "paper.pdf",
				EmbeddingModel: "text-embedding-3-small",
				Dimensions:     1536,
				Pages:          12,
				Chunks:         40,
				CreatedAt:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			},
		}},
	}
	settingsService = ts.settings
	ingestService = ts.ingest
	chatService = ts.chat
	storeService = ts.stores

	return ts, func() {
		settingsService, ingestService, chatService, storeService = origSettings, origIngest, origChat, origStores
	}
}
