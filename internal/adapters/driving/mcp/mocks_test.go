package mcp

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	resp domain.ChatResponse
	req  domain.ChatRequest
}

func (m *mockChatService) Respond(_ context.Context, req domain.ChatRequest) domain.ChatResponse {
	m.req = req
	return m.resp
}

// mockIngestService is a mock implementation of driving.IngestService.
// Uploads whose content is in fail are reported as failed items.
type mockIngestService struct {
	fail    map[string]error
	err     error
	uploads []domain.Upload
}

func (m *mockIngestService) Ingest(_ context.Context, uploads []domain.Upload) (domain.IngestResult, error) {
	m.uploads = uploads
	if m.err != nil {
		return domain.IngestResult{}, m.err
	}

	var result domain.IngestResult
	for _, u := range uploads {
		item := domain.IngestItem{Filename: u.Filename}
		if err, ok := m.fail[string(u.Content)]; ok {
			item.Err = err
		} else {
			item.StoreID = "store_" + u.Filename
			item.Chunks = len(u.Content)
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

// mockStoreService is a mock implementation of driving.StoreService.
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
	return nil, domain.ErrStoreNotFound
}
