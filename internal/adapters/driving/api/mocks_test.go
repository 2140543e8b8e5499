package api

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result  domain.IngestResult
	err     error
	uploads []domain.Upload
}

func (m *mockIngestService) Ingest(_ context.Context, uploads []domain.Upload) (domain.IngestResult, error) {
	m.uploads = uploads
	return m.result, m.err
}

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	resp   domain.ChatResponse
	req    domain.ChatRequest
	called bool
}

func (m *mockChatService) Respond(_ context.Context, req domain.ChatRequest) domain.ChatResponse {
	m.called = true
	m.req = req
	return m.resp
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
