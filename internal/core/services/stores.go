package services

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
)

// Ensure StoreService implements the interface.
var _ driving.StoreService = (*StoreService)(nil)

// StoreService exposes persisted store manifests.
type StoreService struct {
	registry driven.StoreRegistry
}

// NewStoreService creates a new store service.
func NewStoreService(registry driven.StoreRegistry) *StoreService {
	return &StoreService{registry: registry}
}

// List returns every persisted store.
func (s *StoreService) List(ctx context.Context) ([]domain.StoreManifest, error) {
	return s.registry.List(ctx)
}

// Get returns the manifest of one store.
func (s *StoreService) Get(ctx context.Context, id string) (*domain.StoreManifest, error) {
	store, err := s.registry.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	manifest := store.Manifest()
	return &manifest, nil
}
