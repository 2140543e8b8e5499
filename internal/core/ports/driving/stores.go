package driving

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// StoreService exposes read access to persisted stores.
type StoreService interface {
	// List returns every persisted store.
	List(ctx context.Context) ([]domain.StoreManifest, error)

	// Get returns the manifest of one store.
	Get(ctx context.Context, id string) (*domain.StoreManifest, error)
}
