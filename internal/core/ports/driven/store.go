package driven

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// DocumentStore is one persisted, read-only collection of embedded chunks.
type DocumentStore interface {
	// Manifest describes the store, including the embedding model it was built with.
	Manifest() domain.StoreManifest

	// Search returns up to k chunks ordered by descending cosine similarity.
	// Fails with domain.ErrDimensionMismatch when the vector length differs
	// from the store's dimensionality.
	Search(ctx context.Context, vector []float32, k int) ([]domain.ScoredChunk, error)

	// Close releases resources held by the resolved store.
	Close() error
}

// StoreRegistry issues identifiers for persisted stores and resolves them.
//
// Stores are write-once. A store is never visible to Resolve or List until
// Persist has completely written it.
type StoreRegistry interface {
	// Persist writes the store and returns its newly issued identifier.
	Persist(ctx context.Context, store *domain.Store) (string, error)

	// Resolve opens a previously persisted store.
	// Returns domain.ErrStoreNotFound for unknown or malformed identifiers.
	Resolve(ctx context.Context, id string) (DocumentStore, error)

	// List returns the manifests of every persisted store, oldest first.
	List(ctx context.Context) ([]domain.StoreManifest, error)

	// Delete removes a store. Nothing in the ingest or chat path calls it.
	Delete(ctx context.Context, id string) error

	// Close releases resources held by the registry.
	Close() error
}
