package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/similarity"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.StoreRegistry = (*Registry)(nil)

// Registry is an in-memory implementation of driven.StoreRegistry.
// Stores live only as long as the process.
type Registry struct {
	mu     sync.RWMutex
	stores map[string]domain.Store
}

// NewRegistry creates a new in-memory store registry.
func NewRegistry() *Registry {
	return &Registry{
		stores: make(map[string]domain.Store),
	}
}

// Persist copies the store and issues it an identifier.
func (r *Registry) Persist(_ context.Context, store *domain.Store) (string, error) {
	if store == nil || len(store.Chunks) == 0 {
		return "", fmt.Errorf("%w: store has no chunks", domain.ErrInvalidInput)
	}
	for _, c := range store.Chunks {
		if len(c.Embedding) != store.Manifest.Dimensions {
			return "", fmt.Errorf("%w: chunk %s has %d dimensions, manifest declares %d",
				domain.ErrDimensionMismatch, c.ID, len(c.Embedding), store.Manifest.Dimensions)
		}
	}

	id := domain.NewStoreID(store.Manifest.Source)

	persisted := domain.Store{
		Manifest: store.Manifest,
		Chunks:   make([]domain.Chunk, len(store.Chunks)),
	}
	copy(persisted.Chunks, store.Chunks)
	persisted.Manifest.ID = id
	persisted.Manifest.Chunks = len(store.Chunks)
	if persisted.Manifest.CreatedAt.IsZero() {
		persisted.Manifest.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[id] = persisted
	return id, nil
}

// Resolve returns a read-only view of a persisted store.
func (r *Registry) Resolve(_ context.Context, id string) (driven.DocumentStore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	store, ok := r.stores[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrStoreNotFound, id)
	}
	return &documentStore{store: store}, nil
}

// List returns every manifest, oldest first.
func (r *Registry) List(_ context.Context) ([]domain.StoreManifest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	manifests := make([]domain.StoreManifest, 0, len(r.stores))
	for _, s := range r.stores {
		manifests = append(manifests, s.Manifest)
	}
	sort.Slice(manifests, func(i, j int) bool {
		if manifests[i].CreatedAt.Equal(manifests[j].CreatedAt) {
			return manifests[i].ID < manifests[j].ID
		}
		return manifests[i].CreatedAt.Before(manifests[j].CreatedAt)
	})
	return manifests, nil
}

// Delete removes a store.
func (r *Registry) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stores[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrStoreNotFound, id)
	}
	delete(r.stores, id)
	return nil
}

// Close is a no-op for the memory registry.
func (r *Registry) Close() error {
	return nil
}

type documentStore struct {
	store domain.Store
}

func (s *documentStore) Manifest() domain.StoreManifest {
	return s.store.Manifest
}

func (s *documentStore) Search(ctx context.Context, vector []float32, k int) ([]domain.ScoredChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return similarity.TopK(vector, s.store.Chunks, k, s.store.Manifest.Dimensions)
}

func (s *documentStore) Close() error {
	return nil
}
