package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pelletier/go-toml/v2"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/similarity"
	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/logger"
)

const (
	databaseFile  = "store.db"
	manifestFile  = "manifest.toml"
	stagingPrefix = ".tmp-"

	// staleStagingAge is how old a staging directory must be before it is
	// treated as abandoned.
	staleStagingAge = time.Hour
)

// Ensure interfaces are implemented.
var (
	_ driven.StoreRegistry = (*Registry)(nil)
	_ driven.DocumentStore = (*documentStore)(nil)
)

// Registry is a directory of persisted stores.
type Registry struct {
	root string
	now  func() time.Time
}

// NewRegistry opens the store directory at root, creating it if needed.
// If root is empty, defaults to ~/.docchat/vector_stores.
func NewRegistry(root string) (*Registry, error) {
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		root = filepath.Join(home, ".docchat", domain.DefaultStorageDir)
	}

	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	r := &Registry{root: root, now: time.Now}
	r.removeStaleStaging()
	return r, nil
}

// Root returns the directory stores are persisted under.
func (r *Registry) Root() string {
	return r.root
}

// Persist writes the store into a staging directory and publishes it.
func (r *Registry) Persist(ctx context.Context, store *domain.Store) (id string, err error) {
	if store == nil || len(store.Chunks) == 0 {
		return "", fmt.Errorf("%w: store has no chunks", domain.ErrInvalidInput)
	}
	for _, c := range store.Chunks {
		if len(c.Embedding) != store.Manifest.Dimensions {
			return "", fmt.Errorf("%w: chunk %s has %d dimensions, manifest declares %d",
				domain.ErrDimensionMismatch, c.ID, len(c.Embedding), store.Manifest.Dimensions)
		}
	}

	id = domain.NewStoreID(store.Manifest.Source)
	staging := filepath.Join(r.root, stagingPrefix+id)
	if err := os.MkdirAll(staging, 0700); err != nil {
		return "", fmt.Errorf("creating staging directory: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(staging)
		}
	}()

	if err := writeChunks(ctx, filepath.Join(staging, databaseFile), store.Chunks); err != nil {
		return "", err
	}

	manifest := store.Manifest
	manifest.ID = id
	manifest.Chunks = len(store.Chunks)
	if manifest.CreatedAt.IsZero() {
		manifest.CreatedAt = r.now().UTC()
	}
	if err := writeManifest(filepath.Join(staging, manifestFile), manifest); err != nil {
		return "", err
	}

	if err := os.Rename(staging, filepath.Join(r.root, id)); err != nil {
		return "", fmt.Errorf("publishing store %s: %w", id, err)
	}

	logger.Debug("persisted store %s (%d chunks)", id, manifest.Chunks)
	return id, nil
}

// Resolve opens a published store for searching.
func (r *Registry) Resolve(ctx context.Context, id string) (driven.DocumentStore, error) {
	if !domain.IsValidStoreID(id) {
		return nil, fmt.Errorf("%w: %q", domain.ErrStoreNotFound, id)
	}

	dir := filepath.Join(r.root, id)
	manifest, err := readManifest(filepath.Join(dir, manifestFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrStoreNotFound, id)
		}
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite",
		filepath.Join(dir, databaseFile)+"?_pragma=query_only(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", id, err)
	}

	return &documentStore{db: db, manifest: manifest}, nil
}

// List returns the manifest of every published store, oldest first.
// Directories with an unreadable manifest are skipped.
func (r *Registry) List(_ context.Context) ([]domain.StoreManifest, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, fmt.Errorf("reading store directory: %w", err)
	}

	var manifests []domain.StoreManifest
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		m, err := readManifest(filepath.Join(r.root, name, manifestFile))
		if err != nil {
			logger.Warn("skipping store directory %s: %v", name, err)
			continue
		}
		manifests = append(manifests, m)
	}

	sort.Slice(manifests, func(i, j int) bool {
		if manifests[i].CreatedAt.Equal(manifests[j].CreatedAt) {
			return manifests[i].ID < manifests[j].ID
		}
		return manifests[i].CreatedAt.Before(manifests[j].CreatedAt)
	})
	return manifests, nil
}

// Delete removes a published store.
func (r *Registry) Delete(_ context.Context, id string) error {
	if !domain.IsValidStoreID(id) {
		return fmt.Errorf("%w: %q", domain.ErrStoreNotFound, id)
	}

	dir := filepath.Join(r.root, id)
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", domain.ErrStoreNotFound, id)
		}
		return fmt.Errorf("checking store %s: %w", id, err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("deleting store %s: %w", id, err)
	}
	return nil
}

// Close is a no-op; resolved stores own their database handles.
func (r *Registry) Close() error {
	return nil
}

func (r *Registry) removeStaleStaging() {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return
	}
	cutoff := r.now().Add(-staleStagingAge)
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), stagingPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(r.root, entry.Name())); err != nil {
			logger.Warn("removing abandoned staging directory %s: %v", entry.Name(), err)
			continue
		}
		logger.Debug("removed abandoned staging directory %s", entry.Name())
	}
}

// writeChunks creates the store database and inserts every chunk in one transaction.
func writeChunks(ctx context.Context, path string, chunks []domain.Chunk) error {
	db, err := sqlx.ConnectContext(ctx, "sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := migrate(ctx, db, migrations.FS); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO chunks (id, position, page_number, source_label, content, embedding, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		metadataJSON, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata for chunk %s: %w", c.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.Position, c.PageNumber(), sourceLabel(c),
			c.Content, float32SliceToBytes(c.Embedding), string(metadataJSON)); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func writeManifest(path string, m domain.StoreManifest) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

func readManifest(path string) (domain.StoreManifest, error) {
	var m domain.StoreManifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := toml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("decoding manifest: %w", err)
	}
	return m, nil
}

// documentStore is a resolved, read-only store.
type documentStore struct {
	mu       sync.Mutex
	db       *sqlx.DB
	manifest domain.StoreManifest
}

func (s *documentStore) Manifest() domain.StoreManifest {
	return s.manifest
}

// Search scores every chunk in the store against vector.
func (s *documentStore) Search(ctx context.Context, vector []float32, k int) ([]domain.ScoredChunk, error) {
	if len(vector) != s.manifest.Dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, store %s has %d",
			domain.ErrDimensionMismatch, len(vector), s.manifest.ID, s.manifest.Dimensions)
	}

	s.mu.Lock()
	db := s.db
	s.mu.Unlock()
	if db == nil {
		return nil, fmt.Errorf("store %s is closed", s.manifest.ID)
	}

	var rows []chunkRow
	if err := db.SelectContext(ctx, &rows, `
		SELECT id, position, page_number, source_label, content, embedding, metadata
		FROM chunks ORDER BY position
	`); err != nil {
		return nil, fmt.Errorf("loading chunks: %w", err)
	}

	chunks := make([]domain.Chunk, 0, len(rows))
	for _, row := range rows {
		c, err := row.toChunk()
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}

	return similarity.TopK(vector, chunks, k, s.manifest.Dimensions)
}

func (s *documentStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
