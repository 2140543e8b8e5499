package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// setupTestRegistry creates a registry rooted in a temporary directory.
func setupTestRegistry(t *testing.T) *Registry {
	t.Helper()

	reg, err := NewRegistry(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, reg)
	t.Cleanup(func() { assert.NoError(t, reg.Close()) })

	return reg
}

func testChunk(id string, page, position int, vec ...float32) domain.Chunk {
	return domain.Chunk{
		ID:        id,
		Content:   "content of " + id,
		Position:  position,
		Embedding: vec,
		Metadata: map[string]any{
			domain.MetaPageNumber:  page,
			domain.MetaSourceLabel: "page_" + string(rune('0'+page)),
			domain.MetaSourceFile:  "report.pdf",
		},
	}
}

func testStore(source string) *domain.Store {
	return &domain.Store{
		Manifest: domain.StoreManifest{
			Source:         source,
			EmbeddingModel: "test-embed",
			Dimensions:     3,
			Pages:          2,
			CreatedAt:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		},
		Chunks: []domain.Chunk{
			testChunk("c1", 1, 0, 1, 0, 0),
			testChunk("c2", 1, 1, 0, 1, 0),
			testChunk("c3", 2, 2, 0.7, 0.7, 0),
		},
	}
}

// ==================== Persist and Resolve Tests ====================

func TestRegistry_PersistResolveRoundTrip(t *testing.T) {
	reg := setupTestRegistry(t)
	ctx := context.Background()

	id, err := reg.Persist(ctx, testStore("Annual Report.pdf"))
	require.NoError(t, err)
	assert.True(t, domain.IsValidStoreID(id))
	assert.True(t, strings.HasPrefix(id, "Annual_Report_"))

	assert.FileExists(t, filepath.Join(reg.Root(), id, databaseFile))
	assert.FileExists(t, filepath.Join(reg.Root(), id, manifestFile))
	assert.NoDirExists(t, filepath.Join(reg.Root(), stagingPrefix+id))

	store, err := reg.Resolve(ctx, id)
	require.NoError(t, err)
	defer store.Close()

	m := store.Manifest()
	assert.Equal(t, id, m.ID)
	assert.Equal(t, "Annual Report.pdf", m.Source)
	assert.Equal(t, "test-embed", m.EmbeddingModel)
	assert.Equal(t, 3, m.Dimensions)
	assert.Equal(t, 2, m.Pages)
	assert.Equal(t, 3, m.Chunks)
	assert.True(t, m.CreatedAt.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))

	hits, err := store.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "c1", hits[0].Chunk.ID)
	assert.Equal(t, "c3", hits[1].Chunk.ID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
	assert.Equal(t, 1, hits[0].Chunk.PageNumber())
	assert.Equal(t, 2, hits[1].Chunk.PageNumber())
	assert.Equal(t, "content of c1", hits[0].Chunk.Content)
	assert.Equal(t, []float32{1, 0, 0}, hits[0].Chunk.Embedding)
	assert.Equal(t, "report.pdf", hits[0].Chunk.Metadata[domain.MetaSourceFile])
}

func TestRegistry_PersistIssuesDistinctIDs(t *testing.T) {
	reg := setupTestRegistry(t)
	ctx := context.Background()

	id1, err := reg.Persist(ctx, testStore("doc.pdf"))
	require.NoError(t, err)
	id2, err := reg.Persist(ctx, testStore("doc.pdf"))
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
}

func TestRegistry_PersistEmptyStore(t *testing.T) {
	reg := setupTestRegistry(t)

	_, err := reg.Persist(context.Background(), &domain.Store{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = reg.Persist(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistry_PersistDimensionDrift(t *testing.T) {
	reg := setupTestRegistry(t)

	store := testStore("doc.pdf")
	store.Chunks[1].Embedding = []float32{1, 2}

	_, err := reg.Persist(context.Background(), store)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	entries, err := os.ReadDir(reg.Root())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRegistry_PersistCancelledLeavesNothing(t *testing.T) {
	reg := setupTestRegistry(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := reg.Persist(ctx, testStore("doc.pdf"))
	require.Error(t, err)

	entries, err := os.ReadDir(reg.Root())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	reg := setupTestRegistry(t)

	tests := []struct {
		name string
		id   string
	}{
		{"empty", ""},
		{"malformed", "not-a-store"},
		{"path traversal", "../etc_0123456789abcdef0123456789abcdef"},
		{"well formed but absent", "doc_0123456789abcdef0123456789abcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.Resolve(context.Background(), tt.id)
			assert.ErrorIs(t, err, domain.ErrStoreNotFound)
		})
	}
}

func TestRegistry_SearchDimensionMismatch(t *testing.T) {
	reg := setupTestRegistry(t)
	ctx := context.Background()

	id, err := reg.Persist(ctx, testStore("doc.pdf"))
	require.NoError(t, err)

	store, err := reg.Resolve(ctx, id)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Search(ctx, []float32{1, 0}, 3)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestRegistry_SearchAfterClose(t *testing.T) {
	reg := setupTestRegistry(t)
	ctx := context.Background()

	id, err := reg.Persist(ctx, testStore("doc.pdf"))
	require.NoError(t, err)

	store, err := reg.Resolve(ctx, id)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	_, err = store.Search(ctx, []float32{1, 0, 0}, 1)
	assert.Error(t, err)
}

// ==================== List and Delete Tests ====================

func TestRegistry_ListOldestFirst(t *testing.T) {
	reg := setupTestRegistry(t)
	ctx := context.Background()

	newer := testStore("newer.pdf")
	newer.Manifest.CreatedAt = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	older := testStore("older.pdf")
	older.Manifest.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	newerID, err := reg.Persist(ctx, newer)
	require.NoError(t, err)
	olderID, err := reg.Persist(ctx, older)
	require.NoError(t, err)

	// Staging directories and stray files are not stores.
	require.NoError(t, os.MkdirAll(filepath.Join(reg.Root(), ".tmp-partial"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(reg.Root(), "README"), []byte("x"), 0600))
	require.NoError(t, os.MkdirAll(filepath.Join(reg.Root(), "broken"), 0700))

	manifests, err := reg.List(ctx)
	require.NoError(t, err)
	require.Len(t, manifests, 2)
	assert.Equal(t, olderID, manifests[0].ID)
	assert.Equal(t, newerID, manifests[1].ID)
}

func TestRegistry_ListEmpty(t *testing.T) {
	reg := setupTestRegistry(t)

	manifests, err := reg.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, manifests)
}

func TestRegistry_Delete(t *testing.T) {
	reg := setupTestRegistry(t)
	ctx := context.Background()

	id, err := reg.Persist(ctx, testStore("doc.pdf"))
	require.NoError(t, err)

	require.NoError(t, reg.Delete(ctx, id))
	assert.NoDirExists(t, filepath.Join(reg.Root(), id))

	_, err = reg.Resolve(ctx, id)
	assert.ErrorIs(t, err, domain.ErrStoreNotFound)

	err = reg.Delete(ctx, id)
	assert.ErrorIs(t, err, domain.ErrStoreNotFound)
}

// ==================== Staging Cleanup Tests ====================

func TestNewRegistry_RemovesStaleStaging(t *testing.T) {
	root := t.TempDir()

	stale := filepath.Join(root, stagingPrefix+"old")
	fresh := filepath.Join(root, stagingPrefix+"new")
	require.NoError(t, os.MkdirAll(stale, 0700))
	require.NoError(t, os.MkdirAll(fresh, 0700))

	past := time.Now().Add(-2 * staleStagingAge)
	require.NoError(t, os.Chtimes(stale, past, past))

	_, err := NewRegistry(root)
	require.NoError(t, err)

	assert.NoDirExists(t, stale)
	assert.DirExists(t, fresh)
}

func TestNewRegistry_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "stores")

	reg, err := NewRegistry(root)
	require.NoError(t, err)
	assert.Equal(t, root, reg.Root())
	assert.DirExists(t, root)
}

// ==================== Codec Tests ====================

func TestFloat32BlobRoundTrip(t *testing.T) {
	vec := []float32{0, 1.5, -2.25, 3.4028235e38}
	assert.Equal(t, vec, bytesToFloat32Slice(float32SliceToBytes(vec)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
