package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"scaled", []float32{1, 1}, []float32{5, 5}, 1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1}, []float32{1, 1}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Cosine(tt.a, tt.b), 1e-9)
		})
	}
}

func chunk(id string, vec ...float32) domain.Chunk {
	return domain.Chunk{ID: id, Content: id, Embedding: vec}
}

func TestTopK(t *testing.T) {
	chunks := []domain.Chunk{
		chunk("east", 1, 0),
		chunk("north", 0, 1),
		chunk("northeast", 1, 1),
		chunk("west", -1, 0),
	}

	hits, err := TopK([]float32{1, 0.1}, chunks, 2, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "east", hits[0].Chunk.ID)
	assert.Equal(t, "northeast", hits[1].Chunk.ID)
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)
}

func TestTopK_KLargerThanStore(t *testing.T) {
	chunks := []domain.Chunk{chunk("a", 1, 0), chunk("b", 0, 1)}

	hits, err := TopK([]float32{0, 1}, chunks, 10, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "b", hits[0].Chunk.ID)
}

func TestTopK_StableTies(t *testing.T) {
	chunks := []domain.Chunk{chunk("first", 1, 0), chunk("second", 1, 0), chunk("third", 1, 0)}

	hits, err := TopK([]float32{1, 0}, chunks, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, "first", hits[0].Chunk.ID)
	assert.Equal(t, "second", hits[1].Chunk.ID)
	assert.Equal(t, "third", hits[2].Chunk.ID)
}

func TestTopK_DimensionMismatch(t *testing.T) {
	_, err := TopK([]float32{1, 0, 0}, []domain.Chunk{chunk("a", 1, 0)}, 1, 2)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestTopK_Empty(t *testing.T) {
	hits, err := TopK([]float32{1}, nil, 5, 1)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = TopK([]float32{1}, []domain.Chunk{chunk("a", 1)}, 0, 1)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
