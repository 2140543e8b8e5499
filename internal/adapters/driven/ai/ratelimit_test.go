package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	calls int
}

func (c *countingEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	c.calls++
	return []float32{1, 0}, nil
}

func (c *countingEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	c.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (c *countingEmbedder) Dimensions() int { return 2 }
func (c *countingEmbedder) ModelName() string { return "counting" }
func (c *countingEmbedder) Ping(_ context.Context) error { return nil }
func (c *countingEmbedder) Close() error { return nil }

func TestRateLimitedEmbedding_Delegates(t *testing.T) {
	inner := &countingEmbedder{}
	svc := NewRateLimitedEmbedding(inner, RateLimitConfig{RequestsPerSecond: 100})

	vec, err := svc.Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, "counting", svc.ModelName())
	assert.Equal(t, 2, svc.Dimensions())
}

func TestRateLimitedEmbedding_DefaultBurst(t *testing.T) {
	svc := NewRateLimitedEmbedding(&countingEmbedder{}, RateLimitConfig{RequestsPerSecond: 0.5})
	assert.Equal(t, 1, svc.limiter.Burst())

	svc = NewRateLimitedEmbedding(&countingEmbedder{}, RateLimitConfig{RequestsPerSecond: 2.5})
	assert.Equal(t, 3, svc.limiter.Burst())
}

func TestRateLimitedEmbedding_RespectsContext(t *testing.T) {
	inner := &countingEmbedder{}
	svc := NewRateLimitedEmbedding(inner, RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})

	_, err := svc.Embed(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = svc.EmbedBatch(ctx, []string{"second"})
	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}
