package ai

import (
	"context"
	"math"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure RateLimitedEmbedding implements the interface.
var _ driven.EmbeddingService = (*RateLimitedEmbedding)(nil)

// RateLimitConfig holds rate limiting configuration for embedding requests.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size. Defaults to the ceiling of RequestsPerSecond.
	BurstSize int
}

// RateLimitedEmbedding wraps an EmbeddingService so every Embed and
// EmbedBatch call waits for a token bucket. Concurrent ingests share the budget.
type RateLimitedEmbedding struct {
	driven.EmbeddingService
	limiter *rate.Limiter
}

// NewRateLimitedEmbedding wraps svc with a token bucket limiter.
func NewRateLimitedEmbedding(svc driven.EmbeddingService, cfg RateLimitConfig) *RateLimitedEmbedding {
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = max(1, int(math.Ceil(cfg.RequestsPerSecond)))
	}
	return &RateLimitedEmbedding{
		EmbeddingService: svc,
		limiter:          rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

// Embed waits for the limiter, then embeds text.
func (r *RateLimitedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.EmbeddingService.Embed(ctx, text)
}

// EmbedBatch waits for the limiter, then embeds texts in one request.
func (r *RateLimitedEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.EmbeddingService.EmbedBatch(ctx, texts)
}
