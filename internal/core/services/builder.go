package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/logger"
)

// StoreBuilder embeds chunks into an unpersisted store.
type StoreBuilder struct {
	embedder  driven.EmbeddingService
	batchSize int
	now       func() time.Time
}

// NewStoreBuilder creates a builder that embeds batchSize chunks per request.
func NewStoreBuilder(embedder driven.EmbeddingService, batchSize int) *StoreBuilder {
	if batchSize <= 0 {
		batchSize = domain.DefaultEmbeddingBatchSize
	}
	return &StoreBuilder{
		embedder:  embedder,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// Build embeds every chunk and returns the store with its manifest filled in.
// All vectors must share one dimensionality; any drift or provider failure
// fails the whole build with domain.ErrEmbeddingProvider.
func (b *StoreBuilder) Build(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) (*domain.Store, error) {
	if len(chunks) == 0 {
		return nil, domain.ErrNoText
	}
	if b.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	embedded := make([]domain.Chunk, len(chunks))
	copy(embedded, chunks)

	dims := 0
	for start := 0; start < len(embedded); start += b.batchSize {
		end := min(start+b.batchSize, len(embedded))

		texts := make([]string, 0, end-start)
		for _, c := range embedded[start:end] {
			texts = append(texts, c.Content)
		}

		vectors, err := b.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: batch %d-%d: %w", domain.ErrEmbeddingProvider, start, end, err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("%w: requested %d embeddings, got %d",
				domain.ErrEmbeddingProvider, len(texts), len(vectors))
		}

		for i, vec := range vectors {
			if dims == 0 {
				dims = len(vec)
			}
			if len(vec) == 0 || len(vec) != dims {
				return nil, fmt.Errorf("%w: chunk %d has %d dimensions, expected %d",
					domain.ErrEmbeddingProvider, start+i, len(vec), dims)
			}
			embedded[start+i].Embedding = vec
		}
		logger.Debug("Embedded chunks %d-%d of %d", start, end, len(embedded))
	}

	return &domain.Store{
		Manifest: domain.StoreManifest{
			Source:         doc.Filename,
			EmbeddingModel: b.embedder.ModelName(),
			Dimensions:     dims,
			Pages:          len(doc.Pages),
			Chunks:         len(embedded),
			CreatedAt:      b.now().UTC(),
		},
		Chunks: embedded,
	}, nil
}
