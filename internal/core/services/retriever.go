package services

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.RetrievalService = (*Retriever)(nil)

// Retriever embeds a question and searches a set of stores for context.
type Retriever struct {
	registry driven.StoreRegistry
	embedder driven.EmbeddingService
	settings domain.RetrievalSettings
}

// NewRetriever creates a new retriever.
// Zero values in settings fall back to the defaults (5 for multi-turn, 10 otherwise).
func NewRetriever(
	registry driven.StoreRegistry,
	embedder driven.EmbeddingService,
	settings domain.RetrievalSettings,
) *Retriever {
	if settings.MultiTurnK <= 0 {
		settings.MultiTurnK = domain.DefaultMultiTurnK
	}
	if settings.SingleShotK <= 0 {
		settings.SingleShotK = domain.DefaultSingleShotK
	}
	return &Retriever{
		registry: registry,
		embedder: embedder,
		settings: settings,
	}
}

// storeResult is the outcome of searching one store.
type storeResult struct {
	hits []domain.ScoredChunk
	err  error
}

// Retrieve embeds the question once and searches every store concurrently.
// Passages are assembled per store in caller order, each store's passages in
// descending similarity. Stores that fail are skipped and counted in the
// diagnostics; only a failure to embed the question is returned as an error.
func (r *Retriever) Retrieve(
	ctx context.Context, question string, storeIDs []string, mode domain.Mode,
) (result domain.RetrievalContext, err error) {
	ctx, span := tracer.Start(ctx, "retriever.Retrieve")
	defer func() { endSpan(span, err) }()

	logger.Section("Retrieval")
	k := r.settings.K(mode)
	logger.Debug("Mode: %s, k per store: %d, stores: %d", mode, k, len(storeIDs))
	span.SetAttributes(
		attribute.String("docchat.mode", mode.String()),
		attribute.Int("docchat.k", k),
		attribute.Int("docchat.stores", len(storeIDs)),
	)

	result.Diagnostics.Requested = len(storeIDs)
	if len(storeIDs) == 0 {
		return result, nil
	}
	if r.embedder == nil {
		return result, domain.ErrEmbeddingUnavailable
	}

	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return result, fmt.Errorf("%w: embed question: %w", domain.ErrEmbeddingProvider, err)
	}
	logger.Debug("Question embedded: %d dimensions", len(vector))

	results := make([]storeResult, len(storeIDs))
	var g errgroup.Group
	for i, id := range storeIDs {
		g.Go(func() error {
			hits, err := r.searchStore(ctx, id, vector, k)
			results[i] = storeResult{hits: hits, err: err}
			return nil
		})
	}
	_ = g.Wait()

	for i, id := range storeIDs {
		res := results[i]
		if res.err != nil {
			logger.Warn("Skipping store %s: %v", id, res.err)
			result.Diagnostics.Failed++
			result.Diagnostics.FailedIDs = append(result.Diagnostics.FailedIDs, id)
			continue
		}
		result.Diagnostics.Searched++
		for _, hit := range res.hits {
			result.Passages = append(result.Passages, domain.Passage{
				StoreID:    id,
				Page:       hit.Chunk.PageNumber(),
				Content:    hit.Chunk.Content,
				Similarity: hit.Similarity,
			})
		}
		logger.Debug("Store %s: %d passages", id, len(res.hits))
	}

	span.SetAttributes(
		attribute.Int("docchat.passages", len(result.Passages)),
		attribute.Int("docchat.failed_stores", result.Diagnostics.Failed),
	)
	logger.Info("Retrieved %d passages from %d/%d stores",
		len(result.Passages), result.Diagnostics.Searched, result.Diagnostics.Requested)

	return result, nil
}

// searchStore resolves one store and runs the similarity search against it.
func (r *Retriever) searchStore(ctx context.Context, id string, vector []float32, k int) ([]domain.ScoredChunk, error) {
	store, err := r.registry.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	manifest := store.Manifest()
	if manifest.EmbeddingModel != "" && manifest.EmbeddingModel != r.embedder.ModelName() {
		return nil, fmt.Errorf("%w: store uses %q, configured model is %q",
			domain.ErrEmbeddingMismatch, manifest.EmbeddingModel, r.embedder.ModelName())
	}

	hits, err := store.Search(ctx, vector, k)
	if err != nil {
		if errors.Is(err, domain.ErrDimensionMismatch) {
			return nil, err
		}
		return nil, fmt.Errorf("search: %w", err)
	}
	return hits, nil
}
