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

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService runs uploads through extract, chunk, embed and persist.
type IngestService struct {
	extractor   driven.TextExtractor
	pipeline    driven.PostProcessorPipeline
	builder     *StoreBuilder
	registry    driven.StoreRegistry
	concurrency int
}

// NewIngestService creates a new ingest service.
// At most concurrency files are processed at once.
func NewIngestService(
	extractor driven.TextExtractor,
	pipeline driven.PostProcessorPipeline,
	builder *StoreBuilder,
	registry driven.StoreRegistry,
	concurrency int,
) *IngestService {
	if concurrency <= 0 {
		concurrency = domain.DefaultIngestConcurrency
	}
	return &IngestService{
		extractor:   extractor,
		pipeline:    pipeline,
		builder:     builder,
		registry:    registry,
		concurrency: concurrency,
	}
}

// Ingest processes every upload independently; one failing file never stops
// the others. Items and StoreIDs follow input order. When no upload succeeds
// the error joins domain.ErrIngestFailed with every per-file error.
func (s *IngestService) Ingest(ctx context.Context, uploads []domain.Upload) (domain.IngestResult, error) {
	logger.Section("Ingest")
	if len(uploads) == 0 {
		return domain.IngestResult{}, fmt.Errorf("%w: no files provided", domain.ErrValidation)
	}

	items := make([]domain.IngestItem, len(uploads))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, upload := range uploads {
		g.Go(func() error {
			items[i] = s.ingestOne(ctx, upload)
			return nil
		})
	}
	_ = g.Wait()

	result := domain.IngestResult{Items: items}
	var errs []error
	for _, item := range items {
		if item.Err != nil {
			logger.Warn("Ingest %s failed: %v", item.Filename, item.Err)
			errs = append(errs, item.Err)
			continue
		}
		result.StoreIDs = append(result.StoreIDs, item.StoreID)
		result.Count++
	}
	logger.Info("Ingested %d/%d files", result.Count, len(uploads))

	if result.Count == 0 {
		return result, errors.Join(append([]error{domain.ErrIngestFailed}, errs...)...)
	}
	return result, nil
}

// ingestOne runs the full pipeline for a single upload.
func (s *IngestService) ingestOne(ctx context.Context, upload domain.Upload) (item domain.IngestItem) {
	ctx, span := tracer.Start(ctx, "ingest.File")
	span.SetAttributes(attribute.String("docchat.filename", upload.Filename))
	defer func() { endSpan(span, item.Err) }()

	item.Filename = upload.Filename
	fail := func(err error) domain.IngestItem {
		item.Err = fmt.Errorf("%s: %w", upload.Filename, err)
		return item
	}

	pages, err := s.extractor.Extract(ctx, upload.Content)
	if err != nil {
		return fail(err)
	}
	if len(pages) == 0 {
		return fail(domain.ErrNoText)
	}
	item.Pages = len(pages)

	doc := &domain.Document{Filename: upload.Filename, Pages: pages}
	chunks, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return fail(fmt.Errorf("chunk: %w", err))
	}
	if len(chunks) == 0 {
		return fail(domain.ErrNoText)
	}

	store, err := s.builder.Build(ctx, doc, chunks)
	if err != nil {
		return fail(err)
	}

	id, err := s.registry.Persist(ctx, store)
	if err != nil {
		return fail(fmt.Errorf("persist: %w", err))
	}

	item.StoreID = id
	item.Chunks = len(store.Chunks)
	span.SetAttributes(attribute.String("docchat.store_id", id), attribute.Int("docchat.chunks", item.Chunks))
	logger.Debug("Ingested %s: %d pages, %d chunks, store %s", upload.Filename, item.Pages, item.Chunks, id)
	return item
}
