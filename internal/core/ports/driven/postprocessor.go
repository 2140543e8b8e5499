package driven

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// PostProcessor is one stage of chunking. The first stage receives nil
// chunks and cuts them from the document's pages; later stages rewrite the
// chunks they are handed. Every chunk must keep its page metadata.
type PostProcessor interface {
	Name() string
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline turns an extracted document into the chunks that
// get embedded.
type PostProcessorPipeline interface {
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
