package driven

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// TextExtractor turns the raw bytes of an uploaded document into page text.
type TextExtractor interface {
	// Extract returns one Page per page with non-whitespace text, in document order.
	// Unparseable input fails with domain.ErrExtraction.
	// A document with no text yields an empty slice and no error.
	Extract(ctx context.Context, data []byte) ([]domain.Page, error)
}
