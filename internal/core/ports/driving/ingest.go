package driving

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// IngestService turns uploaded documents into persisted stores.
type IngestService interface {
	// Ingest processes every upload independently. Items in the result follow
	// input order. Returns domain.ErrIngestFailed only when no upload succeeded.
	Ingest(ctx context.Context, uploads []domain.Upload) (domain.IngestResult, error)
}
