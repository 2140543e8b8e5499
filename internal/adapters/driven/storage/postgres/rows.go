package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

type manifestRow struct {
	ID             string    `db:"id"`
	Source         string    `db:"source"`
	EmbeddingModel string    `db:"embedding_model"`
	Dimensions     int       `db:"dimensions"`
	Pages          int       `db:"pages"`
	Chunks         int       `db:"chunks"`
	CreatedAt      time.Time `db:"created_at"`
}

func (r manifestRow) toManifest() domain.StoreManifest {
	return domain.StoreManifest{
		ID:             r.ID,
		Source:         r.Source,
		EmbeddingModel: r.EmbeddingModel,
		Dimensions:     r.Dimensions,
		Pages:          r.Pages,
		Chunks:         r.Chunks,
		CreatedAt:      r.CreatedAt.UTC(),
	}
}

type chunkRow struct {
	ID          string          `db:"id"`
	Position    int             `db:"position"`
	PageNumber  int             `db:"page_number"`
	SourceLabel string          `db:"source_label"`
	Content     string          `db:"content"`
	Metadata    []byte          `db:"metadata"`
	Embedding   pgvector.Vector `db:"embedding"`
	Similarity  float64         `db:"similarity"`
}

func (r chunkRow) toChunk() (domain.Chunk, error) {
	meta := make(map[string]any)
	if len(r.Metadata) > 0 {
		if err := json.Unmarshal(r.Metadata, &meta); err != nil {
			return domain.Chunk{}, fmt.Errorf("unmarshalling metadata for chunk %s: %w", r.ID, err)
		}
	}
	meta[domain.MetaPageNumber] = r.PageNumber
	if r.SourceLabel != "" {
		meta[domain.MetaSourceLabel] = r.SourceLabel
	}

	return domain.Chunk{
		ID:        r.ID,
		Content:   r.Content,
		Position:  r.Position,
		Embedding: r.Embedding.Slice(),
		Metadata:  meta,
	}, nil
}

func sourceLabel(c domain.Chunk) string {
	if s, ok := c.Metadata[domain.MetaSourceLabel].(string); ok {
		return s
	}
	return ""
}
