package sqlite

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// chunkRow is the database shape of a chunk.
type chunkRow struct {
	ID          string `db:"id"`
	Position    int    `db:"position"`
	PageNumber  int    `db:"page_number"`
	SourceLabel string `db:"source_label"`
	Content     string `db:"content"`
	Embedding   []byte `db:"embedding"`
	Metadata    string `db:"metadata"`
}

func (r chunkRow) toChunk() (domain.Chunk, error) {
	meta := make(map[string]any)
	if r.Metadata != "" {
		if err := json.Unmarshal([]byte(r.Metadata), &meta); err != nil {
			return domain.Chunk{}, fmt.Errorf("unmarshalling metadata for chunk %s: %w", r.ID, err)
		}
	}
	// JSON numbers decode as float64; the column is authoritative.
	meta[domain.MetaPageNumber] = r.PageNumber
	if r.SourceLabel != "" {
		meta[domain.MetaSourceLabel] = r.SourceLabel
	}

	return domain.Chunk{
		ID:        r.ID,
		Content:   r.Content,
		Position:  r.Position,
		Embedding: bytesToFloat32Slice(r.Embedding),
		Metadata:  meta,
	}, nil
}

func sourceLabel(c domain.Chunk) string {
	if s, ok := c.Metadata[domain.MetaSourceLabel].(string); ok {
		return s
	}
	return ""
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
