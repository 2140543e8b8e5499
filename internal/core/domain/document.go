package domain

import "time"

// Metadata keys attached to every chunk.
const (
	// MetaPageNumber is the 1-based page the chunk was cut from.
	MetaPageNumber = "page_number"

	// MetaSourceLabel identifies the page within its upload, e.g. "page_3".
	MetaSourceLabel = "source_label"

	// MetaSourceFile is the filename of the upload the chunk came from.
	MetaSourceFile = "source_file"
)

// Page is the text of one non-empty page of a source document.
// Pages are produced by the text extractor and are never persisted on their own.
type Page struct {
	// Number is the 1-based position of the page in the source document.
	// Numbers are not necessarily contiguous because blank pages are dropped.
	Number int

	// Text is the visible text extracted from the page.
	Text string
}

// Document is an uploaded file after text extraction.
type Document struct {
	// Filename is the name the file was uploaded under.
	Filename string

	// Pages holds the non-empty pages in document order.
	Pages []Page
}

// Chunk represents a searchable unit within a document.
// Chunks never span two pages.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the vector representation for semantic search.
	// Nil until the chunk has been through the embedding provider.
	Embedding []float32

	// Metadata contains page provenance (see the Meta* keys).
	Metadata map[string]any
}

// PageNumber returns the page the chunk was cut from, or 0 when unknown.
func (c Chunk) PageNumber() int {
	switch v := c.Metadata[MetaPageNumber].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// ScoredChunk is a chunk returned by similarity search.
type ScoredChunk struct {
	Chunk Chunk

	// Similarity is the cosine similarity between the chunk and the query.
	Similarity float64
}

// StoreManifest describes a persisted store.
type StoreManifest struct {
	// ID is the store identifier, safe to use as a path segment.
	ID string `toml:"id" json:"id"`

	// Source is the filename the store was built from.
	Source string `toml:"source" json:"source"`

	// EmbeddingModel is the model that produced every vector in the store.
	EmbeddingModel string `toml:"embedding_model" json:"embedding_model"`

	// Dimensions is the length shared by every vector in the store.
	Dimensions int `toml:"dimensions" json:"dimensions"`

	// Pages is the number of non-empty pages that were indexed.
	Pages int `toml:"pages" json:"pages"`

	// Chunks is the number of embedded chunks in the store.
	Chunks int `toml:"chunks" json:"chunks"`

	// CreatedAt is when the store was persisted.
	CreatedAt time.Time `toml:"created_at" json:"created_at"`
}

// Store is an embedded collection that has been built but not yet persisted.
type Store struct {
	Manifest StoreManifest
	Chunks   []Chunk
}

// Upload is one file submitted for ingestion.
type Upload struct {
	Filename string
	Content  []byte
}

// IngestItem reports the outcome for one uploaded file.
type IngestItem struct {
	Filename string
	StoreID  string
	Pages    int
	Chunks   int

	// Err is nil when the file was ingested.
	Err error
}

// IngestResult is the outcome of an ingest request.
// Items are in input order; StoreIDs lists successful stores in input order.
type IngestResult struct {
	Items    []IngestItem
	StoreIDs []string
	Count    int
}

// Failed returns the items that could not be ingested.
func (r IngestResult) Failed() []IngestItem {
	var failed []IngestItem
	for _, item := range r.Items {
		if item.Err != nil {
			failed = append(failed, item)
		}
	}
	return failed
}
