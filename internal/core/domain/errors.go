package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or backend type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Ingestion Errors.

	// ErrExtraction indicates the uploaded bytes could not be parsed as a document.
	// Fatal for that file only.
	ErrExtraction = errors.New("document extraction failed")

	// ErrNoText indicates a document parsed but no page contained extractable text.
	ErrNoText = errors.New("document contains no extractable text")

	// ErrIngestFailed indicates every file in an ingest request failed.
	ErrIngestFailed = errors.New("all files failed to ingest")

	// Store Errors.

	// ErrStoreNotFound indicates a store identifier does not resolve to a persisted store.
	// Callers should treat this as "re-upload required", not as a transient condition.
	ErrStoreNotFound = errors.New("store not found")

	// ErrDimensionMismatch indicates a vector does not match the store's dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbeddingMismatch indicates a store was built with a different embedding model
	// than the one configured for querying.
	ErrEmbeddingMismatch = errors.New("store was built with a different embedding model")

	// Provider Errors.

	// ErrEmbeddingProvider indicates the embedding service failed.
	ErrEmbeddingProvider = errors.New("embedding provider error")

	// ErrGenerationProvider indicates the answer generation service failed.
	ErrGenerationProvider = errors.New("generation provider error")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Neither ingestion nor retrieval can run without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Boundary Errors.

	// ErrValidation indicates a caller error detected before core logic runs,
	// such as an empty question or an empty store list.
	ErrValidation = errors.New("validation failed")
)
