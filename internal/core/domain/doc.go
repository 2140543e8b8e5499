// Package domain defines the core business entities for docchat.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Page: Text extracted from one page of an uploaded document
//   - Chunk: A bounded, page-tagged segment of text, the unit of retrieval
//   - Store: A write-once collection of embedded chunks for one upload
//   - Turn: One prior exchange in a conversation
//   - RetrievalContext: Page-tagged passages assembled for the answer generator
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
