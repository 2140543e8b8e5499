// Package sqlite persists document stores as self-contained directories on disk.
//
// Each store lives in its own directory under the registry root:
//
//	<root>/<store-id>/
//	    store.db       chunk text, page provenance and embeddings
//	    manifest.toml  source file, embedding model and dimensions
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, accessed through jmoiron/sqlx.
//
// # Publishing
//
// A store is written to a hidden staging directory (.tmp-<store-id>) and
// renamed into place once the database and manifest are complete, so readers
// never observe a partially written store. Staging directories left behind
// by a crash are removed when the registry is opened.
//
// # Schema
//
// The per-store schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
package sqlite
