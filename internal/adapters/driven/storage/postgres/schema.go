package postgres

// schema is applied on every open; each statement is idempotent.
// The embedding column carries no fixed dimension because stores built with
// different models share the table.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS docchat_stores (
		id              TEXT PRIMARY KEY,
		source          TEXT NOT NULL,
		embedding_model TEXT NOT NULL,
		dimensions      INTEGER NOT NULL,
		pages           INTEGER NOT NULL,
		chunks          INTEGER NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS docchat_chunks (
		store_id     TEXT NOT NULL REFERENCES docchat_stores(id) ON DELETE CASCADE,
		id           TEXT NOT NULL,
		position     INTEGER NOT NULL,
		page_number  INTEGER NOT NULL,
		source_label TEXT NOT NULL DEFAULT '',
		content      TEXT NOT NULL,
		metadata     JSONB NOT NULL DEFAULT '{}',
		embedding    vector NOT NULL,
		PRIMARY KEY (store_id, id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_docchat_chunks_store ON docchat_chunks(store_id)`,
}
