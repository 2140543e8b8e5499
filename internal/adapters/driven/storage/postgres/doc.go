// Package postgres persists document stores in PostgreSQL with the pgvector
// extension.
//
// All stores share two tables. A store row and its chunk rows are written in
// a single transaction, so a store becomes visible only once it is complete.
// Similarity search uses pgvector's cosine distance operator (<=>) scoped to
// one store.
//
// Queries are traced through go.nhat.io/otelsql.
package postgres
