package models

import "context"

// EmbeddingFilter narrows an embedding query. A zero value matches all
// embeddings for the content identifier.
type EmbeddingFilter struct {
	EmbeddingType EmbeddingType
}

// EmbeddingStore is the append-only store of embedding records.
type EmbeddingStore interface {
	// PutEmbeddings persists a batch of records. Writes are idempotent:
	// records are keyed by their deterministic UUID and a re-run of the
	// same enrichment replaces rather than accumulates.
	PutEmbeddings(ctx context.Context, records []EmbeddingRecord) error
	// GetEmbeddings retrieves all records for a content identifier,
	// optionally filtered by embedding type, in stable insertion order.
	// A missing content identifier yields an empty slice, not an error.
	GetEmbeddings(
		ctx context.Context,
		contentID string,
		filter EmbeddingFilter,
	) ([]EmbeddingRecord, error)
	// OnStart is called when the application starts. This is a good place
	// to create tables or validate connectivity.
	OnStart(ctx context.Context) error
	// Close is called when the application is shutting down.
	Close() error
}
