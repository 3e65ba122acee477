// Package vector provides interfaces and implementations for storing and
// retrieving embedded textbook chunks.
package vector

import "context"

// Record is a stored chunk with its embedding and source metadata.
type Record struct {
	// ID uniquely identifies the record, conventionally "<document id>:<ordinal>".
	ID string

	// DocumentID names the source document the chunk came from.
	DocumentID string

	// Ordinal is the chunk's position within its source document.
	Ordinal int

	// Text is the chunk's verbatim text.
	Text string

	// Embedding is the vector representation of the chunk text.
	Embedding []float32
}

// QueryResult is a retrieved record with its similarity score.
type QueryResult struct {
	Record

	// Score is the similarity to the query vector (higher = more similar).
	Score float32
}

// Driver handles storage and nearest-neighbor retrieval of embedded chunks.
//
// A store is written once by ingestion and read many times by queries.
// Records are append-only between Resets; ingestion calls Reset first so a
// rebuild always starts from an empty store.
type Driver interface {
	// Add stores records with their embeddings, preserving insertion order.
	Add(ctx context.Context, records []Record) error

	// Query finds the topK most similar records to the given embedding,
	// ordered by decreasing similarity. Ties are broken by insertion order.
	Query(ctx context.Context, embedding []float32, topK int) ([]QueryResult, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Reset removes all stored records so a fresh ingestion can rebuild
	// the store wholesale.
	Reset(ctx context.Context) error

	// Close releases any resources held by the driver.
	Close() error
}
