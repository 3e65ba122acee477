package vector

import "errors"

var (
	// ErrEmptyStore is returned when querying a store that was never seeded.
	ErrEmptyStore = errors.New("vector store is empty: run ingestion first")

	// ErrDimensionMismatch is returned when a record's embedding does not
	// match the store's configured dimensions.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrConnection is returned when the vector store connection fails.
	ErrConnection = errors.New("vector store connection failed")
)
