// Package pgvectorstore provides a PostgreSQL vector driver using pgvector.
//
// Query orders by cosine distance via the <=> operator, so the score is
// cosine similarity (1 - distance).
package pgvectorstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/mendellabsco/mendel/pkg/vector"
)

// Driver implements vector.Driver on top of PostgreSQL with the pgvector
// extension.
type Driver struct {
	pool       *pgxpool.Pool
	dimensions uint
	logger     *slog.Logger
}

// Config holds configuration for the pgvector driver.
type Config struct {
	// DSN is the PostgreSQL connection string.
	DSN string

	// Dimensions is the number of dimensions for the embedding vectors.
	Dimensions uint
}

// NewDriver creates a new pgvector driver and ensures the schema exists.
func NewDriver(ctx context.Context, c Config, logger *slog.Logger) (*Driver, error) {
	if c.DSN == "" {
		return nil, fmt.Errorf("connection string is required")
	}

	if c.Dimensions == 0 {
		return nil, fmt.Errorf("pgvector embedding dimensions cannot be 0, must be configured")
	}

	pool, err := pgxpool.New(ctx, c.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: creating connection pool: %v", vector.ErrConnection, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: pinging database: %v", vector.ErrConnection, err)
	}

	d := &Driver{
		pool:       pool,
		dimensions: c.Dimensions,
		logger:     logger,
	}

	if err := d.createTables(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("pgvector vector driver initialized", "dimensions", c.Dimensions)

	return d, nil
}

func (d *Driver) createTables(ctx context.Context) error {
	query := fmt.Sprintf(`
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS chunks (
		id BIGSERIAL PRIMARY KEY,
		chunk_id TEXT NOT NULL UNIQUE,
		document_id TEXT NOT NULL,
		ordinal INT NOT NULL,
		content TEXT NOT NULL,
		embedding vector(%d) NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_embedding ON chunks
		USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);

	CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON chunks(document_id);
	`, d.dimensions)

	if _, err := d.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("%w: creating tables: %v", vector.ErrConnection, err)
	}

	return nil
}

// Add stores records with their embeddings in a single transaction.
func (d *Driver) Add(ctx context.Context, records []vector.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := d.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rec := range records {
		if uint(len(rec.Embedding)) != d.dimensions {
			return fmt.Errorf("%w: record %s has %d dimensions, store expects %d",
				vector.ErrDimensionMismatch, rec.ID, len(rec.Embedding), d.dimensions)
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO chunks (chunk_id, document_id, ordinal, content, embedding)
			VALUES ($1, $2, $3, $4, $5)
		`, rec.ID, rec.DocumentID, rec.Ordinal, rec.Text, pgvector.NewVector(rec.Embedding))
		if err != nil {
			return fmt.Errorf("inserting chunk %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	d.logger.Debug("added records to pgvector", "count", len(records))

	return nil
}

// Query finds the topK most similar records to the given embedding.
// Equal distances keep insertion order via the serial id sort.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 5
	}

	rows, err := d.pool.Query(ctx, `
		SELECT chunk_id, document_id, ordinal, content,
		       1 - (embedding <=> $1) AS score
		FROM chunks
		ORDER BY embedding <=> $1, id
		LIMIT $2
	`, pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var results []vector.QueryResult
	for rows.Next() {
		var r vector.QueryResult
		var score float64
		if err := rows.Scan(&r.ID, &r.DocumentID, &r.Ordinal, &r.Text, &score); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}
		r.Score = float32(score)
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	d.logger.Debug("queried pgvector", "results", len(results))

	return results, nil
}

// Count returns the number of stored records.
func (d *Driver) Count(ctx context.Context) (int, error) {
	var count int
	if err := d.pool.QueryRow(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// Reset removes all stored records and restarts the id sequence.
func (d *Driver) Reset(ctx context.Context) error {
	if _, err := d.pool.Exec(ctx, `TRUNCATE chunks RESTART IDENTITY`); err != nil {
		return fmt.Errorf("truncating chunks: %w", err)
	}

	d.logger.Debug("reset pgvector store")

	return nil
}

// Close closes the connection pool.
func (d *Driver) Close() error {
	d.pool.Close()
	return nil
}

var _ vector.Driver = (*Driver)(nil)
