// Package chromem provides an embedded chromem-go vector driver.
//
// chromem-go keeps the whole index in memory and optionally persists it to a
// directory, which makes it a good fit for small corpora and tests.
package chromem

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/mendellabsco/mendel/pkg/vector"
)

// Driver implements vector.Driver on top of chromem-go.
type Driver struct {
	db         *chromemgo.DB
	collection *chromemgo.Collection
	name       string
	dimensions uint
	seq        int
	logger     *slog.Logger
}

// Config holds configuration for the chromem driver.
type Config struct {
	// Path is the directory chromem persists to. Empty means in-memory only.
	Path string

	// Collection is the name of the chromem collection.
	Collection string

	// Dimensions is the number of dimensions for the embedding vectors.
	Dimensions uint
}

// NewDriver creates a new chromem-go vector driver.
func NewDriver(c Config, logger *slog.Logger) (*Driver, error) {
	if c.Collection == "" {
		return nil, fmt.Errorf("collection name is required")
	}

	if c.Dimensions == 0 {
		return nil, fmt.Errorf("chromem embedding dimensions cannot be 0, must be configured")
	}

	var db *chromemgo.DB
	var err error
	if c.Path == "" {
		db = chromemgo.NewDB()
	} else {
		db, err = chromemgo.NewPersistentDB(c.Path, false)
		if err != nil {
			return nil, fmt.Errorf("%w: opening chromem database: %v", vector.ErrConnection, err)
		}
	}

	collection, err := db.GetOrCreateCollection(c.Collection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating collection: %v", vector.ErrConnection, err)
	}

	logger.Info("chromem vector driver initialized",
		"path", c.Path,
		"collection", c.Collection,
		"dimensions", c.Dimensions,
	)

	return &Driver{
		db:         db,
		collection: collection,
		name:       c.Collection,
		dimensions: c.Dimensions,
		seq:        collection.Count(),
		logger:     logger,
	}, nil
}

// Add stores records with their embeddings.
func (d *Driver) Add(ctx context.Context, records []vector.Record) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]chromemgo.Document, 0, len(records))
	for _, rec := range records {
		if uint(len(rec.Embedding)) != d.dimensions {
			return fmt.Errorf("%w: record %s has %d dimensions, store expects %d",
				vector.ErrDimensionMismatch, rec.ID, len(rec.Embedding), d.dimensions)
		}

		docs = append(docs, chromemgo.Document{
			ID: rec.ID,
			Metadata: map[string]string{
				"document_id": rec.DocumentID,
				"ordinal":     strconv.Itoa(rec.Ordinal),
				// chromem does not order equal-similarity results, so the
				// insertion sequence is recorded for a stable tie-break.
				"seq": strconv.Itoa(d.seq),
			},
			Embedding: rec.Embedding,
			Content:   rec.Text,
		})
		d.seq++
	}

	// Embeddings are supplied, so no embedding func runs; a single worker
	// keeps document validation errors deterministic.
	if err := d.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("adding documents: %w", err)
	}

	d.logger.Debug("added records to chromem", "count", len(records))

	return nil
}

// Query finds the topK most similar records to the given embedding.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 5
	}

	// chromem errors when nResults exceeds the collection size.
	if count := d.collection.Count(); topK > count {
		topK = count
	}
	if topK == 0 {
		return nil, nil
	}

	found, err := d.collection.QueryEmbedding(ctx, embedding, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	results := make([]vector.QueryResult, 0, len(found))
	for _, res := range found {
		ordinal, err := strconv.Atoi(res.Metadata["ordinal"])
		if err != nil {
			return nil, fmt.Errorf("parsing ordinal for %s: %w", res.ID, err)
		}

		results = append(results, vector.QueryResult{
			Record: vector.Record{
				ID:         res.ID,
				DocumentID: res.Metadata["document_id"],
				Ordinal:    ordinal,
				Text:       res.Content,
				Embedding:  res.Embedding,
			},
			Score: res.Similarity,
		})
	}

	sortStable(results, found)

	d.logger.Debug("queried chromem", "results", len(results))

	return results, nil
}

// sortStable reorders equal-score neighbors by their insertion sequence.
// chromem already returns results in descending similarity order.
func sortStable(results []vector.QueryResult, found []chromemgo.Result) {
	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && results[j-1].Score == results[j].Score; j-- {
			prev, _ := strconv.Atoi(found[j-1].Metadata["seq"])
			cur, _ := strconv.Atoi(found[j].Metadata["seq"])
			if prev <= cur {
				break
			}
			results[j-1], results[j] = results[j], results[j-1]
			found[j-1], found[j] = found[j], found[j-1]
		}
	}
}

// Count returns the number of stored records.
func (d *Driver) Count(ctx context.Context) (int, error) {
	return d.collection.Count(), nil
}

// Reset removes all stored records by recreating the collection.
func (d *Driver) Reset(ctx context.Context) error {
	if err := d.db.DeleteCollection(d.name); err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}

	collection, err := d.db.GetOrCreateCollection(d.name, nil, nil)
	if err != nil {
		return fmt.Errorf("recreating collection: %w", err)
	}

	d.collection = collection
	d.seq = 0

	d.logger.Debug("reset chromem store")

	return nil
}

// Close releases resources held by the driver. chromem has no connections
// to tear down, so this is a no-op.
func (d *Driver) Close() error {
	return nil
}

var _ vector.Driver = (*Driver)(nil)
