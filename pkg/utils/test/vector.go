package testutils

import (
	"context"
	"sort"

	"github.com/mendellabsco/mendel/pkg/vector"
)

// MockDriver is an in-memory test vector driver that scores by dot product.
type MockDriver struct {
	Records []vector.Record

	// AddErr, when set, is returned by Add.
	AddErr error

	// QueryErr, when set, is returned by Query.
	QueryErr error

	// Resets counts Reset calls.
	Resets int
}

func NewMockDriver() *MockDriver {
	return &MockDriver{}
}

func (m *MockDriver) Add(_ context.Context, records []vector.Record) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	m.Records = append(m.Records, records...)
	return nil
}

func (m *MockDriver) Query(_ context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}

	results := make([]vector.QueryResult, 0, len(m.Records))
	for _, rec := range m.Records {
		var score float32
		for i := 0; i < len(embedding) && i < len(rec.Embedding); i++ {
			score += embedding[i] * rec.Embedding[i]
		}
		results = append(results, vector.QueryResult{Record: rec, Score: score})
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (m *MockDriver) Count(_ context.Context) (int, error) {
	return len(m.Records), nil
}

func (m *MockDriver) Reset(_ context.Context) error {
	m.Records = nil
	m.Resets++
	return nil
}

func (m *MockDriver) Close() error {
	return nil
}

var _ vector.Driver = (*MockDriver)(nil)
