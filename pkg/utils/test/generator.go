package testutils

import (
	"context"

	"github.com/mendellabsco/mendel/pkg/llm"
)

// MockGenerator is a test generator that returns a canned reply and records
// the conversations it was asked to complete.
type MockGenerator struct {
	Reply string

	// Err, when set, is returned by Generate.
	Err error

	// Conversations records each Generate call's turns.
	Conversations [][]llm.Turn
}

func NewMockGenerator(reply string) *MockGenerator {
	return &MockGenerator{Reply: reply}
}

func (m *MockGenerator) Generate(_ context.Context, turns []llm.Turn) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.Conversations = append(m.Conversations, turns)
	return m.Reply, nil
}

func (m *MockGenerator) Close() error {
	return nil
}

var _ llm.Generator = (*MockGenerator)(nil)
