package rag

import (
	"context"
	"log/slog"

	"github.com/mendellabsco/mendel/pkg/llm"
	"github.com/mendellabsco/mendel/pkg/vector"
)

// Answer is the tutor's reply to a question.
type Answer struct {
	// Text is the generated answer.
	Text string

	// Sources are the document IDs whose chunks informed the answer.
	Sources []string

	// Results are the retrieved chunks, best first.
	Results []vector.QueryResult
}

// Tutor answers genetics questions over the ingested corpus.
type Tutor struct {
	retriever       *Retriever
	generator       llm.Generator
	maxContextChars int
	logger          *slog.Logger
}

// NewTutor creates a Tutor. maxContextChars defaults to
// DefaultMaxContextChars when zero or negative.
func NewTutor(retriever *Retriever, generator llm.Generator, maxContextChars int, logger *slog.Logger) *Tutor {
	if maxContextChars <= 0 {
		maxContextChars = DefaultMaxContextChars
	}
	return &Tutor{
		retriever:       retriever,
		generator:       generator,
		maxContextChars: maxContextChars,
		logger:          logger,
	}
}

// Ask retrieves context for the question and generates an answer. History
// carries earlier turns of the conversation and may be nil for one-shot
// questions; retrieval always uses only the current question.
func (t *Tutor) Ask(ctx context.Context, question string, history []llm.Turn) (*Answer, error) {
	results, err := t.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	prompt, sources := BuildPrompt(question, results, t.maxContextChars)

	turns := make([]llm.Turn, 0, len(history)+2)
	turns = append(turns, llm.Turn{Role: llm.RoleSystem, Content: SystemPrompt})
	turns = append(turns, history...)
	turns = append(turns, llm.Turn{Role: llm.RoleUser, Content: prompt})

	text, err := t.generator.Generate(ctx, turns)
	if err != nil {
		return nil, err
	}

	t.logger.Debug("answered question",
		"chunks", len(results),
		"sources", len(sources),
		"answer_chars", len(text),
	)

	return &Answer{
		Text:    text,
		Sources: sources,
		Results: results,
	}, nil
}
