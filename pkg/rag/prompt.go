package rag

import (
	"fmt"
	"strings"

	"github.com/mendellabsco/mendel/pkg/vector"
)

// DefaultMaxContextChars caps the assembled user prompt length in runes.
const DefaultMaxContextChars = 12000

// SystemPrompt frames the model as a genetics tutor working from textbook
// excerpts.
const SystemPrompt = `You are a knowledgeable genetics tutor helping students understand genetics concepts.

You answer using excerpts retrieved from genetics textbooks.

When answering questions:
1. Use the provided context from the textbooks to give accurate, educational responses
2. Explain concepts clearly, suitable for undergraduate students
3. If the context doesn't contain relevant information, say so honestly
4. Use examples and analogies when helpful
5. Cite which textbook source the information comes from when possible

Be encouraging and supportive. You are helping students learn.`

const contextSeparator = "\n\n---\n\n"

const promptTemplate = `Based on the following textbook content, please answer the student's question.

TEXTBOOK CONTENT:
%s

STUDENT'S QUESTION:
%s

Please provide a clear, educational response based on the textbook content above.`

// BuildPrompt assembles the user prompt from retrieved chunks and the
// question. Results are expected best-first; when the assembled prompt would
// exceed maxChars runes, the lowest-similarity chunks are dropped until it
// fits. The question itself is always included verbatim. It returns the
// prompt and the document IDs of the chunks that made it in, in result
// order without duplicates.
func BuildPrompt(question string, results []vector.QueryResult, maxChars int) (string, []string) {
	if maxChars <= 0 {
		maxChars = DefaultMaxContextChars
	}

	included := results
	prompt := assemble(question, included)
	for len([]rune(prompt)) > maxChars && len(included) > 0 {
		included = included[:len(included)-1]
		prompt = assemble(question, included)
	}

	var sources []string
	seen := make(map[string]bool)
	for _, r := range included {
		if !seen[r.DocumentID] {
			seen[r.DocumentID] = true
			sources = append(sources, r.DocumentID)
		}
	}

	return prompt, sources
}

func assemble(question string, results []vector.QueryResult) string {
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf("[Source: %s]\n%s", r.DocumentID, r.Text))
	}

	return fmt.Sprintf(promptTemplate, strings.Join(blocks, contextSeparator), question)
}
