package corpus

import (
	"errors"
	"fmt"
)

// ErrInvalidChunking indicates chunk size and overlap settings that cannot
// produce forward progress through a document.
var ErrInvalidChunking = errors.New("invalid chunking configuration")

// Split cuts text into rune windows of at most size runes, where consecutive
// windows share overlap runes. The final window may be shorter; it always
// ends at the end of the text. Whitespace-only text still chunks, an empty
// string yields nothing.
func Split(text string, size, overlap int) ([]string, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", ErrInvalidChunking, size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap %d cannot be negative", ErrInvalidChunking, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", ErrInvalidChunking, overlap, size)
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	step := size - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}

	return chunks, nil
}

// SplitDocument chunks a document and tags each chunk with the document ID
// and its ordinal.
func SplitDocument(doc Document, size, overlap int) ([]Chunk, error) {
	texts, err := Split(doc.Text, size, overlap)
	if err != nil {
		return nil, err
	}

	chunks := make([]Chunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, Chunk{
			DocumentID: doc.ID,
			Ordinal:    i,
			Text:       text,
		})
	}

	return chunks, nil
}
