// Package corpus loads plain text documents and splits them into
// overlapping chunks for embedding.
package corpus

import "fmt"

// Document is a single plain text source, identified by its file name.
type Document struct {
	// ID identifies the document in citations, typically the base file name.
	ID string

	// Path is the absolute path the document was loaded from.
	Path string

	// Text is the full document content.
	Text string
}

// Chunk is a contiguous run of runes from a document.
type Chunk struct {
	// DocumentID is the ID of the source document.
	DocumentID string

	// Ordinal is the chunk's zero-based position within the document.
	Ordinal int

	// Text is the chunk content.
	Text string
}

// ChunkID returns the stable identifier for a chunk, "<documentID>:<ordinal>".
func (c Chunk) ChunkID() string {
	return fmt.Sprintf("%s:%d", c.DocumentID, c.Ordinal)
}
