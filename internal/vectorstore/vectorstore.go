package vectorstore

import (
	"context"
	"encoding/json"
)

// VectorStore provides nearest-neighbour search over indexed document sections.
// Search results are returned as the raw metadata payloads that were stored,
// unvalidated; callers are expected to normalize them.
type VectorStore interface {
	// Search returns at most k payloads ordered nearest first.
	Search(ctx context.Context, embedding []float64, k int) ([]json.RawMessage, error)

	// Upsert stores or replaces entries by ID.
	Upsert(ctx context.Context, entries []Entry) error

	// DeleteDocument removes every entry that belongs to documentName.
	DeleteDocument(ctx context.Context, documentName string) error

	// ReplaceDocuments makes entries the only stored entries of the named
	// documents. When it fails the previous entries are left in place.
	ReplaceDocuments(ctx context.Context, documentNames []string, entries []Entry) error

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int64, error)
}

// Entry is one indexed section ready for storage.
type Entry struct {
	ID           string          // Stable identifier, "<document>_<index>"
	DocumentName string          // Used for per-document deletion
	Document     string          // Text that was embedded
	Embedding    []float64       // Vector produced with the document purpose
	Metadata     json.RawMessage // Payload returned verbatim by Search
}
