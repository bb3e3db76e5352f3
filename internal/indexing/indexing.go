// Package indexing embeds parsed document sections and writes them to the
// vector store in the payload shape retrieval expects.
package indexing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"insightcast/internal/core"
	"insightcast/internal/vectorstore"
)

// DefaultBatchSize is the number of sections embedded per request.
const DefaultBatchSize = 100

// ParsedSection is one section produced by the document parser.
type ParsedSection struct {
	DocumentName string          `json:"document_name"`
	PageNumber   int             `json:"page_number"`
	SectionTitle string          `json:"section_title"`
	FullPath     []string        `json:"full_path"`
	Content      string          `json:"content"`
	BoundingBox  json.RawMessage `json:"bounding_box,omitempty"`
}

// LoadParsedSections reads a parser output file: a JSON array of sections.
func LoadParsedSections(path string) ([]ParsedSection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sections file: %w", err)
	}
	var sections []ParsedSection
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("failed to parse sections file %s: %w", path, err)
	}
	return sections, nil
}

// DocumentEmbedder embeds passages for storage.
type DocumentEmbedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error)
}

// Store is the write side of the vector store.
type Store interface {
	ReplaceDocuments(ctx context.Context, documentNames []string, entries []vectorstore.Entry) error
}

// Indexer writes documents into the vector store.
type Indexer struct {
	embedder  DocumentEmbedder
	store     Store
	batchSize int
	log       *slog.Logger
}

// NewIndexer creates an indexer.
func NewIndexer(embedder DocumentEmbedder, store Store, log *slog.Logger) *Indexer {
	if log == nil {
		log = slog.Default()
	}
	return &Indexer{
		embedder:  embedder,
		store:     store,
		batchSize: DefaultBatchSize,
		log:       log.With("component", "indexing"),
	}
}

// IndexDocument replaces everything stored under the document names its
// sections carry and returns how many sections were written. A section
// without a document name is stored under the base name of source. Entry IDs are "<base name of source>_<i>"
// where i is the section's position in the input. Sections without content
// are skipped.
func (ix *Indexer) IndexDocument(ctx context.Context, source string, sections []ParsedSection) (int, error) {
	start := time.Now()
	base := filepath.Base(source)

	var (
		entries  []vectorstore.Entry
		docNames []string
		seen     = make(map[string]bool)
	)
	for i, s := range sections {
		if strings.TrimSpace(s.Content) == "" {
			continue
		}
		docName := s.DocumentName
		if docName == "" {
			docName = base
		}
		if !seen[docName] {
			seen[docName] = true
			docNames = append(docNames, docName)
		}
		meta, err := metadataFor(s, docName)
		if err != nil {
			return 0, fmt.Errorf("section %d: %w", i, err)
		}
		entries = append(entries, vectorstore.Entry{
			ID:           fmt.Sprintf("%s_%d", base, i),
			DocumentName: docName,
			Document:     EmbeddingText(s),
			Metadata:     meta,
		})
	}
	if len(entries) == 0 {
		ix.log.Warn("No text content found to embed", "document", base)
		return 0, nil
	}

	for lo := 0; lo < len(entries); lo += ix.batchSize {
		hi := min(lo+ix.batchSize, len(entries))
		texts := make([]string, hi-lo)
		for i := range texts {
			texts[i] = entries[lo+i].Document
		}
		vectors, err := ix.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("failed to embed %s: %w", base, err)
		}
		if len(vectors) != len(texts) {
			return 0, fmt.Errorf("failed to embed %s: got %d vectors for %d sections", base, len(vectors), len(texts))
		}
		for i, v := range vectors {
			entries[lo+i].Embedding = v
		}
	}

	if err := ix.store.ReplaceDocuments(ctx, docNames, entries); err != nil {
		return 0, fmt.Errorf("failed to store %s: %w", base, err)
	}

	ix.log.Info("Indexed document",
		"document", base,
		"names", docNames,
		"sections", len(sections),
		"indexed", len(entries),
		"duration", time.Since(start))
	return len(entries), nil
}

// EmbeddingText is the text embedded for a section: its heading path
// followed by its content.
func EmbeddingText(s ParsedSection) string {
	return fmt.Sprintf("Section Path: %s\nContent: %s", strings.Join(s.FullPath, core.PathSeparator), s.Content)
}

type metadata struct {
	DocumentName    string `json:"document_name"`
	PageNumber      int    `json:"page_number"`
	SectionTitle    string `json:"section_title"`
	FullPath        string `json:"full_path"`
	OriginalContent string `json:"original_content"`
	BoundingBox     string `json:"bounding_box"`
}

func metadataFor(s ParsedSection, docName string) (json.RawMessage, error) {
	page := s.PageNumber
	if page < 0 {
		page = 0
	}
	b, err := json.Marshal(metadata{
		DocumentName:    docName,
		PageNumber:      page,
		SectionTitle:    s.SectionTitle,
		FullPath:        strings.Join(s.FullPath, core.PathSeparator),
		OriginalContent: s.Content,
		BoundingBox:     boundingBoxString(s.BoundingBox),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	return b, nil
}

// boundingBoxString stores the box as a JSON-encoded string, or "{}" when
// the parser gave none.
func boundingBoxString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "{}"
	}
	return buf.String()
}
