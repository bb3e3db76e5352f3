package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"insightcast/internal/llm"

	"github.com/lib/pq"
)

// undefinedTable is the SQLSTATE Postgres reports for a missing relation.
const undefinedTable = "42P01"

// PgVectorAdapter implements VectorStore using PostgreSQL with the pgvector
// extension. Distances are cosine (<=>), nearest first.
type PgVectorAdapter struct {
	db *sql.DB
}

var _ VectorStore = (*PgVectorAdapter)(nil)

// NewPgVectorAdapter creates a new pgvector-based vector store.
// The sections table is created by the persistence migrations.
func NewPgVectorAdapter(db *sql.DB) *PgVectorAdapter {
	return &PgVectorAdapter{db: db}
}

// Search returns the metadata of the k nearest sections.
func (p *PgVectorAdapter) Search(ctx context.Context, embedding []float64, k int) ([]json.RawMessage, error) {
	if k <= 0 {
		return nil, nil
	}

	query := `
		SELECT metadata
		FROM sections
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1::vector
		LIMIT $2
	`

	rows, err := p.db.QueryContext(ctx, query, formatVector(embedding), k)
	if err != nil {
		return nil, pgError("search", err)
	}
	defer rows.Close()

	var results []json.RawMessage
	for rows.Next() {
		var meta []byte
		if err := rows.Scan(&meta); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, json.RawMessage(meta))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return results, nil
}

// Upsert stores entries in a single transaction.
func (p *PgVectorAdapter) Upsert(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return pgError("upsert", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := upsertTx(ctx, tx, entries); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}
	return nil
}

// ReplaceDocuments deletes the named documents and inserts entries in one
// transaction.
func (p *PgVectorAdapter) ReplaceDocuments(ctx context.Context, documentNames []string, entries []Entry) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return pgError("replace", err)
	}
	defer func() { _ = tx.Rollback() }()

	if len(documentNames) > 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sections WHERE document_name = ANY($1)`, pq.Array(documentNames)); err != nil {
			return pgError("replace", err)
		}
	}
	if err := upsertTx(ctx, tx, entries); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit replace: %w", err)
	}
	return nil
}

func upsertTx(ctx context.Context, tx *sql.Tx, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sections (id, document_name, document, metadata, embedding, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, $5::vector, NOW())
		ON CONFLICT (id) DO UPDATE
		SET document_name = EXCLUDED.document_name,
		    document = EXCLUDED.document,
		    metadata = EXCLUDED.metadata,
		    embedding = EXCLUDED.embedding,
		    updated_at = NOW()
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range entries {
		meta := e.Metadata
		if len(meta) == 0 {
			meta = json.RawMessage("{}")
		}
		if _, err := stmt.ExecContext(ctx, e.ID, e.DocumentName, e.Document, string(meta), formatVector(e.Embedding)); err != nil {
			return fmt.Errorf("failed to store section %s: %w", e.ID, err)
		}
	}
	return nil
}

// DeleteDocument removes every section of one document.
func (p *PgVectorAdapter) DeleteDocument(ctx context.Context, documentName string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM sections WHERE document_name = $1`, documentName); err != nil {
		return pgError("delete", err)
	}
	return nil
}

// Count returns the number of stored sections.
func (p *PgVectorAdapter) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sections`).Scan(&n); err != nil {
		return 0, pgError("count", err)
	}
	return n, nil
}

func pgError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == undefinedTable {
		err = fmt.Errorf("%w (run 'insightcast migrate up' to create the sections table)", err)
	}
	return &llm.TransportError{Service: "vectorstore", Op: op, Err: err}
}

// formatVector converts []float64 to PostgreSQL vector format
// Example: [0.1, 0.2, 0.3] -> "[0.1,0.2,0.3]"
func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}

	var sb strings.Builder
	sb.WriteByte('[')
	for i, val := range embedding {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(val, 'f', -1, 64))
	}
	sb.WriteByte(']')
	return sb.String()
}
