package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"testing"

	_ "github.com/lib/pq"
)

func TestFormatVector(t *testing.T) {
	tests := []struct {
		in   []float64
		want string
	}{
		{nil, "[]"},
		{[]float64{0.1, 0.2, 0.3}, "[0.1,0.2,0.3]"},
		{[]float64{-1, 1e-7}, "[-1,0.0000001]"},
	}
	for _, tt := range tests {
		if got := formatVector(tt.in); got != tt.want {
			t.Errorf("formatVector(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestPgVectorIntegration exercises the adapter against a real database.
// Run with: go test -v ./internal/vectorstore -run TestPgVectorIntegration
//
// Prerequisites:
// - PostgreSQL running with pgvector extension
// - DATABASE_URL environment variable set
// - insightcast migrate up has been run
func TestPgVectorIntegration(t *testing.T) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	store := NewPgVectorAdapter(db)

	vec := make([]float64, 768)
	vec[0] = 1
	doc := "integration-test.pdf"
	t.Cleanup(func() { _ = store.DeleteDocument(ctx, doc) })

	err = store.Upsert(ctx, []Entry{{
		ID:           "integration-test_0",
		DocumentName: doc,
		Document:     "Content: hello",
		Embedding:    vec,
		Metadata:     json.RawMessage(`{"original_content":"hello","document_name":"integration-test.pdf"}`),
	}})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.Search(ctx, vec, 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}

	if err := store.DeleteDocument(ctx, doc); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
}
