package vectorstore

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSearchOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Upsert(ctx, []Entry{
		{ID: "a_0", DocumentName: "a.pdf", Embedding: []float64{1, 0}, Metadata: json.RawMessage(`{"original_content":"east"}`)},
		{ID: "a_1", DocumentName: "a.pdf", Embedding: []float64{0, 1}, Metadata: json.RawMessage(`{"original_content":"north"}`)},
		{ID: "b_0", DocumentName: "b.pdf", Embedding: []float64{1, 1}, Metadata: json.RawMessage(`"not an object"`)},
	}))

	got, err := store.Search(ctx, []float64{1, 0.1}, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.JSONEq(t, `{"original_content":"east"}`, string(got[0]))
	assert.JSONEq(t, `"not an object"`, string(got[1]))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestMemoryStoreUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Upsert(ctx, []Entry{{ID: "x", Embedding: []float64{1}, Metadata: json.RawMessage(`1`)}}))
	require.NoError(t, store.Upsert(ctx, []Entry{{ID: "x", Embedding: []float64{1}, Metadata: json.RawMessage(`2`)}}))

	got, err := store.Search(ctx, []float64{1}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2", string(got[0]))
}

func TestMemoryStoreDeleteDocument(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Upsert(ctx, []Entry{
		{ID: "a_0", DocumentName: "a.pdf", Embedding: []float64{1}},
		{ID: "b_0", DocumentName: "b.pdf", Embedding: []float64{1}},
		{ID: "a_1", DocumentName: "a.pdf", Embedding: []float64{1}},
	}))

	require.NoError(t, store.DeleteDocument(ctx, "a.pdf"))
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryStoreReplaceDocuments(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Upsert(ctx, []Entry{
		{ID: "v1_0", DocumentName: "a.pdf", Embedding: []float64{1}},
		{ID: "v1_1", DocumentName: "a.pdf", Embedding: []float64{1}},
		{ID: "b_0", DocumentName: "b.pdf", Embedding: []float64{1}},
	}))

	require.NoError(t, store.ReplaceDocuments(ctx, []string{"a.pdf"}, []Entry{
		{ID: "v2_0", DocumentName: "a.pdf", Embedding: []float64{1}, Metadata: json.RawMessage(`"new"`)},
	}))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	_, stale := store.entries["v1_0"]
	assert.False(t, stale)
	assert.Contains(t, store.entries, "v2_0")
	assert.Contains(t, store.entries, "b_0")
}

func TestMemoryStoreZeroK(t *testing.T) {
	store := NewMemoryStore()
	got, err := store.Search(context.Background(), []float64{1}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
