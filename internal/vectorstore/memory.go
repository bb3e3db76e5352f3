package vectorstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"insightcast/internal/llm"
)

// MemoryStore is an in-process VectorStore using brute-force cosine
// similarity. Contents are lost when the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]Entry
}

var _ VectorStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (m *MemoryStore) Search(ctx context.Context, embedding []float64, k int) ([]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		meta  json.RawMessage
		score float64
	}
	hits := make([]scored, 0, len(m.order))
	for _, id := range m.order {
		e := m.entries[id]
		hits = append(hits, scored{meta: e.Metadata, score: llm.CosineSimilarity(embedding, e.Embedding)})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	if len(hits) > k {
		hits = hits[:k]
	}
	out := make([]json.RawMessage, len(hits))
	for i, h := range hits {
		out[i] = h.meta
	}
	return out, nil
}

func (m *MemoryStore) Upsert(ctx context.Context, entries []Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		if _, exists := m.entries[e.ID]; !exists {
			m.order = append(m.order, e.ID)
		}
		m.entries[e.ID] = e
	}
	return nil
}

func (m *MemoryStore) DeleteDocument(ctx context.Context, documentName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteLocked(map[string]bool{documentName: true})
	return nil
}

func (m *MemoryStore) ReplaceDocuments(ctx context.Context, documentNames []string, entries []Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	names := make(map[string]bool, len(documentNames))
	for _, n := range documentNames {
		names[n] = true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteLocked(names)
	for _, e := range entries {
		if _, exists := m.entries[e.ID]; !exists {
			m.order = append(m.order, e.ID)
		}
		m.entries[e.ID] = e
	}
	return nil
}

func (m *MemoryStore) deleteLocked(names map[string]bool) {
	kept := m.order[:0]
	for _, id := range m.order {
		if names[m.entries[id].DocumentName] {
			delete(m.entries, id)
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
}

func (m *MemoryStore) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.order)), nil
}
