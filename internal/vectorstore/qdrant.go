package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"insightcast/internal/llm"

	"github.com/google/uuid"
)

// QdrantConfig configures the Qdrant REST client.
type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// QdrantStore is a minimal REST client to Qdrant using cosine distance.
// Each point's payload carries the document name (for deletion) and the
// stored metadata under "metadata".
type QdrantStore struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

var _ VectorStore = (*QdrantStore)(nil)

var errNotFound = errors.New("not found")

// NewQdrantStore creates a client. Call EnsureCollection before first use.
func NewQdrantStore(cfg QdrantConfig) *QdrantStore {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collection := cfg.Collection
	if collection == "" {
		collection = "document_insights"
	}
	return &QdrantStore{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// EnsureCollection creates the collection with the given dimension if it is missing.
func (s *QdrantStore) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	err := s.do(ctx, http.MethodGet, s.collectionURL(""), nil, nil)
	if err == nil {
		return nil
	}
	if !errors.Is(err, errNotFound) {
		return &llm.TransportError{Service: "vectorstore", Op: "init", Err: err}
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	if err := s.do(ctx, http.MethodPut, s.collectionURL(""), body, nil); err != nil {
		return &llm.TransportError{Service: "vectorstore", Op: "init", Err: err}
	}
	return nil
}

func (s *QdrantStore) Search(ctx context.Context, embedding []float64, k int) ([]json.RawMessage, error) {
	if k <= 0 {
		return nil, nil
	}
	req := map[string]any{
		"vector":       embedding,
		"limit":        k,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64 `json:"score"`
			Payload struct {
				Metadata json.RawMessage `json:"metadata"`
			} `json:"payload"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodPost, s.collectionURL("/points/search"), req, &resp); err != nil {
		return nil, &llm.TransportError{Service: "vectorstore", Op: "search", Err: err}
	}

	results := make([]json.RawMessage, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, r.Payload.Metadata)
	}
	return results, nil
}

func (s *QdrantStore) Upsert(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	points := make([]map[string]any, len(entries))
	for i, e := range entries {
		meta := e.Metadata
		if len(meta) == 0 {
			meta = json.RawMessage("{}")
		}
		points[i] = map[string]any{
			"id":     pointID(e.ID),
			"vector": e.Embedding,
			"payload": map[string]any{
				"entry_id":      e.ID,
				"document_name": e.DocumentName,
				"document":      e.Document,
				"metadata":      meta,
			},
		}
	}
	body := map[string]any{"points": points}
	if err := s.do(ctx, http.MethodPut, s.collectionURL("/points?wait=true"), body, nil); err != nil {
		return &llm.TransportError{Service: "vectorstore", Op: "upsert", Err: err}
	}
	return nil
}

func (s *QdrantStore) DeleteDocument(ctx context.Context, documentName string) error {
	body := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{{
				"key":   "document_name",
				"match": map[string]any{"value": documentName},
			}},
		},
	}
	if err := s.do(ctx, http.MethodPost, s.collectionURL("/points/delete?wait=true"), body, nil); err != nil {
		return &llm.TransportError{Service: "vectorstore", Op: "delete", Err: err}
	}
	return nil
}

// ReplaceDocuments upserts entries first and then deletes the points of the
// named documents that were not just written, so a failed upsert leaves the
// previous points searchable.
func (s *QdrantStore) ReplaceDocuments(ctx context.Context, documentNames []string, entries []Entry) error {
	if err := s.Upsert(ctx, entries); err != nil {
		return err
	}
	if len(documentNames) == 0 {
		return nil
	}
	keep := make([]string, len(entries))
	for i, e := range entries {
		keep[i] = pointID(e.ID)
	}
	filter := map[string]any{
		"must": []map[string]any{{
			"key":   "document_name",
			"match": map[string]any{"any": documentNames},
		}},
	}
	if len(keep) > 0 {
		filter["must_not"] = []map[string]any{{"has_id": keep}}
	}
	body := map[string]any{"filter": filter}
	if err := s.do(ctx, http.MethodPost, s.collectionURL("/points/delete?wait=true"), body, nil); err != nil {
		return &llm.TransportError{Service: "vectorstore", Op: "delete", Err: err}
	}
	return nil
}

func (s *QdrantStore) Count(ctx context.Context) (int64, error) {
	var resp struct {
		Result struct {
			Count int64 `json:"count"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodPost, s.collectionURL("/points/count"), map[string]any{"exact": true}, &resp); err != nil {
		return 0, &llm.TransportError{Service: "vectorstore", Op: "count", Err: err}
	}
	return resp.Result.Count, nil
}

func (s *QdrantStore) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.url, s.collection, suffix)
}

// pointID derives a stable UUID from an entry ID; Qdrant only accepts
// unsigned integers or UUIDs as point IDs.
func pointID(id string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(id)).String()
}

func (s *QdrantStore) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("qdrant %s %s: %w", method, url, errNotFound)
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("qdrant %s %s failed: %s: %s", method, url, resp.Status, bytes.TrimSpace(msg))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
