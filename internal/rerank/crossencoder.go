package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"insightcast/internal/llm"
)

const (
	// DefaultCrossEncoderModel is the model the rerank service is expected to serve.
	DefaultCrossEncoderModel = "cross-encoder/ms-marco-MiniLM-L6-v2"
	// DefaultTimeout bounds a single rerank request.
	DefaultTimeout = 30 * time.Second
)

// CrossEncoderConfig configures a CrossEncoder client.
type CrossEncoderConfig struct {
	URL     string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// CrossEncoder calls a cross-encoder rerank service speaking the
// text-embeddings-inference protocol: POST /rerank {query, texts} answered
// with [{index, score}].
type CrossEncoder struct {
	url    string
	model  string
	apiKey string
	client *http.Client
}

var _ Reranker = (*CrossEncoder)(nil)

// NewCrossEncoder creates a client for the rerank service at cfg.URL.
func NewCrossEncoder(cfg CrossEncoderConfig) *CrossEncoder {
	if cfg.Model == "" {
		cfg.Model = DefaultCrossEncoderModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &CrossEncoder{
		url:    strings.TrimSuffix(cfg.URL, "/"),
		model:  cfg.Model,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type rerankRequest struct {
	Query    string   `json:"query"`
	Texts    []string `json:"texts"`
	Model    string   `json:"model,omitempty"`
	Truncate bool     `json:"truncate"`
}

type rerankHit struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Score sends every candidate in one request and maps the returned hits
// back to input order.
func (c *CrossEncoder) Score(ctx context.Context, query string, candidates []string) ([]float64, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(rerankRequest{Query: query, Texts: candidates, Model: c.model, Truncate: true})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &llm.TransportError{Service: "reranker", Op: "score", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &llm.TransportError{
			Service: "reranker",
			Op:      "score",
			Err:     fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(msg)),
		}
	}

	var hits []rerankHit
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return nil, fmt.Errorf("failed to decode rerank response: %w", err)
	}

	scores := make([]float64, len(candidates))
	seen := make([]bool, len(candidates))
	for _, h := range hits {
		if h.Index < 0 || h.Index >= len(candidates) {
			return nil, fmt.Errorf("rerank response index %d out of range", h.Index)
		}
		scores[h.Index] = h.Score
		seen[h.Index] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("rerank response is missing a score for candidate %d", i)
		}
	}
	return scores, nil
}
