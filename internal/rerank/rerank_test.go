package rerank

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReranker struct {
	ScoreFunc func(ctx context.Context, query string, candidates []string) ([]float64, error)
}

func (m *mockReranker) Score(ctx context.Context, query string, candidates []string) ([]float64, error) {
	return m.ScoreFunc(ctx, query, candidates)
}

func fixedScores(scores ...float64) *mockReranker {
	return &mockReranker{ScoreFunc: func(context.Context, string, []string) ([]float64, error) {
		return scores, nil
	}}
}

func identity(s string) string { return s }

func TestApplyOrdersByScore(t *testing.T) {
	got, err := Apply(context.Background(), fixedScores(0.1, 0.9, 0.5), "q", []string{"A", "B", "C"}, identity, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, got)
}

func TestApplyTiesKeepInputOrder(t *testing.T) {
	got, err := Apply(context.Background(), fixedScores(0.5, 0.7, 0.5, 0.5), "q", []string{"A", "B", "C", "D"}, identity, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "C", "D"}, got)
}

func TestApplyFallsBackToInputOrder(t *testing.T) {
	items := []string{"A", "B", "C", "D"}

	failing := &mockReranker{ScoreFunc: func(context.Context, string, []string) ([]float64, error) {
		return nil, errors.New("model not loaded")
	}}
	got, err := Apply(context.Background(), failing, "q", items, identity, 3)
	assert.Error(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, got)

	short := fixedScores(1)
	got, err = Apply(context.Background(), short, "q", items, identity, 3)
	assert.Error(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, got)

	panicking := &mockReranker{ScoreFunc: func(context.Context, string, []string) ([]float64, error) {
		panic("index out of range")
	}}
	got, err = Apply(context.Background(), panicking, "q", items, identity, 2)
	assert.Error(t, err)
	assert.Equal(t, []string{"A", "B"}, got)
}

func TestApplyNilRerankerAndShortInput(t *testing.T) {
	got, err := Apply[string](context.Background(), nil, "q", []string{"A", "B"}, identity, 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, got)

	got, err = Apply(context.Background(), fixedScores(), "q", []string{}, identity, 30)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestApplyDoesNotAliasInput(t *testing.T) {
	items := []string{"A", "B", "C"}
	got, _ := Apply[string](context.Background(), nil, "q", items, identity, 2)
	got[0] = "Z"
	assert.Equal(t, "A", items[0])
}

func TestLexicalPrefersOverlap(t *testing.T) {
	scores, err := Lexical{}.Score(context.Background(), "solar panel efficiency", []string{
		"Wind turbines are noisy.",
		"Solar panel efficiency improved in 2023.",
		"Panel discussions were held.",
	})
	require.NoError(t, err)
	require.Len(t, scores, 3)
	assert.Equal(t, 0.0, scores[0])
	assert.Greater(t, scores[1], scores[2])
	assert.Greater(t, scores[2], scores[0])
}

func TestCrossEncoderScore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rerank", r.URL.Path)
		var req rerankRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "selection", req.Query)
		assert.Equal(t, DefaultCrossEncoderModel, req.Model)
		require.Len(t, req.Texts, 3)
		// Responses come back sorted by score, not by index.
		_, _ = w.Write([]byte(`[{"index":1,"score":0.9},{"index":2,"score":0.5},{"index":0,"score":0.1}]`))
	}))
	defer srv.Close()

	ce := NewCrossEncoder(CrossEncoderConfig{URL: srv.URL + "/"})
	scores, err := ce.Score(context.Background(), "selection", []string{"A", "B", "C"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.9, 0.5}, scores)

	got, err := Apply(context.Background(), ce, "selection", []string{"A", "B", "C"}, identity, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, got)
}

func TestCrossEncoderErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}},
		{"missing score", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[{"index":0,"score":0.3}]`))
		}},
		{"bad index", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[{"index":7,"score":0.3},{"index":0,"score":0.1}]`))
		}},
		{"not json", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewCrossEncoder(CrossEncoderConfig{URL: srv.URL}).Score(context.Background(), "q", []string{"A", "B"})
			assert.Error(t, err)
		})
	}
}
