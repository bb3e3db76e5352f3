// Package rerank orders retrieved candidates by query relevance.
package rerank

import (
	"context"
	"fmt"
	"sort"
)

// Reranker scores candidate texts against a query. It returns exactly one
// score per candidate, in input order; higher is more relevant.
type Reranker interface {
	Score(ctx context.Context, query string, candidates []string) ([]float64, error)
}

// Apply orders items by descending score and keeps the first topN. Ties keep
// their input order. If scoring fails for any reason the original order is
// kept, truncated to topN, and the failure is returned alongside it so the
// caller can log it.
func Apply[T any](ctx context.Context, r Reranker, query string, items []T, textOf func(T) string, topN int) (out []T, err error) {
	if topN < 0 {
		topN = 0
	}
	fallback := truncate(items, topN)
	if r == nil || len(items) == 0 {
		return fallback, nil
	}

	defer func() {
		if p := recover(); p != nil {
			out, err = fallback, fmt.Errorf("reranker panicked: %v", p)
		}
	}()

	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = textOf(it)
	}

	scores, err := r.Score(ctx, query, texts)
	if err != nil {
		return fallback, err
	}
	if len(scores) != len(items) {
		return fallback, fmt.Errorf("reranker returned %d scores for %d candidates", len(scores), len(items))
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	n := len(order)
	if topN < n {
		n = topN
	}
	out = make([]T, n)
	for i := 0; i < n; i++ {
		out[i] = items[order[i]]
	}
	return out, nil
}

func truncate[T any](items []T, n int) []T {
	if len(items) <= n {
		return append([]T(nil), items...)
	}
	return append([]T(nil), items[:n]...)
}
