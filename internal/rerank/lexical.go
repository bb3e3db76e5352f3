package rerank

import (
	"context"
	"math"
	"regexp"
	"strings"
)

var wordRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

// Lexical scores candidates by the Ochiai coefficient of their word sets
// against the query: |A∩B| / sqrt(|A||B|). It needs no network access and
// is the default when no cross-encoder service is configured.
type Lexical struct{}

var _ Reranker = Lexical{}

func (Lexical) Score(ctx context.Context, query string, candidates []string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := tokenSet(query)
	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		scores[i] = ochiai(q, tokenSet(c))
	}
	return scores, nil
}

func tokenSet(s string) map[string]struct{} {
	tokens := wordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func ochiai(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(a))*float64(len(b)))
}
