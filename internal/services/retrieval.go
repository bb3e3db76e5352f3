package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"insightcast/internal/config"
	"insightcast/internal/core"
	"insightcast/internal/llm"
	"insightcast/internal/normalize"
	"insightcast/internal/rerank"
)

const (
	DefaultFastPool           = 100
	DefaultFastKeep           = 30
	DefaultDeepPool           = 200
	DefaultMinSelectionLength = 3
)

// RetrievalOptions sizes the fast and deep candidate pools.
type RetrievalOptions struct {
	FastPool           int
	FastKeep           int
	DeepPool           int
	MinSelectionLength int
}

// RetrievalOptionsFromConfig maps the retrieval config section onto options,
// falling back to defaults for unset values.
func RetrievalOptionsFromConfig(cfg config.Retrieval) RetrievalOptions {
	return RetrievalOptions{
		FastPool:           cfg.FastPool,
		FastKeep:           cfg.FastKeep,
		DeepPool:           cfg.DeepPool,
		MinSelectionLength: cfg.MinSelectionLength,
	}.withDefaults()
}

func (o RetrievalOptions) withDefaults() RetrievalOptions {
	if o.FastPool <= 0 {
		o.FastPool = DefaultFastPool
	}
	if o.FastKeep <= 0 {
		o.FastKeep = DefaultFastKeep
	}
	if o.DeepPool <= 0 {
		o.DeepPool = DefaultDeepPool
	}
	if o.MinSelectionLength <= 0 {
		o.MinSelectionLength = DefaultMinSelectionLength
	}
	return o
}

// RetrievalService finds indexed sections related to a selection.
// Both paths degrade to an empty result instead of failing.
type RetrievalService struct {
	embedder Embedder
	store    Searcher
	reranker rerank.Reranker
	opts     RetrievalOptions
	log      *slog.Logger
}

// NewRetrievalService creates a retrieval service. A nil reranker keeps the
// vector store's order on the fast path.
func NewRetrievalService(embedder Embedder, store Searcher, reranker rerank.Reranker, opts RetrievalOptions, log *slog.Logger) *RetrievalService {
	if log == nil {
		log = slog.Default()
	}
	return &RetrievalService{
		embedder: embedder,
		store:    store,
		reranker: reranker,
		opts:     opts.withDefaults(),
		log:      log.With("component", "retrieval"),
	}
}

// Fast returns up to FastKeep sections from a FastPool candidate pool,
// reranked against the selection.
func (s *RetrievalService) Fast(ctx context.Context, selection string) []core.Section {
	start := time.Now()
	raw, ok := s.candidates(ctx, selection, s.opts.FastPool)
	if !ok {
		return []core.Section{}
	}

	ranked, err := rerank.Apply(ctx, s.reranker, selection, raw, normalize.ContentOf, s.opts.FastKeep)
	if err != nil {
		s.log.Warn("Reranking failed, keeping vector order", "error", err, "candidates", len(raw))
	}

	sections, stats := normalize.Records(ranked)
	s.log.Info("Fast retrieval complete",
		"candidates", len(raw),
		"kept", len(ranked),
		"unique", stats.Unique,
		"duplicates", stats.Duplicates,
		"rejected", stats.Rejected,
		"duration", time.Since(start))
	return sections
}

// Deep returns up to DeepPool deduplicated sections in the vector store's
// native order. It never reranks.
func (s *RetrievalService) Deep(ctx context.Context, selection string) []core.Section {
	start := time.Now()
	raw, ok := s.candidates(ctx, selection, s.opts.DeepPool)
	if !ok {
		return []core.Section{}
	}

	sections, stats := normalize.Records(raw)
	s.log.Info("Deep retrieval complete",
		"candidates", len(raw),
		"unique", stats.Unique,
		"duplicates", stats.Duplicates,
		"rejected", stats.Rejected,
		"duration", time.Since(start))
	return sections
}

func (s *RetrievalService) candidates(ctx context.Context, selection string, k int) ([]json.RawMessage, bool) {
	if len([]rune(strings.TrimSpace(selection))) < s.opts.MinSelectionLength {
		s.log.Debug("Selection too short for retrieval", "length", len(selection))
		return nil, false
	}

	embedding, err := s.embedder.Embed(ctx, selection, llm.PurposeQuery)
	if err != nil {
		s.log.Error("Failed to embed selection", "error", err)
		return nil, false
	}

	raw, err := s.store.Search(ctx, embedding, k)
	if err != nil {
		s.log.Error("Vector search failed", "error", err, "k", k)
		return nil, false
	}
	if len(raw) == 0 {
		s.log.Info("No candidates found")
		return nil, false
	}
	return raw, true
}
