package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"insightcast/internal/core"
	"insightcast/internal/extract"
	"insightcast/internal/llm"
)

// InsightService classifies the deep-retrieval context into contradictions,
// enhancements and connections of a selection.
type InsightService struct {
	retriever ContextRetriever
	generator Generator
	log       *slog.Logger
}

// NewInsightService creates a new insight service
func NewInsightService(retriever ContextRetriever, generator Generator, log *slog.Logger) *InsightService {
	if log == nil {
		log = slog.Default()
	}
	return &InsightService{
		retriever: retriever,
		generator: generator,
		log:       log.With("component", "insights"),
	}
}

// GenerateInsights fetches deep context once and runs one generation per
// category concurrently. A failing category comes back empty without
// affecting the others; all three lists are always present.
func (s *InsightService) GenerateInsights(ctx context.Context, selection string) core.InsightSet {
	sections := s.retriever.Deep(ctx, selection)
	if len(sections) == 0 {
		s.log.Info("No context found, returning empty insights")
		return core.EmptyInsightSet()
	}
	return s.fromContext(ctx, selection, sections)
}

func (s *InsightService) fromContext(ctx context.Context, selection string, sections []core.Section) core.InsightSet {
	start := time.Now()
	set := core.EmptyInsightSet()

	contextJSON, err := compactContext(sections)
	if err != nil {
		s.log.Error("Cannot build insight context", "error", err)
		return set
	}

	categories := core.Categories()
	results := make([][]core.Section, len(categories))

	var wg conc.WaitGroup
	for i, cat := range categories {
		wg.Go(func() {
			var pc panics.Catcher
			pc.Try(func() {
				results[i] = s.findInsights(ctx, cat, selection, contextJSON)
			})
			if r := pc.Recovered(); r != nil {
				s.log.Error("Insight task panicked", "category", cat, "error", r.AsError())
			}
		})
	}
	wg.Wait()

	total := 0
	for i, cat := range categories {
		set.Set(cat, results[i])
		total += len(results[i])
	}
	s.log.Info("Insights generation complete",
		"context_sections", len(sections),
		"contradictions", len(set.Contradictions),
		"enhancements", len(set.Enhancements),
		"connections", len(set.Connections),
		"total", total,
		"duration", time.Since(start))
	return set
}

func (s *InsightService) findInsights(ctx context.Context, cat core.Category, selection, contextJSON string) []core.Section {
	reply, err := s.generator.Generate(ctx, insightPrompt(cat, selection), contextJSON)
	switch {
	case errors.Is(err, llm.ErrBlocked):
		s.log.Warn("Insight generation was blocked", "category", cat, "error", err)
		return nil
	case err != nil:
		s.log.Error("Insight generation failed", "category", cat, "error", err)
		return nil
	}

	res := extract.Insights(reply.Text, cat)
	attrs := []any{"category", cat, "tier", res.Tier.String(), "key", res.Key, "count", len(res.Sections)}
	if res.Err != nil {
		attrs = append(attrs, "error", res.Err)
	}
	if res.Tier == extract.TierFallback {
		s.log.Warn("Could not extract insights from reply", attrs...)
	} else {
		s.log.Debug("Extracted insights", attrs...)
	}
	return res.Sections
}
