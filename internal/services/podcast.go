package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"insightcast/internal/core"
	"insightcast/internal/extract"
	"insightcast/internal/llm"
)

// MinReplyLength is the shortest trimmed reply worth running extraction on.
const MinReplyLength = 50

// PodcastService writes one Host/Analyst script per persona.
type PodcastService struct {
	retriever ContextRetriever
	generator Generator
	personas  []core.Persona
	log       *slog.Logger
}

// NewPodcastService creates a podcast service covering every persona.
func NewPodcastService(retriever ContextRetriever, generator Generator, log *slog.Logger) *PodcastService {
	if log == nil {
		log = slog.Default()
	}
	return &PodcastService{
		retriever: retriever,
		generator: generator,
		personas:  core.Personas(),
		log:       log.With("component", "podcast"),
	}
}

// GeneratePersonaPodcasts fetches deep context once and writes one script
// per persona concurrently. The result always has one entry per persona.
func (s *PodcastService) GeneratePersonaPodcasts(ctx context.Context, selection string) core.PodcastSet {
	sections := s.retriever.Deep(ctx, selection)
	if len(sections) == 0 {
		s.log.Info("No context found, returning placeholder podcasts")
		set := make(core.PodcastSet, len(s.personas))
		for _, p := range s.personas {
			set[p] = core.NoContextConversation()
		}
		return set
	}
	return s.fromContext(ctx, selection, sections, s.personas)
}

// GeneratePersonaPodcast writes the script for a single persona.
func (s *PodcastService) GeneratePersonaPodcast(ctx context.Context, selection string, persona core.Persona) core.Conversation {
	sections := s.retriever.Deep(ctx, selection)
	if len(sections) == 0 {
		return core.NoContextConversation()
	}
	return s.fromContext(ctx, selection, sections, []core.Persona{persona})[persona]
}

func (s *PodcastService) fromContext(ctx context.Context, selection string, sections []core.Section, personas []core.Persona) core.PodcastSet {
	start := time.Now()
	set := make(core.PodcastSet, len(personas))

	contextJSON, err := indentedContext(sections)
	if err != nil {
		s.log.Error("Cannot build podcast context", "error", err)
		for _, p := range personas {
			set[p] = extract.FallbackConversation(p)
		}
		return set
	}

	results := make([]core.Conversation, len(personas))
	var wg conc.WaitGroup
	for i, p := range personas {
		wg.Go(func() {
			var pc panics.Catcher
			pc.Try(func() {
				results[i] = s.writeScript(ctx, p, selection, contextJSON)
			})
			if r := pc.Recovered(); r != nil {
				s.log.Error("Podcast task panicked", "persona", p, "error", r.AsError())
				results[i] = extract.FallbackConversation(p)
			}
		})
	}
	wg.Wait()

	for i, p := range personas {
		set[p] = results[i]
	}
	s.log.Info("Persona podcasts complete",
		"personas", len(personas),
		"context_sections", len(sections),
		"duration", time.Since(start))
	return set
}

func (s *PodcastService) writeScript(ctx context.Context, p core.Persona, selection, contextJSON string) core.Conversation {
	reply, err := s.generator.Generate(ctx, podcastPrompt(p, selection), contextJSON)
	switch {
	case errors.Is(err, llm.ErrBlocked):
		s.log.Warn("Podcast generation was blocked", "persona", p, "error", err)
		return extract.FallbackConversation(p)
	case err != nil:
		s.log.Error("Podcast generation failed", "persona", p, "error", err)
		return extract.FallbackConversation(p)
	}

	text := strings.TrimSpace(reply.Text)
	if n := utf8.RuneCountInString(text); n < MinReplyLength {
		s.log.Warn("Reply too short, using fallback", "persona", p, "length", n)
		return extract.FallbackConversation(p)
	}

	res := extract.Conversation(text, p)
	attrs := []any{"persona", p, "tier", res.Tier.String(), "key", res.Key, "lines", len(res.Conversation)}
	if res.Err != nil {
		attrs = append(attrs, "error", res.Err)
	}
	if res.Tier == extract.TierFallback {
		s.log.Warn("Could not extract conversation from reply", attrs...)
	} else {
		s.log.Info("Generated podcast conversation", attrs...)
	}
	return res.Conversation
}
