package extract

import (
	"fmt"

	"insightcast/internal/core"
)

var insightAliases = map[core.Category][]string{
	core.CategoryContradictions: {"contradictory", "opposing", "conflicts", "disagreements"},
	core.CategoryEnhancements:   {"details", "expansions", "elaborations", "specifics"},
	core.CategoryConnections:    {"related", "links", "associations", "relationships"},
}

// InsightResult is the outcome of resolving one insight category.
type InsightResult struct {
	Sections []core.Section
	Tier     Tier
	// Key is the JSON key the sections were read from, empty for the
	// fallback tier.
	Key string
	// Err is the parse error that sent resolution to the fallback, if any.
	Err error
}

// Insights resolves a reply to the sections of one category. At most
// core.MaxInsightsPerCategory sections are returned; an unrecoverable reply
// yields an empty list at TierFallback.
func Insights(text string, cat core.Category) InsightResult {
	singular := cat.Singular()
	out := resolve(text, rules[[]core.Section]{
		key:     string(cat),
		aliases: insightAliases[cat],
		validate: func(v any) ([]core.Section, bool) {
			return insightSections(v, singular)
		},
		fallback: func() []core.Section { return []core.Section{} },
	})
	return InsightResult{Sections: out.value, Tier: out.tier, Key: out.key, Err: out.err}
}

// insightSections accepts a list of records or strings and keeps the valid
// ones. A list that yields nothing is rejected so the next tier can run.
func insightSections(v any, singular string) ([]core.Section, bool) {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}

	sections := make([]core.Section, 0, core.MaxInsightsPerCategory)
	for _, item := range list {
		if len(sections) == core.MaxInsightsPerCategory {
			break
		}
		switch e := item.(type) {
		case map[string]any:
			sections = append(sections, insightFromMap(e, singular))
		case string:
			if e == "" {
				continue
			}
			sections = append(sections, core.Section{
				DocumentName:    core.UnknownDocument,
				OriginalContent: e,
			})
		}
	}
	if len(sections) == 0 {
		return nil, false
	}
	return sections, true
}

func insightFromMap(m map[string]any, singular string) core.Section {
	s := core.SectionFromMap(m)
	if s.OriginalContent == "" {
		s.OriginalContent = fmt.Sprintf("Content not available for this %s", singular)
	}
	if s.DocumentName == "" {
		s.DocumentName = core.UnknownDocument
	}
	if s.PageNumber < 0 {
		s.PageNumber = 0
	}
	return s
}
