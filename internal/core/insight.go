package core

import "encoding/json"

// Category names one kind of relationship between the selection and the corpus.
type Category string

const (
	CategoryContradictions Category = "contradictions"
	CategoryEnhancements   Category = "enhancements"
	CategoryConnections    Category = "connections"
)

// Categories returns the insight categories in their canonical order.
func Categories() []Category {
	return []Category{CategoryContradictions, CategoryEnhancements, CategoryConnections}
}

// Singular returns the noun used when describing a single item of the category.
func (c Category) Singular() string {
	switch c {
	case CategoryContradictions:
		return "contradiction"
	case CategoryEnhancements:
		return "enhancement"
	case CategoryConnections:
		return "connection"
	}
	return string(c)
}

// MaxInsightsPerCategory bounds how many sections a single category may hold.
const MaxInsightsPerCategory = 5

// InsightSet is the aggregated result of the insight fan-out. Each list is
// always present when serialized, even when empty.
type InsightSet struct {
	Contradictions []Section `json:"contradictions"`
	Enhancements   []Section `json:"enhancements"`
	Connections    []Section `json:"connections"`
}

// EmptyInsightSet returns a set whose three lists are empty but non-nil.
func EmptyInsightSet() InsightSet {
	return InsightSet{
		Contradictions: []Section{},
		Enhancements:   []Section{},
		Connections:    []Section{},
	}
}

// Set stores sections under the given category. A nil slice is stored as empty.
func (s *InsightSet) Set(c Category, sections []Section) {
	if sections == nil {
		sections = []Section{}
	}
	switch c {
	case CategoryContradictions:
		s.Contradictions = sections
	case CategoryEnhancements:
		s.Enhancements = sections
	case CategoryConnections:
		s.Connections = sections
	}
}

// Get returns the sections stored under the given category.
func (s InsightSet) Get(c Category) []Section {
	switch c {
	case CategoryContradictions:
		return s.Contradictions
	case CategoryEnhancements:
		return s.Enhancements
	case CategoryConnections:
		return s.Connections
	}
	return nil
}

// MarshalJSON guarantees all three keys serialize as lists.
func (s InsightSet) MarshalJSON() ([]byte, error) {
	type alias InsightSet
	out := alias(s)
	if out.Contradictions == nil {
		out.Contradictions = []Section{}
	}
	if out.Enhancements == nil {
		out.Enhancements = []Section{}
	}
	if out.Connections == nil {
		out.Connections = []Section{}
	}
	return json.Marshal(out)
}
