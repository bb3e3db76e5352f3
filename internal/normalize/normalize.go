// Package normalize turns untrusted vector-store payloads into deduplicated
// sections with defaults applied.
package normalize

import (
	"bytes"
	"encoding/json"

	"insightcast/internal/core"
)

// Stats counts what happened to the input records.
type Stats struct {
	Processed  int // records seen
	Rejected   int // not a JSON object
	Empty      int // missing or empty original_content
	Duplicates int // original_content already seen
	Unique     int // records returned
}

// Records decodes raw payloads, drops anything that is not a JSON object,
// drops records without content, removes duplicates by original_content
// (first occurrence wins), and fills defaults.
func Records(raw []json.RawMessage) ([]core.Section, Stats) {
	stats := Stats{Processed: len(raw)}
	sections := make([]core.Section, 0, len(raw))
	for _, r := range raw {
		m, ok := decodeObject(r)
		if !ok {
			stats.Rejected++
			continue
		}
		sections = append(sections, core.SectionFromMap(m))
	}

	out, st := dedup(sections)
	stats.Empty = st.Empty
	stats.Duplicates = st.Duplicates
	stats.Unique = len(out)
	return out, stats
}

// Sections applies the same content filtering, dedup and defaults to
// already-typed sections. It is idempotent.
func Sections(in []core.Section) []core.Section {
	out, _ := dedup(in)
	return out
}

// ContentOf returns the original_content of a raw payload, or "" when the
// payload is not an object or has no string content.
func ContentOf(raw json.RawMessage) string {
	var head struct {
		OriginalContent any `json:"original_content"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return ""
	}
	s, _ := head.OriginalContent.(string)
	return s
}

func dedup(in []core.Section) ([]core.Section, Stats) {
	var stats Stats
	seen := make(map[string]struct{}, len(in))
	out := make([]core.Section, 0, len(in))
	for _, s := range in {
		if s.OriginalContent == "" {
			stats.Empty++
			continue
		}
		if _, dup := seen[s.OriginalContent]; dup {
			stats.Duplicates++
			continue
		}
		seen[s.OriginalContent] = struct{}{}
		out = append(out, applyDefaults(s))
	}
	return out, stats
}

func applyDefaults(s core.Section) core.Section {
	if s.DocumentName == "" {
		s.DocumentName = core.UnknownDocument
	}
	if s.PageNumber < 0 {
		s.PageNumber = 0
	}
	return s
}

func decodeObject(raw json.RawMessage) (map[string]any, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var m map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}
