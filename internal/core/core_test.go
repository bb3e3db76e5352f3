package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionFromMap(t *testing.T) {
	m := map[string]any{
		"document_name":    "report.pdf",
		"page_number":      "4",
		"section_title":    "Results",
		"full_path":        "Report > Results",
		"original_content": "Revenue grew.",
		"bounding_box":     `{"x0": 1, "y0": 2, "x1": 3, "y1": 4}`,
		"score":            0.42,
	}

	s := SectionFromMap(m)
	assert.Equal(t, "report.pdf", s.DocumentName)
	assert.Equal(t, 4, s.PageNumber)
	assert.Equal(t, []string{"Report", "Results"}, s.FullPath)
	require.NotNil(t, s.BoundingBox)
	assert.Equal(t, BoundingBox{X0: 1, Y0: 2, X1: 3, Y1: 4}, *s.BoundingBox)
	assert.Equal(t, 0.42, s.Extra["score"])
}

func TestSectionFromMapBadBoundingBox(t *testing.T) {
	s := SectionFromMap(map[string]any{"original_content": "x", "bounding_box": "{not json"})
	assert.Nil(t, s.BoundingBox)

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"document_name":"","page_number":0,"section_title":"","original_content":"x","bounding_box":{}}`, string(b))
}

func TestSectionMarshalKeepsExtraKeys(t *testing.T) {
	s := Section{
		DocumentName:    "a.pdf",
		OriginalContent: "text",
		Extra:           map[string]any{"text": "echoed", "document_name": "ignored"},
	}
	b, err := json.Marshal(s)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "echoed", out["text"])
	assert.Equal(t, "a.pdf", out["document_name"])
}

func TestIntFromValueRejectsOutOfRange(t *testing.T) {
	for _, v := range []any{1e300, json.Number("1e300"), "3000000000", -1.0, "NaN", "abc"} {
		_, ok := IntFromValue(v)
		assert.False(t, ok, "%v", v)
	}

	n, ok := IntFromValue(json.Number("12"))
	require.True(t, ok)
	assert.Equal(t, 12, n)

	s := SectionFromMap(map[string]any{"original_content": "x", "page_number": 1e300})
	assert.Equal(t, 0, s.PageNumber)
}

func TestSectionMarshalAlwaysWritesSectionTitle(t *testing.T) {
	b, err := json.Marshal(Section{DocumentName: "a.pdf", OriginalContent: "text"})
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Contains(t, out, "section_title")
	assert.Equal(t, "", out["section_title"])
}

func TestSectionUnmarshalRejectsNonObject(t *testing.T) {
	var s Section
	assert.Error(t, json.Unmarshal([]byte(`"just a string"`), &s))
	assert.Error(t, json.Unmarshal([]byte(`null`), &s))
}

func TestInsightSetAlwaysSerializesLists(t *testing.T) {
	b, err := json.Marshal(InsightSet{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"contradictions":[],"enhancements":[],"connections":[]}`, string(b))
}

func TestInsightSetSetGet(t *testing.T) {
	set := EmptyInsightSet()
	set.Set(CategoryEnhancements, []Section{{OriginalContent: "x"}})
	set.Set(CategoryConnections, nil)

	assert.Len(t, set.Get(CategoryEnhancements), 1)
	assert.NotNil(t, set.Get(CategoryConnections))
	assert.Empty(t, set.Get(CategoryContradictions))
}

func TestPersonas(t *testing.T) {
	ps := Personas()
	require.Len(t, ps, 4)
	for _, p := range ps {
		assert.NotEmpty(t, p.StyleGuide(), "persona %s has no style guide", p)
	}

	_, err := ParsePersona("comedian")
	assert.Error(t, err)

	p, err := ParsePersona("debater")
	require.NoError(t, err)
	assert.Equal(t, PersonaDebater, p)
}

func TestConversationSpeaker(t *testing.T) {
	c := Conversation{"a", "b", "c", "d"}
	assert.Equal(t, "Host", c.Speaker(0))
	assert.Equal(t, "Analyst", c.Speaker(1))
	assert.Equal(t, "Host", c.Speaker(2))
}
