package extract

import (
	"fmt"
	"strings"
	"testing"

	"insightcast/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObject(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		keys    []string
		wantErr bool
	}{
		{"plain", `{"a":1,"b":[2]}`, []string{"a", "b"}, false},
		{"fenced", "```json\n{\"b\":1,\"a\":2}\n```", []string{"b", "a"}, false},
		{"prose around", `Sure! Here it is: {"x":[]} Hope that helps.`, []string{"x"}, false},
		{"duplicate key keeps first position", `{"a":1,"b":2,"a":3}`, []string{"a", "b"}, false},
		{"no braces", `just words`, nil, true},
		{"two objects", `{"a":1} and {"b":2}`, nil, true},
		{"truncated", `{"a":[1,2`, nil, true},
		{"reversed braces", `} nope {`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := parseObject(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedResponse)
				return
			}
			require.NoError(t, err)
			var keys []string
			for _, f := range obj {
				keys = append(keys, f.Key)
			}
			assert.Equal(t, tt.keys, keys)
		})
	}

	obj, err := parseObject(`{"a":1,"b":2,"a":3}`)
	require.NoError(t, err)
	v, _ := obj.get("a")
	assert.Equal(t, "3", fmt.Sprint(v))
}

func TestInsightsDirect(t *testing.T) {
	text := `{"contradictions":[
		{"document_name":"a.pdf","page_number":4,"original_content":"The sky is green.","section_title":"Colors"},
		{"page_number":"2"},
		"plain string insight"
	]}`

	got := Insights(text, core.CategoryContradictions)
	assert.Equal(t, TierDirect, got.Tier)
	assert.Equal(t, "contradictions", got.Key)
	require.Len(t, got.Sections, 3)

	assert.Equal(t, "a.pdf", got.Sections[0].DocumentName)
	assert.Equal(t, 4, got.Sections[0].PageNumber)
	assert.Equal(t, "Colors", got.Sections[0].SectionTitle)

	assert.Equal(t, "Content not available for this contradiction", got.Sections[1].OriginalContent)
	assert.Equal(t, core.UnknownDocument, got.Sections[1].DocumentName)
	assert.Equal(t, 2, got.Sections[1].PageNumber)

	assert.Equal(t, "plain string insight", got.Sections[2].OriginalContent)
	assert.Equal(t, 0, got.Sections[2].PageNumber)
}

func TestInsightsAlias(t *testing.T) {
	got := Insights(`{"conflicts":[{"text":"x"}]}`, core.CategoryContradictions)
	assert.Equal(t, TierAlias, got.Tier)
	assert.Equal(t, "conflicts", got.Key)
	require.Len(t, got.Sections, 1)
	assert.Equal(t, "Content not available for this contradiction", got.Sections[0].OriginalContent)
	assert.Equal(t, core.UnknownDocument, got.Sections[0].DocumentName)
	assert.Equal(t, 0, got.Sections[0].PageNumber)
}

func TestInsightsAnyList(t *testing.T) {
	text := `{"note":"none","empty":[],"results":[{"original_content":"linked idea"}],"later":[{"original_content":"ignored"}]}`
	got := Insights(text, core.CategoryConnections)
	assert.Equal(t, TierAnyList, got.Tier)
	assert.Equal(t, "results", got.Key)
	require.Len(t, got.Sections, 1)
	assert.Equal(t, "linked idea", got.Sections[0].OriginalContent)
}

func TestInsightsDirectInvalidFallsThrough(t *testing.T) {
	text := `{"enhancements":"none found","details":[{"original_content":"more"}]}`
	got := Insights(text, core.CategoryEnhancements)
	assert.Equal(t, TierAlias, got.Tier)
	assert.Equal(t, "details", got.Key)
}

func TestInsightsCapsAtFive(t *testing.T) {
	var items []string
	for i := 0; i < 8; i++ {
		items = append(items, fmt.Sprintf(`{"original_content":"item %d"}`, i))
	}
	got := Insights(`{"enhancements":[`+strings.Join(items, ",")+`]}`, core.CategoryEnhancements)
	require.Len(t, got.Sections, core.MaxInsightsPerCategory)
	assert.Equal(t, "item 4", got.Sections[4].OriginalContent)
}

func TestInsightsFallback(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"not json", "I could not find anything relevant.", true},
		{"no lists", `{"connections":"n/a","count":0}`, false},
		{"only junk elements", `{"connections":[1, 2, ""]}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Insights(tt.text, core.CategoryConnections)
			assert.Equal(t, TierFallback, got.Tier)
			assert.NotNil(t, got.Sections)
			assert.Empty(t, got.Sections)
			if tt.wantErr {
				assert.ErrorIs(t, got.Err, ErrMalformedResponse)
			}
		})
	}
}

func TestConversationDirectTrimsOddLength(t *testing.T) {
	got := Conversation(`{"conversation":["a","b","c","d","e"]}`, core.PersonaDebater)
	assert.Equal(t, TierDirect, got.Tier)
	assert.Equal(t, core.Conversation{"a", "b", "c", "d"}, got.Conversation)
}

func TestConversationDoesNotCapJSON(t *testing.T) {
	lines := make([]string, 16)
	for i := range lines {
		lines[i] = fmt.Sprintf(`"line %d"`, i)
	}
	got := Conversation(`{"conversation":[`+strings.Join(lines, ",")+`]}`, core.PersonaDebater)
	assert.Equal(t, TierDirect, got.Tier)
	assert.Len(t, got.Conversation, 16)
}

func TestConversationAlias(t *testing.T) {
	got := Conversation(`{"conversation":["too","short"],"script":["one","two","three","four"]}`, core.PersonaInvestigator)
	assert.Equal(t, TierAlias, got.Tier)
	assert.Equal(t, "script", got.Key)
	assert.Len(t, got.Conversation, 4)
}

func TestConversationAnyListRejectsNonStrings(t *testing.T) {
	got := Conversation(`{"turns":[{"speaker":"Host"},{},{},{}]}`, core.PersonaConnections)
	assert.Equal(t, TierFallback, got.Tier)

	got = Conversation(`{"meta":"x","turns":["one","two","three","four","five","six"]}`, core.PersonaConnections)
	assert.Equal(t, TierAnyList, got.Tier)
	assert.Equal(t, "turns", got.Key)
	assert.Len(t, got.Conversation, 6)
}

func TestConversationPatternTier(t *testing.T) {
	text := `Here is the discussion you asked for:
Host: Welcome back to the show, today we discuss batteries.
Analyst: Thanks, the documents show a big jump in density.
Host: What drove that improvement in the last decade?
Analyst: Mostly new cathode chemistry and better manufacturing.
Host: And where does recycling fit into this picture?
Analyst: It is still the weakest link in the supply chain.
Host: Short.
Host: Thanks for walking us through the research today.
Host: One more closing remark from the host side.`

	got := Conversation(text, core.PersonaFundamentals)
	assert.Equal(t, TierPattern, got.Tier)
	assert.Equal(t, core.Conversation{
		"Welcome back to the show, today we discuss batteries.",
		"What drove that improvement in the last decade?",
		"And where does recycling fit into this picture?",
		"Thanks for walking us through the research today.",
	}, got.Conversation)
}

func TestConversationPatternCapsAtTwelve(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 15; i++ {
		fmt.Fprintf(&b, "%d. This is numbered point number %d\n", i, i)
	}
	got := Conversation(b.String(), core.PersonaDebater)
	assert.Equal(t, TierPattern, got.Tier)
	require.Len(t, got.Conversation, MaxPatternLines)
	assert.Equal(t, "This is numbered point number 1", got.Conversation[0])
}

func TestConversationQuotedPatternWins(t *testing.T) {
	text := `The host says "this battery story is fascinating" and the analyst adds "density doubled since 2015".
Then "costs fell by nearly ninety percent" and finally "recycling remains the open problem" plus "ok".`
	got := Conversation(text, core.PersonaDebater)
	assert.Equal(t, TierPattern, got.Tier)
	assert.Equal(t, core.Conversation{
		"this battery story is fascinating",
		"density doubled since 2015",
		"costs fell by nearly ninety percent",
		"recycling remains the open problem",
	}, got.Conversation)
}

func TestConversationFallbackIsDeterministic(t *testing.T) {
	first := Conversation("no structure here at all", core.PersonaDebater)
	second := Conversation("no structure here at all", core.PersonaDebater)

	assert.Equal(t, TierFallback, first.Tier)
	assert.Equal(t, first.Conversation, second.Conversation)
	require.Len(t, first.Conversation, 8)
	assert.Equal(t, "Welcome to our debate-style analysis of your selected text.", first.Conversation[0])
	assert.ErrorIs(t, first.Err, ErrMalformedResponse)
}

func TestFallbackConversation(t *testing.T) {
	for _, p := range core.Personas() {
		c := FallbackConversation(p)
		assert.Len(t, c, 8, p)
	}
	assert.Equal(t, "Welcome to our podcast discussion.", FallbackConversation("mystery")[0])

	c := FallbackConversation(core.PersonaConnections)
	c[0] = "mutated"
	assert.NotEqual(t, "mutated", FallbackConversation(core.PersonaConnections)[0])
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "direct", TierDirect.String())
	assert.Equal(t, "any_list", TierAnyList.String())
	assert.Equal(t, "unknown", Tier(0).String())
}
