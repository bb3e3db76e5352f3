package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kaptinlin/jsonschema"

	"insightcast/internal/core"
)

const (
	conversationKey = "conversation"

	// MinConversationLines is the shortest script accepted from JSON or patterns.
	MinConversationLines = 4
	// MaxPatternLines caps scripts scraped from unstructured text.
	MaxPatternLines = 12

	minPatternMatchRunes = 10
)

var conversationAliases = []string{"dialogue", "script", "podcast", "messages", "exchanges", "lines"}

const conversationSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "minItems": 4,
  "items": {"type": "string"}
}`

var conversationSchema = mustCompile(conversationSchemaJSON)

func mustCompile(src string) *jsonschema.Schema {
	schema, err := jsonschema.NewCompiler().Compile([]byte(src))
	if err != nil {
		panic(fmt.Sprintf("compile conversation schema: %v", err))
	}
	return schema
}

// Line patterns tried in order over an unstructured reply.
var conversationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?im)"([^"]+)"`),
	regexp.MustCompile(`(?im)Host[:\s]+([^\n]+)`),
	regexp.MustCompile(`(?im)Analyst[:\s]+([^\n]+)`),
	regexp.MustCompile(`(?im)•\s*([^\n]+)`),
	regexp.MustCompile(`(?im)\d+\.\s*([^\n]+)`),
	regexp.MustCompile(`(?im)-\s*([^\n]+)`),
}

// ConversationResult is the outcome of resolving a podcast reply.
type ConversationResult struct {
	Conversation core.Conversation
	Tier         Tier
	Key          string
	Err          error
}

// Conversation resolves a reply to an even-length script of at least four
// lines. Replies that cannot be recovered produce the persona's canned
// script at TierFallback.
func Conversation(text string, persona core.Persona) ConversationResult {
	out := resolve(text, rules[core.Conversation]{
		key:      conversationKey,
		aliases:  conversationAliases,
		validate: validConversation,
		patterns: patternConversation,
		fallback: func() core.Conversation { return FallbackConversation(persona) },
	})
	return ConversationResult{Conversation: out.value, Tier: out.tier, Key: out.key, Err: out.err}
}

func validConversation(v any) (core.Conversation, bool) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	if !conversationSchema.ValidateJSON(data).IsValid() {
		return nil, false
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, false
	}
	return evenLength(lines), true
}

func patternConversation(text string) (core.Conversation, bool) {
	for _, re := range conversationPatterns {
		var lines []string
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			line := strings.TrimSpace(m[1])
			if utf8.RuneCountInString(line) > minPatternMatchRunes {
				lines = append(lines, line)
			}
		}
		if len(lines) < MinConversationLines {
			continue
		}
		if len(lines) > MaxPatternLines {
			lines = lines[:MaxPatternLines]
		}
		return evenLength(lines), true
	}
	return nil, false
}

// evenLength drops a trailing unanswered Host line.
func evenLength(lines []string) core.Conversation {
	if len(lines)%2 == 1 {
		lines = lines[:len(lines)-1]
	}
	return core.Conversation(lines)
}
