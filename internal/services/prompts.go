package services

import (
	"encoding/json"
	"fmt"

	"insightcast/internal/core"
)

// Insight prompts take the selection as their single argument. The context
// is sent as the attachment part right after "LARGE CONTEXT:".
var insightPrompts = map[core.Category]string{
	core.CategoryContradictions: `
You are a highly intelligent AI assistant specializing in document analysis. Your task is to analyze a user's selected text and a large list of context sections to find **only the contradictions**.
1.  Analyze all the provided context sections.
2.  Identify the top 5 most relevant sections that present a viewpoint or fact that directly opposes or challenges the user's selected text.
3.  Return a JSON object with a single key "contradictions" containing an array of the full JSON objects for the sections you have selected.
If you find no contradictions, return an empty array. Do not add any explanatory text.

USER'S SELECTED TEXT:
"%s"

LARGE CONTEXT:
`,
	core.CategoryEnhancements: `
You are a highly intelligent AI assistant specializing in document analysis. Your task is to analyze a user's selected text and a large list of context sections to find **only the enhancements**.
1.  Analyze all the provided context sections.
2.  Identify the top 5 most relevant sections that provide a more detailed explanation, a specific example, or build directly upon the user's selection.
3.  Return a JSON object with a single key "enhancements" containing an array of the full JSON objects for the sections you have selected.
If you find no enhancements, return an empty array. Do not add any explanatory text.

USER'S SELECTED TEXT:
"%s"

LARGE CONTEXT:
`,
	core.CategoryConnections: `
You are a highly intelligent AI assistant specializing in document analysis. Your task is to analyze a user's selected text and a large list of context sections to find **only the connections**.
1.  Analyze all the provided context sections.
2.  Identify the top 5 most relevant sections that are thematically related to the user's selection but are not direct enhancements or contradictions.
3.  Return a JSON object with a single key "connections" containing an array of the full JSON objects for the sections you have selected.
If you find no connections, return an empty array. Do not add any explanatory text.

USER'S SELECTED TEXT:
"%s"

LARGE CONTEXT:
`,
}

// Arguments: persona, persona, style guide, selection.
const personaPodcastPrompt = `
You are a creative podcast script writer. You will be given a user's selected text and a large list of up to 200 context sections.
Your task is to analyze all the sections to find the most interesting and relevant information, then create a conversational podcast in the style of a "%s".

Generate a natural conversation between a Host and an Analyst following the %s style. The conversation should be 8-12 exchanges total (4-6 from each speaker).

Return ONLY a JSON object with a single key "conversation" containing an array of strings where:
- Even indices (0, 2, 4, ...): Host speaking
- Odd indices (1, 3, 5, ...): Analyst speaking

Each exchange should be 1-3 sentences and sound natural and conversational. Do not include speaker names in the text - just the dialogue.

Style Guide: %s

Example format:
{"conversation": ["Welcome to our podcast! Today we're exploring...", "Thanks! This topic is fascinating because...", "That's a great point. What I find interesting is...", "Exactly, and the data shows..."]}

USER'S SELECTED TEXT:
"%s"

LARGE CONTEXT (Up to 200 sections):
`

func insightPrompt(cat core.Category, selection string) string {
	return fmt.Sprintf(insightPrompts[cat], selection)
}

func podcastPrompt(p core.Persona, selection string) string {
	return fmt.Sprintf(personaPodcastPrompt, p, p, p.StyleGuide(), selection)
}

// compactContext serializes sections for the insight prompts.
func compactContext(sections []core.Section) (string, error) {
	b, err := json.Marshal(sections)
	if err != nil {
		return "", fmt.Errorf("failed to serialize context: %w", err)
	}
	return string(b), nil
}

// indentedContext serializes sections for the podcast prompt.
func indentedContext(sections []core.Section) (string, error) {
	b, err := json.MarshalIndent(sections, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize context: %w", err)
	}
	return string(b), nil
}
