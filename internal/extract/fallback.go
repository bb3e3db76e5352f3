package extract

import "insightcast/internal/core"

var fallbackScripts = map[core.Persona][]string{
	core.PersonaDebater: {
		"Welcome to our debate-style analysis of your selected text.",
		"I believe this topic has some controversial aspects worth discussing.",
		"That's an interesting perspective. However, I see some counterarguments.",
		"Fair point, but let's consider the evidence from multiple angles.",
		"The data seems to support both viewpoints to some degree.",
		"True, this complexity makes it a fascinating subject for analysis.",
		"Let's explore what the context reveals about these different positions.",
		"The insights suggest this topic deserves deeper investigation.",
	},
	core.PersonaInvestigator: {
		"Let's investigate your selected text with a critical eye.",
		"The evidence in our context provides several key insights.",
		"What specific details support these findings?",
		"The documentation shows clear patterns worth examining.",
		"Are there any gaps in the information we should note?",
		"Good question - some areas definitely need more investigation.",
		"The factual analysis reveals important connections.",
		"This investigation approach helps uncover hidden insights.",
	},
	core.PersonaFundamentals: {
		"Let's start with the basic concepts underlying your selected text.",
		"Understanding the fundamentals is crucial for deeper analysis.",
		"What are the core principles we should establish first?",
		"The foundational elements include several key components.",
		"How do these basics connect to more advanced concepts?",
		"That's where it gets interesting - the progression is quite logical.",
		"Building from these fundamentals leads to richer understanding.",
		"Exactly, this step-by-step approach reveals the full picture.",
	},
	core.PersonaConnections: {
		"Let's explore the surprising connections in your selected text.",
		"This topic links to several unexpected areas worth discussing.",
		"What patterns do you see emerging across different domains?",
		"The connections span multiple fields in fascinating ways.",
		"Are there analogies that might help illustrate these relationships?",
		"Great question - there are some compelling parallels to consider.",
		"These cross-domain insights reveal deeper underlying principles.",
		"The interconnected nature of knowledge always amazes me.",
	},
}

var defaultScript = []string{
	"Welcome to our podcast discussion.",
	"Unfortunately, we encountered some technical difficulties.",
	"Let's explore your selected text as best we can.",
	"The context provides valuable insights worth discussing.",
	"Thank you for your patience with this analysis.",
	"We hope this perspective is still helpful.",
	"Please feel free to try again for better results.",
	"Thanks for listening to our discussion.",
}

// FallbackConversation returns the fixed eight-line script for a persona.
// Unknown personas get a generic script. The result is a fresh copy.
func FallbackConversation(p core.Persona) core.Conversation {
	lines, ok := fallbackScripts[p]
	if !ok {
		lines = defaultScript
	}
	return append(core.Conversation(nil), lines...)
}
