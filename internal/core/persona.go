package core

import "fmt"

// Persona selects the conversational framing of a generated podcast.
type Persona string

const (
	PersonaDebater      Persona = "debater"
	PersonaInvestigator Persona = "investigator"
	PersonaFundamentals Persona = "fundamentals"
	PersonaConnections  Persona = "connections"
)

var personaStyles = map[Persona]string{
	PersonaDebater:      "The Host and Analyst should present opposing viewpoints or debate the nuances of the findings.",
	PersonaInvestigator: "The Host and Analyst should dig deep into the evidence, questioning assumptions and focusing on factual details.",
	PersonaFundamentals: "The Host and Analyst should start with the most basic, foundational concepts from the context and progressively build up to the user's selected topic.",
	PersonaConnections:  "The Host and Analyst should focus on drawing surprising connections and analogies between the selected topic and other concepts found in the context, even from different domains.",
}

// Personas returns every persona in a fixed order.
func Personas() []Persona {
	return []Persona{PersonaDebater, PersonaInvestigator, PersonaFundamentals, PersonaConnections}
}

// ParsePersona validates a persona name.
func ParsePersona(name string) (Persona, error) {
	p := Persona(name)
	if _, ok := personaStyles[p]; !ok {
		return "", fmt.Errorf("unknown persona %q (available: debater, investigator, fundamentals, connections)", name)
	}
	return p, nil
}

// StyleGuide returns the instruction that shapes the persona's conversation.
func (p Persona) StyleGuide() string {
	return personaStyles[p]
}

// Conversation is an alternating Host/Analyst script. Even indices belong to
// the Host, odd indices to the Analyst.
type Conversation []string

// Speaker returns the role speaking at index i.
func (c Conversation) Speaker(i int) string {
	if i%2 == 0 {
		return "Host"
	}
	return "Analyst"
}

// PodcastSet holds one conversation per persona.
type PodcastSet map[Persona]Conversation

// NoContextConversation is returned for every persona when retrieval finds nothing.
func NoContextConversation() Conversation {
	return Conversation{
		"Cannot generate a podcast without context.",
		"Please ensure your documents are properly indexed.",
	}
}
