package llm

import (
	"errors"
	"fmt"
)

// ErrBlocked is returned when the model produced no usable content, for
// example because the prompt or the candidate was blocked by safety filters.
var ErrBlocked = errors.New("generation blocked")

// TransportError wraps a failure talking to an upstream service.
type TransportError struct {
	Service string // gemini, vectorstore, reranker, tts
	Op      string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// EmbeddingError reports that no vector could be produced for an input.
type EmbeddingError struct {
	Reason string
	Err    error
}

func (e *EmbeddingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("embedding failed: %s: %v", e.Reason, e.Err)
	}
	return "embedding failed: " + e.Reason
}

func (e *EmbeddingError) Unwrap() error { return e.Err }
