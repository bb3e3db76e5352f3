package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformedResponse reports a reply that held no parseable JSON object.
var ErrMalformedResponse = errors.New("malformed model response")

// field is one top-level key of a parsed reply, in document order.
type field struct {
	Key   string
	Value any
}

// object is a decoded top-level JSON object that remembers key order.
type object []field

func (o object) get(key string) (any, bool) {
	for _, f := range o {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// braceSpan returns the text from the first '{' to the last '}', which also
// strips markdown code fences and prose around a JSON object.
func braceSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// parseObject decodes the brace span of text as a single JSON object. When a
// key repeats, the last value wins but the key keeps its first position.
func parseObject(text string) (object, error) {
	span, ok := braceSpan(text)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(span)))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: expected object", ErrMalformedResponse)
	}

	var obj object
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected object key", ErrMalformedResponse)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("%w: value of %q: %v", ErrMalformedResponse, key, err)
		}
		if i, seen := index[key]; seen {
			obj[i].Value = v
			continue
		}
		index[key] = len(obj)
		obj = append(obj, field{Key: key, Value: v})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after object", ErrMalformedResponse)
	}
	return obj, nil
}
