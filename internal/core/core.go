package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// UnknownDocument is the document name given to records that arrive without one.
const UnknownDocument = "Unknown Document"

// PathSeparator joins heading breadcrumbs when a full path is flattened to a string.
const PathSeparator = " > "

// BoundingBox is the page-space rectangle that encloses a section's lines.
type BoundingBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Section is one retrievable passage of a previously indexed document.
type Section struct {
	DocumentName    string         `json:"document_name"`          // Source document file name
	PageNumber      int            `json:"page_number"`            // Zero-based page the section starts on
	SectionTitle    string         `json:"section_title"`          // Heading text of the section
	FullPath        []string       `json:"full_path,omitempty"`    // Heading breadcrumb, outermost first
	OriginalContent string         `json:"original_content"`       // Verbatim passage text, the dedup identity
	BoundingBox     *BoundingBox   `json:"bounding_box,omitempty"` // nil serializes as {}
	Extra           map[string]any `json:"-"`                      // Additional keys carried through unchanged
}

var knownSectionKeys = map[string]bool{
	"document_name":    true,
	"page_number":      true,
	"section_title":    true,
	"full_path":        true,
	"original_content": true,
	"bounding_box":     true,
}

// MarshalJSON writes the known fields followed by any extra keys. A missing
// bounding box is written as an empty object.
func (s Section) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Extra)+6)
	for k, v := range s.Extra {
		if !knownSectionKeys[k] {
			out[k] = v
		}
	}
	out["document_name"] = s.DocumentName
	out["page_number"] = s.PageNumber
	out["original_content"] = s.OriginalContent
	out["section_title"] = s.SectionTitle
	if len(s.FullPath) > 0 {
		out["full_path"] = s.FullPath
	}
	if s.BoundingBox != nil {
		out["bounding_box"] = s.BoundingBox
	} else {
		out["bounding_box"] = struct{}{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the same loose shapes as SectionFromMap.
func (s *Section) UnmarshalJSON(data []byte) error {
	var m map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("section must be a JSON object")
	}
	*s = SectionFromMap(m)
	return nil
}

// SectionFromMap converts an untrusted key-value mapping into a Section.
// Missing or mistyped fields are left at their zero values; callers apply
// their own defaults.
func SectionFromMap(m map[string]any) Section {
	s := Section{
		DocumentName:    stringField(m["document_name"]),
		SectionTitle:    stringField(m["section_title"]),
		OriginalContent: stringField(m["original_content"]),
		FullPath:        pathField(m["full_path"]),
		BoundingBox:     BoundingBoxFromValue(m["bounding_box"]),
	}
	if n, ok := IntFromValue(m["page_number"]); ok {
		s.PageNumber = n
	}
	for k, v := range m {
		if knownSectionKeys[k] {
			continue
		}
		if s.Extra == nil {
			s.Extra = make(map[string]any)
		}
		s.Extra[k] = v
	}
	return s
}

// PathString joins the heading breadcrumb for display and storage.
func (s Section) PathString() string {
	return strings.Join(s.FullPath, PathSeparator)
}

// BoundingBoxFromValue reads a bounding box from a mapping or from a JSON
// encoded string. Anything else, including malformed JSON, yields nil.
func BoundingBoxFromValue(v any) *BoundingBox {
	switch b := v.(type) {
	case map[string]any:
		return boxFromMap(b)
	case string:
		b = strings.TrimSpace(b)
		if b == "" {
			return nil
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(b), &m); err != nil {
			return nil
		}
		return boxFromMap(m)
	case *BoundingBox:
		return b
	case BoundingBox:
		return &b
	}
	return nil
}

func boxFromMap(m map[string]any) *BoundingBox {
	if len(m) == 0 {
		return nil
	}
	var box BoundingBox
	var found bool
	for key, dst := range map[string]*float64{"x0": &box.X0, "y0": &box.Y0, "x1": &box.X1, "y1": &box.Y1} {
		if f, ok := FloatFromValue(m[key]); ok {
			*dst = f
			found = true
		}
	}
	if !found {
		return nil
	}
	return &box
}

// IntFromValue reads a non-negative integer from any JSON-decoded number or
// numeric string. Values above math.MaxInt32 are rejected.
func IntFromValue(v any) (int, bool) {
	f, ok := FloatFromValue(v)
	if !ok || math.IsNaN(f) || f < 0 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// FloatFromValue reads a float from any JSON-decoded number or numeric string.
func FloatFromValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func stringField(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return ""
}

func pathField(v any) []string {
	switch p := v.(type) {
	case []any:
		out := make([]string, 0, len(p))
		for _, e := range p {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case []string:
		return p
	case string:
		if strings.TrimSpace(p) == "" {
			return nil
		}
		return strings.Split(p, PathSeparator)
	}
	return nil
}
