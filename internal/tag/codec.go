package tag

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Shape classifies a stored tag element. Each shape has exactly one decode
// rule; see Decode.
type Shape int

const (
	// ShapeDescriptor is an object of the form {"type": "<Domain>", "value": ...}.
	ShapeDescriptor Shape = iota
	// ShapeInt is a bare JSON integer.
	ShapeInt
	// ShapeOther is any other JSON value.
	ShapeOther
)

func (s Shape) String() string {
	switch s {
	case ShapeDescriptor:
		return "descriptor"
	case ShapeInt:
		return "int"
	case ShapeOther:
		return "other"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// Stored is one element of a rule's tag list as it appears in the grammar
// resource. The raw JSON text is retained so that saving never rewrites
// elements the codec does not understand.
type Stored struct {
	Shape Shape
	// Type is the descriptor's "type" member, empty when missing or not a string.
	Type string
	// Value is the descriptor's "value" member, or the whole element for
	// ShapeInt and ShapeOther.
	Value json.RawMessage

	raw json.RawMessage
}

// UnmarshalJSON sniffs the element's shape. It only fails on invalid JSON.
func (s *Stored) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		return fmt.Errorf("invalid tag element %q", data)
	}
	raw := append(json.RawMessage(nil), data...)

	switch {
	case len(data) > 0 && data[0] == '{':
		var members map[string]json.RawMessage
		if err := json.Unmarshal(data, &members); err != nil {
			return fmt.Errorf("decode tag descriptor: %w", err)
		}
		var typ string
		if t, ok := members["type"]; ok {
			// non-string types leave Type empty and the element unresolvable
			_ = json.Unmarshal(t, &typ)
		}
		*s = Stored{Shape: ShapeDescriptor, Type: typ, Value: members["value"], raw: raw}
	case isIntLiteral(data):
		*s = Stored{Shape: ShapeInt, Value: raw, raw: raw}
	default:
		*s = Stored{Shape: ShapeOther, Value: raw, raw: raw}
	}
	return nil
}

// MarshalJSON returns the element's raw JSON text.
func (s Stored) MarshalJSON() ([]byte, error) {
	if len(s.raw) == 0 {
		return []byte("null"), nil
	}
	return s.raw, nil
}

// ParseStored decodes a single stored element.
func ParseStored(data []byte) (Stored, error) {
	var s Stored
	err := s.UnmarshalJSON(data)
	return s, err
}

// Encode converts a canonical tag to its storage form. Resolved tags become
// descriptors; placeholders become bare integers when their literal is one and
// JSON strings otherwise.
func Encode(t Tag) Stored {
	if t.IsPlaceholder() {
		lit := []byte(t.Literal)
		if isIntLiteral(lit) && json.Valid(lit) {
			return Stored{Shape: ShapeInt, Value: lit, raw: lit}
		}
		quoted, _ := json.Marshal(t.Literal)
		return Stored{Shape: ShapeOther, Value: quoted, raw: quoted}
	}

	value := []byte(fmt.Sprintf("%d", t.Value))
	raw, _ := json.Marshal(struct {
		Type  string `json:"type"`
		Value int    `json:"value"`
	}{t.Domain.String(), t.Value})
	return Stored{Shape: ShapeDescriptor, Type: t.Domain.String(), Value: value, raw: raw}
}

// EncodeAll encodes tags in order.
func EncodeAll(tags []Tag) []Stored {
	out := make([]Stored, len(tags))
	for i, t := range tags {
		out[i] = Encode(t)
	}
	return out
}

// Decode resolves a stored element to a canonical tag.
//
//   - descriptor: the domain is looked up by Type, then the value is resolved
//     by numeric code and, failing that, by symbolic name. Anything that does
//     not resolve reports ok=false.
//   - int: a placeholder carrying the integer's text.
//   - other: a placeholder carrying the string's content, or the raw JSON text
//     for non-string values.
func Decode(s Stored) (Tag, bool) {
	switch s.Shape {
	case ShapeDescriptor:
		return decodeDescriptor(s)
	case ShapeInt:
		return Placeholder(string(s.Value)), true
	default:
		var str string
		if err := json.Unmarshal(s.Value, &str); err == nil {
			return Placeholder(str), true
		}
		return Placeholder(string(s.Value)), true
	}
}

// DecodeAll decodes elements in order, dropping the ones that do not resolve.
func DecodeAll(stored []Stored) []Tag {
	out := make([]Tag, 0, len(stored))
	for _, s := range stored {
		if t, ok := Decode(s); ok {
			out = append(out, t)
		}
	}
	return out
}

func decodeDescriptor(s Stored) (Tag, bool) {
	d, ok := LookupDomain(s.Type)
	if !ok || len(s.Value) == 0 {
		return Tag{}, false
	}

	var v any
	if err := json.Unmarshal(s.Value, &v); err != nil {
		return Tag{}, false
	}
	switch val := v.(type) {
	case float64:
		if val != math.Trunc(val) || val < math.MinInt32 || val > math.MaxInt32 {
			return Tag{}, false
		}
		if _, ok := d.Name(int(val)); ok {
			return Tag{Domain: d, Value: int(val)}, true
		}
	case string:
		if code, ok := d.Code(val); ok {
			return Tag{Domain: d, Value: code}, true
		}
	}
	return Tag{}, false
}

// isIntLiteral reports whether data is a JSON number without fraction or
// exponent.
func isIntLiteral(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	i := 0
	if data[0] == '-' {
		i++
	}
	if i == len(data) {
		return false
	}
	for ; i < len(data); i++ {
		if data[i] < '0' || data[i] > '9' {
			return false
		}
	}
	return true
}
