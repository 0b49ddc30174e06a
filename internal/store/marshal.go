package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/salin/internal/tag"
)

// matchedWordRow is the stored form of ir.MatchedWord. Tags are kept in
// grammar storage form so placeholders read back unchanged.
type matchedWordRow struct {
	Word        string       `json:"word"`
	MatchedTags []tag.Stored `json:"matched_tags"`
}

// marshalJSON encodes v as compact JSON TEXT with HTML escaping disabled, so
// non-ASCII words are stored as written.
func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	// Encoder adds a trailing newline
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func marshalStrings(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := marshalJSON(items)
	if err != nil {
		return "", fmt.Errorf("marshal strings: %w", err)
	}
	return data, nil
}

func unmarshalStrings(data string) ([]string, error) {
	out := []string{}
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("unmarshal strings: %w", err)
	}
	return out, nil
}

func marshalStored(stored []tag.Stored) (string, error) {
	if stored == nil {
		stored = []tag.Stored{}
	}
	data, err := marshalJSON(stored)
	if err != nil {
		return "", fmt.Errorf("marshal tags: %w", err)
	}
	return data, nil
}

func unmarshalStored(data string) ([]tag.Stored, error) {
	out := []tag.Stored{}
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	return out, nil
}

func marshalTags(tags []tag.Tag) (string, error) {
	return marshalStored(tag.EncodeAll(tags))
}

func unmarshalTags(data string) ([]tag.Tag, error) {
	stored, err := unmarshalStored(data)
	if err != nil {
		return nil, err
	}
	return tag.DecodeAll(stored), nil
}
