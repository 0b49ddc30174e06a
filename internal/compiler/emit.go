package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/salin/internal/ir"
	"github.com/roach88/salin/internal/tag"
)

// indent matches the layout the resources are written with by hand.
const indent = "    "

// member is one key/value pair of an ordered JSON object.
type member struct {
	key   string
	value any
}

// object is a JSON object that marshals its members in slice order.
type object []member

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalRaw(m.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := marshalRaw(m.value)
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", m.key, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalRaw encodes v without HTML escaping. Non-ASCII text is written as-is.
func marshalRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// EncodeLexicon renders entries in the dictionary/action resource format.
func EncodeLexicon(entries []ir.LexicalEntry) ([]byte, error) {
	doc := make(object, 0, len(entries))
	for _, e := range entries {
		items := make([]string, 0, len(e.Associated)+1)
		items = append(items, e.Word)
		items = append(items, e.Associated...)
		doc = append(doc, member{key: string(e.Index), value: items})
	}
	return render(doc)
}

// EncodeGrammar renders rules in the grammar resource format.
func EncodeGrammar(rules []ir.Rule) ([]byte, error) {
	doc := make(object, 0, len(rules))
	for _, r := range rules {
		bindings := make(object, 0, len(r.Bindings))
		for _, b := range r.Bindings {
			stored := b.Stored
			if stored == nil {
				stored = []tag.Stored{}
			}
			bindings = append(bindings, member{key: string(b.Index), value: stored})
		}
		doc = append(doc, member{key: r.Name, value: bindings})
	}
	return render(doc)
}

// WriteLexicon replaces the resource at path with entries.
func WriteLexicon(path string, entries []ir.LexicalEntry) error {
	data, err := EncodeLexicon(entries)
	if err != nil {
		return fmt.Errorf("encode lexicon: %w", err)
	}
	return writeFileAtomic(path, data)
}

// WriteGrammar replaces the resource at path with rules.
func WriteGrammar(path string, rules []ir.Rule) error {
	data, err := EncodeGrammar(rules)
	if err != nil {
		return fmt.Errorf("encode grammar: %w", err)
	}
	return writeFileAtomic(path, data)
}

func render(doc object) ([]byte, error) {
	compact, err := marshalRaw(doc)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", indent); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// writeFileAtomic writes to a temp file in the target directory and renames
// it over path, so readers see either the old or the new content.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
