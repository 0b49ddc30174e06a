package compiler

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/roach88/salin/internal/ir"
	"github.com/roach88/salin/internal/tag"
)

//go:embed schema.cue
var schemaCUE string

// Schema definitions in schema.cue.
const (
	LexiconSchema = "#Lexicon"
	GrammarSchema = "#Grammar"
)

// CompileError describes a resource that failed to parse or validate.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LexiconResult is a compiled dictionary or action resource.
type LexiconResult struct {
	// Entries in file order.
	Entries []ir.LexicalEntry
	// Empty lists the indices whose stored list had no elements. They carry
	// no canonical word and are not part of Entries.
	Empty []ir.Key
}

// ParseFile reads a JSON resource into a CUE value. Field order of the file
// is preserved by the value's iterators.
func ParseFile(ctx *cue.Context, path string) (cue.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, fmt.Errorf("read resource: %w", err)
	}
	return ParseBytes(ctx, path, data)
}

// ParseBytes is ParseFile for in-memory content; filename is used for
// error positions only.
func ParseBytes(ctx *cue.Context, filename string, data []byte) (cue.Value, error) {
	expr, err := cuejson.Extract(filename, data)
	if err != nil {
		return cue.Value{}, formatCUEError(err)
	}
	v := ctx.BuildExpr(expr)
	if err := v.Err(); err != nil {
		return cue.Value{}, formatCUEError(err)
	}
	return v, nil
}

// CheckSchema validates v against one of the schema definitions.
func CheckSchema(v cue.Value, definition string) error {
	schema := v.Context().CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath(definition))
	if !def.Exists() {
		return fmt.Errorf("schema definition %s not found", definition)
	}
	if err := def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}
	return nil
}

// LoadLexicon reads and compiles a dictionary or action resource.
func LoadLexicon(path string) (*LexiconResult, error) {
	v, err := ParseFile(cuecontext.New(), path)
	if err != nil {
		return nil, err
	}
	return CompileLexicon(v)
}

// LoadGrammar reads and compiles a grammar resource.
func LoadGrammar(path string) ([]ir.Rule, error) {
	v, err := ParseFile(cuecontext.New(), path)
	if err != nil {
		return nil, err
	}
	return CompileGrammar(v)
}

// CompileLexicon turns a parsed lexicon value into entries. The first element
// of each list is the canonical word, the rest are associated strings.
func CompileLexicon(v cue.Value) (*LexiconResult, error) {
	if err := CheckSchema(v, LexiconSchema); err != nil {
		return nil, err
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	result := &LexiconResult{}
	for iter.Next() {
		index := ir.Key(iter.Label())
		items, err := stringList(iter.Value())
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			result.Empty = append(result.Empty, index)
			continue
		}
		result.Entries = append(result.Entries, ir.LexicalEntry{
			Index:      index,
			Word:       items[0],
			Associated: items[1:],
		})
	}
	return result, nil
}

// CompileGrammar turns a parsed grammar value into rules. Tag elements are
// kept in storage form; decoding happens on read.
func CompileGrammar(v cue.Value) ([]ir.Rule, error) {
	if err := CheckSchema(v, GrammarSchema); err != nil {
		return nil, err
	}

	ruleIter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var rules []ir.Rule
	for ruleIter.Next() {
		rule := ir.Rule{Name: ruleIter.Label()}

		bindIter, err := ruleIter.Value().Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for bindIter.Next() {
			stored, err := storedList(bindIter.Value())
			if err != nil {
				return nil, err
			}
			rule.Bindings = append(rule.Bindings, ir.StoredBinding{
				RuleName: rule.Name,
				Index:    ir.Key(bindIter.Label()),
				Stored:   stored,
			})
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func stringList(v cue.Value) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	items := []string{}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		items = append(items, s)
	}
	return items, nil
}

func storedList(v cue.Value) ([]tag.Stored, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	stored := []tag.Stored{}
	for iter.Next() {
		data, err := iter.Value().MarshalJSON()
		if err != nil {
			return nil, formatCUEError(err)
		}
		s, err := tag.ParseStored(data)
		if err != nil {
			return nil, &CompileError{Field: "tag", Message: err.Error(), Pos: iter.Value().Pos()}
		}
		stored = append(stored, s)
	}
	return stored, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
