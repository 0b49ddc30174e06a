package compiler

import (
	"fmt"

	"github.com/roach88/salin/internal/ir"
	"github.com/roach88/salin/internal/tag"
)

// Consistency finding codes (E100-E199). None of these stop a store from
// loading; they point at data the lookups will silently skip.
const (
	ErrDuplicateWord       = "E101" // canonical word repeated; later indices unreachable by word
	ErrGrammarIndexMissing = "E102" // grammar binds an index the dictionary lacks
	ErrActionIndexMissing  = "E103" // action table uses an index the dictionary lacks
	ErrUnresolvableTag     = "E104" // tag element will be dropped when decoded
	ErrWordMismatch        = "E105" // action table and dictionary disagree on the word
)

// ValidationError is one consistency finding.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate cross-checks the three tables. Returns all findings (does not
// fail-fast) in table order.
func Validate(dictionary, actions []ir.LexicalEntry, rules []ir.Rule) []ValidationError {
	var errs []ValidationError

	errs = append(errs, duplicateWords("dictionary", dictionary)...)
	errs = append(errs, duplicateWords("actions", actions)...)

	words := make(map[ir.Key]string, len(dictionary))
	for _, e := range dictionary {
		words[e.Index] = e.Word
	}

	for _, e := range actions {
		word, ok := words[e.Index]
		switch {
		case !ok:
			errs = append(errs, ValidationError{
				Field:   "actions." + string(e.Index),
				Message: fmt.Sprintf("index %s (%q) has no dictionary entry", e.Index, e.Word),
				Code:    ErrActionIndexMissing,
			})
		case word != e.Word:
			errs = append(errs, ValidationError{
				Field:   "actions." + string(e.Index),
				Message: fmt.Sprintf("action word %q differs from dictionary word %q", e.Word, word),
				Code:    ErrWordMismatch,
			})
		}
	}

	for _, r := range rules {
		for _, b := range r.Bindings {
			field := "grammar." + r.Name + "." + string(b.Index)
			if _, ok := words[b.Index]; !ok {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("index %s has no dictionary entry", b.Index),
					Code:    ErrGrammarIndexMissing,
				})
			}
			for i, s := range b.Stored {
				if _, ok := tag.Decode(s); ok {
					continue
				}
				raw, _ := s.MarshalJSON()
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s[%d]", field, i),
					Message: fmt.Sprintf("tag %s does not resolve and is ignored", raw),
					Code:    ErrUnresolvableTag,
				})
			}
		}
	}

	return errs
}

func duplicateWords(table string, entries []ir.LexicalEntry) []ValidationError {
	var errs []ValidationError
	first := make(map[string]ir.Key, len(entries))
	for _, e := range entries {
		if prev, ok := first[e.Word]; ok {
			errs = append(errs, ValidationError{
				Field:   table + "." + string(e.Index),
				Message: fmt.Sprintf("word %q already used by index %s; lookups by word return %s", e.Word, prev, prev),
				Code:    ErrDuplicateWord,
			})
			continue
		}
		first[e.Word] = e.Index
	}
	return errs
}
