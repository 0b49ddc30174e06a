// Package grammar implements the grammar table: rule name → index → ordered
// tag list. Tags are kept in storage form and decoded on every read, so
// malformed elements are dropped at lookup time rather than at load.
package grammar

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/roach88/salin/internal/compiler"
	"github.com/roach88/salin/internal/ir"
	"github.com/roach88/salin/internal/tag"
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for non-fatal warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type rule struct {
	order []ir.Key
	tags  map[ir.Key][]tag.Stored
}

// Store holds grammar rules in resource order.
//
// Store is not safe for concurrent use; callers serialize access.
type Store struct {
	path   string
	order  []string
	rules  map[string]*rule
	logger *zap.Logger
}

// New returns an empty store that saves to path.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		rules:  make(map[string]*rule),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("table", "grammar"))
	return s
}

// Open loads the grammar resource at path in full.
func Open(path string, opts ...Option) (*Store, error) {
	s := New(path, opts...)

	rules, err := compiler.LoadGrammar(path)
	if err != nil {
		return nil, fmt.Errorf("open grammar table %s: %w", path, err)
	}
	for _, r := range rules {
		bucket := s.bucket(r.Name)
		for _, b := range r.Bindings {
			bucket.set(b.Index, b.Stored)
		}
	}

	s.logger.Debug("loaded table", zap.String("path", path), zap.Int("rules", len(s.order)))
	return s, nil
}

// Path returns the backing resource path.
func (s *Store) Path() string {
	return s.path
}

// Len returns the number of rules.
func (s *Store) Len() int {
	return len(s.order)
}

// RuleNames returns rule names in store order.
func (s *Store) RuleNames() []string {
	return slices.Clone(s.order)
}

// RuleTags returns the decoded tags bound to index in ruleName.
func (s *Store) RuleTags(ruleName string, index ir.Key) ([]tag.Tag, bool) {
	r, ok := s.rules[ruleName]
	if !ok {
		return nil, false
	}
	stored, ok := r.tags[index]
	if !ok {
		return nil, false
	}
	return tag.DecodeAll(stored), true
}

// AddRule binds tags to index in ruleName, creating the rule if needed and
// replacing any tags already bound there.
func (s *Store) AddRule(ruleName string, index ir.Key, tags ...tag.Tag) {
	s.AddStoredRule(ruleName, index, tag.EncodeAll(tags)...)
}

// AddStoredRule is AddRule for elements already in storage form.
func (s *Store) AddStoredRule(ruleName string, index ir.Key, stored ...tag.Stored) {
	bucket := s.bucket(ruleName)
	if _, ok := bucket.tags[index]; ok {
		s.logger.Warn("binding already exists, overwriting",
			zap.String("rule", ruleName),
			zap.String("index", string(index)))
	}
	bucket.set(index, stored)
}

// RemoveBinding deletes index from ruleName. The rule stays even when it has
// no bindings left.
func (s *Store) RemoveBinding(ruleName string, index ir.Key) bool {
	r, ok := s.rules[ruleName]
	if !ok {
		return false
	}
	if _, ok := r.tags[index]; !ok {
		return false
	}
	delete(r.tags, index)
	r.order = slices.DeleteFunc(r.order, func(k ir.Key) bool { return k == index })
	return true
}

// RemoveRule deletes a rule and all its bindings.
func (s *Store) RemoveRule(ruleName string) bool {
	if _, ok := s.rules[ruleName]; !ok {
		return false
	}
	delete(s.rules, ruleName)
	s.order = slices.DeleteFunc(s.order, func(n string) bool { return n == ruleName })
	return true
}

// FirstBinding returns the binding of index in the first rule, in store
// order, that binds it. Later rules binding the same index are not consulted.
func (s *Store) FirstBinding(index ir.Key) (ir.RuleBinding, bool) {
	for _, name := range s.order {
		if stored, ok := s.rules[name].tags[index]; ok {
			return ir.RuleBinding{RuleName: name, Index: index, Tags: tag.DecodeAll(stored)}, true
		}
	}
	return ir.RuleBinding{}, false
}

// Bindings returns every (rule, index) pair with decoded tags, in store order.
func (s *Store) Bindings() []ir.RuleBinding {
	var out []ir.RuleBinding
	for _, name := range s.order {
		r := s.rules[name]
		for _, index := range r.order {
			out = append(out, ir.RuleBinding{
				RuleName: name,
				Index:    index,
				Tags:     tag.DecodeAll(r.tags[index]),
			})
		}
	}
	return out
}

// FindRulesByTag returns every binding in which target occurs at least
// minCount times, in store order.
func (s *Store) FindRulesByTag(target tag.Tag, minCount int) []ir.TagCount {
	var out []ir.TagCount
	for _, b := range s.Bindings() {
		count := 0
		for _, t := range b.Tags {
			if t == target {
				count++
			}
		}
		if count >= minCount {
			out = append(out, ir.TagCount{
				RuleName: b.RuleName,
				Index:    b.Index,
				Count:    count,
				Tags:     b.Tags,
			})
		}
	}
	return out
}

// Rules returns all rules in storage form.
func (s *Store) Rules() []ir.Rule {
	out := make([]ir.Rule, 0, len(s.order))
	for _, name := range s.order {
		r := s.rules[name]
		rule := ir.Rule{Name: name}
		for _, index := range r.order {
			rule.Bindings = append(rule.Bindings, ir.StoredBinding{
				RuleName: name,
				Index:    index,
				Stored:   slices.Clone(r.tags[index]),
			})
		}
		out = append(out, rule)
	}
	return out
}

// Save rewrites the backing resource with the current content.
func (s *Store) Save() error {
	if err := compiler.WriteGrammar(s.path, s.Rules()); err != nil {
		return fmt.Errorf("save grammar table: %w", err)
	}
	s.logger.Debug("saved table", zap.String("path", s.path), zap.Int("rules", len(s.order)))
	return nil
}

// String renders the rules with decoded tag names.
func (s *Store) String() string {
	if len(s.order) == 0 {
		return "grammar table is empty"
	}
	var b strings.Builder
	b.WriteString("grammar rules:\n")
	for _, name := range s.order {
		r := s.rules[name]
		fmt.Fprintf(&b, "[%s]\n", name)
		for _, index := range r.order {
			names := make([]string, 0, len(r.tags[index]))
			for _, t := range tag.DecodeAll(r.tags[index]) {
				names = append(names, t.String())
			}
			fmt.Fprintf(&b, "  %s: [%s]\n", index, strings.Join(names, ", "))
		}
	}
	return b.String()
}

func (s *Store) bucket(name string) *rule {
	r, ok := s.rules[name]
	if !ok {
		r = &rule{tags: make(map[ir.Key][]tag.Stored)}
		s.rules[name] = r
		s.order = append(s.order, name)
	}
	return r
}

func (r *rule) set(index ir.Key, stored []tag.Stored) {
	if _, ok := r.tags[index]; !ok {
		r.order = append(r.order, index)
	}
	r.tags[index] = slices.Clone(stored)
}
