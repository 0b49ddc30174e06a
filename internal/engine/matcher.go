package engine

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/roach88/salin/internal/ir"
	"github.com/roach88/salin/internal/tag"
)

// DefaultMinMatch is the score threshold used when none is configured.
const DefaultMinMatch = 5

// WordIndex resolves canonical words to indices. Implemented by
// *lexicon.Store.
type WordIndex interface {
	WordToIndex(word string) (ir.Key, bool)
}

// RuleSet exposes grammar bindings. Implemented by *grammar.Store.
type RuleSet interface {
	FirstBinding(index ir.Key) (ir.RuleBinding, bool)
	Bindings() []ir.RuleBinding
}

// Recorder persists match runs. Implemented by *store.Store.
type Recorder interface {
	WriteMatchRun(ctx context.Context, run ir.MatchRun) (int64, error)
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithLogger sets the matcher's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Matcher) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithRunIDs sets the generator for match-run IDs.
func WithRunIDs(gen RunIDGenerator) Option {
	return func(m *Matcher) {
		if gen != nil {
			m.runIDs = gen
		}
	}
}

// Matcher scores grammar rules against input words.
type Matcher struct {
	words  WordIndex
	rules  RuleSet
	logger *zap.Logger
	runIDs RunIDGenerator
}

// New creates a matcher over a dictionary and a grammar table.
func New(words WordIndex, rules RuleSet, opts ...Option) *Matcher {
	m := &Matcher{
		words:  words,
		rules:  rules,
		logger: zap.NewNop(),
		runIDs: UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Bind resolves each word to its index and the tags of the first rule
// binding that index. Words that are not in the dictionary, or whose index no
// rule lists, produce no binding.
func (m *Matcher) Bind(words []string) []ir.WordTypeBinding {
	var bindings []ir.WordTypeBinding
	for _, word := range words {
		index, ok := m.words.WordToIndex(word)
		if !ok {
			m.logger.Debug("word not in dictionary", zap.String("word", word))
			continue
		}
		rb, ok := m.rules.FirstBinding(index)
		if !ok {
			m.logger.Debug("index not bound by any rule",
				zap.String("word", word),
				zap.String("index", string(index)))
			continue
		}
		bindings = append(bindings, ir.WordTypeBinding{
			Word:  word,
			Index: index,
			Tags:  rb.Tags,
		})
	}
	return bindings
}

// Match scores every rule binding against words and returns those scoring
// at least minMatch, highest score first, ties in table order. A negative
// minMatch behaves like 0. Empty input, or input whose words bind no tags,
// yields an empty result.
func (m *Matcher) Match(words []string, minMatch int) []ir.Match {
	bindings := m.Bind(words)

	inputTags := make(map[tag.Tag]struct{})
	for _, b := range bindings {
		for _, t := range b.Tags {
			inputTags[t] = struct{}{}
		}
	}
	if len(inputTags) == 0 {
		return []ir.Match{}
	}

	matches := []ir.Match{}
	for _, rb := range m.rules.Bindings() {
		count := 0
		for _, t := range rb.Tags {
			if _, ok := inputTags[t]; ok {
				count++
			}
		}
		if count < minMatch {
			continue
		}
		matches = append(matches, ir.Match{
			RuleName:     rb.RuleName,
			Index:        rb.Index,
			MatchCount:   count,
			RuleTags:     rb.Tags,
			MatchedWords: matchedWords(bindings, rb.Tags),
		})
	}

	slices.SortStableFunc(matches, func(a, b ir.Match) int {
		return cmp.Compare(b.MatchCount, a.MatchCount)
	})

	m.logger.Debug("matched",
		zap.Strings("words", words),
		zap.Int("bound", len(bindings)),
		zap.Int("min_match", minMatch),
		zap.Int("results", len(matches)))
	return matches
}

// MatchAndRecord runs Match and writes the run to rec. The returned run
// carries the ID and the sequence number the recorder assigned.
func (m *Matcher) MatchAndRecord(ctx context.Context, rec Recorder, words []string, minMatch int) (ir.MatchRun, error) {
	run := ir.MatchRun{
		ID:       m.runIDs.Generate(),
		Words:    slices.Clone(words),
		MinMatch: minMatch,
		Matches:  m.Match(words, minMatch),
	}
	seq, err := rec.WriteMatchRun(ctx, run)
	if err != nil {
		return run, fmt.Errorf("record match run: %w", err)
	}
	run.Seq = seq
	m.logger.Info("recorded match run", zap.String("run_id", run.ID), zap.Int64("seq", seq))
	return run, nil
}

// matchedWords reports, per bound word, which of its tags occur in ruleTags.
func matchedWords(bindings []ir.WordTypeBinding, ruleTags []tag.Tag) []ir.MatchedWord {
	out := []ir.MatchedWord{}
	for _, b := range bindings {
		var hit []tag.Tag
		for _, t := range b.Tags {
			if slices.Contains(ruleTags, t) {
				hit = append(hit, t)
			}
		}
		if len(hit) > 0 {
			out = append(out, ir.MatchedWord{Word: b.Word, MatchedTags: hit})
		}
	}
	return out
}
