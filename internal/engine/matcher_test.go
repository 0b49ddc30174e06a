package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/salin/internal/grammar"
	"github.com/roach88/salin/internal/ir"
	"github.com/roach88/salin/internal/lexicon"
	"github.com/roach88/salin/internal/tag"
)

var (
	noun       = tag.MustNew(tag.PartOfSpeech, 1)
	verb       = tag.MustNew(tag.PartOfSpeech, 2)
	past       = tag.MustNew(tag.Tense, 2)
	indicative = tag.MustNew(tag.Mood, 1)
	plural     = tag.MustNew(tag.Other, 1)
	singular   = tag.MustNew(tag.Other, 2)
)

// fakeWords resolves words through a fixed map.
type fakeWords map[string]ir.Key

func (f fakeWords) WordToIndex(word string) (ir.Key, bool) {
	k, ok := f[word]
	return k, ok
}

// fakeRules serves bindings in slice order.
type fakeRules []ir.RuleBinding

func (f fakeRules) FirstBinding(index ir.Key) (ir.RuleBinding, bool) {
	for _, b := range f {
		if b.Index == index {
			return b, true
		}
	}
	return ir.RuleBinding{}, false
}

func (f fakeRules) Bindings() []ir.RuleBinding {
	return f
}

func binding(rule string, index ir.Key, tags ...tag.Tag) ir.RuleBinding {
	return ir.RuleBinding{RuleName: rule, Index: index, Tags: tags}
}

func newTestMatcher() *Matcher {
	words := fakeWords{"dogs": "1", "ran": "2", "cat": "3"}
	rules := fakeRules{
		binding("lexRule", "1", noun, plural),
		binding("lexRule", "2", verb, past, indicative),
		binding("lexRule", "3", noun, singular),
		binding("clauseRule", "9", noun, plural, verb, past, indicative),
	}
	return New(words, rules)
}

func summary(matches []ir.Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.RuleName + "/" + string(m.Index)
	}
	return out
}

func TestMatch_EmptyInput(t *testing.T) {
	m := newTestMatcher()

	got := m.Match(nil, 0)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, m.Match([]string{}, DefaultMinMatch))
}

func TestMatch_UnknownWordsOnly(t *testing.T) {
	m := newTestMatcher()
	assert.Empty(t, m.Match([]string{"zebra", "quokka"}, 0))
}

func TestMatch_UnknownWordSkipped(t *testing.T) {
	m := newTestMatcher()

	withUnknown := m.Match([]string{"dogs", "zebra", "ran"}, 1)
	without := m.Match([]string{"dogs", "ran"}, 1)
	assert.Equal(t, without, withUnknown)
}

func TestMatch_ExactRuleTagSet(t *testing.T) {
	m := newTestMatcher()

	got := m.Match([]string{"dogs", "ran"}, DefaultMinMatch)
	require.Len(t, got, 1)
	assert.Equal(t, "clauseRule", got[0].RuleName)
	assert.Equal(t, ir.Key("9"), got[0].Index)
	assert.Equal(t, 5, got[0].MatchCount)
	assert.Equal(t, []tag.Tag{noun, plural, verb, past, indicative}, got[0].RuleTags)
}

func TestMatch_RankedByCountDescending(t *testing.T) {
	m := newTestMatcher()

	got := m.Match([]string{"dogs", "ran"}, 1)
	assert.Equal(t, []string{"clauseRule/9", "lexRule/2", "lexRule/1", "lexRule/3"}, summary(got))

	counts := make([]int, len(got))
	for i, r := range got {
		counts[i] = r.MatchCount
	}
	assert.Equal(t, []int{5, 3, 2, 1}, counts)
}

func TestMatch_TiesKeepTableOrder(t *testing.T) {
	words := fakeWords{"a": "1"}
	rules := fakeRules{
		binding("first", "1", noun),
		binding("second", "5", noun, singular),
		binding("third", "6", plural, noun),
		binding("fourth", "7", verb),
	}
	m := New(words, rules)

	got := m.Match([]string{"a"}, 1)
	assert.Equal(t, []string{"first/1", "second/5", "third/6"}, summary(got))
}

func TestMatch_MembershipNotMultiplicity(t *testing.T) {
	words := fakeWords{"a": "1", "b": "2"}
	rules := fakeRules{
		binding("lex", "1", noun),
		binding("lex", "2", noun),
		binding("once", "8", noun),
		binding("twice", "9", noun, noun),
	}
	m := New(words, rules)

	got := m.Match([]string{"a", "b", "a"}, 0)
	byKey := make(map[string]int)
	for _, r := range got {
		byKey[r.RuleName+"/"+string(r.Index)] = r.MatchCount
	}
	assert.Equal(t, 1, byKey["once/8"], "input multiplicity does not inflate the count")
	assert.Equal(t, 2, byKey["twice/9"], "each rule tag occurrence is tested")
}

func TestMatch_MatchedWords(t *testing.T) {
	m := newTestMatcher()

	got := m.Match([]string{"dogs", "cat", "ran"}, 3)
	require.Equal(t, []string{"clauseRule/9", "lexRule/2"}, summary(got))

	assert.Equal(t, []ir.MatchedWord{
		{Word: "dogs", MatchedTags: []tag.Tag{noun, plural}},
		{Word: "cat", MatchedTags: []tag.Tag{noun}},
		{Word: "ran", MatchedTags: []tag.Tag{verb, past, indicative}},
	}, got[0].MatchedWords)

	assert.Equal(t, []ir.MatchedWord{
		{Word: "ran", MatchedTags: []tag.Tag{verb, past, indicative}},
	}, got[1].MatchedWords)
}

func TestMatch_MinMatchMonotonic(t *testing.T) {
	m := newTestMatcher()
	input := []string{"dogs", "cat"}

	prev := m.Match(input, 0)
	for threshold := 1; threshold <= 6; threshold++ {
		cur := m.Match(input, threshold)
		assert.LessOrEqual(t, len(cur), len(prev), "threshold %d", threshold)
		prevKeys := summary(prev)
		for _, k := range summary(cur) {
			assert.Contains(t, prevKeys, k, "threshold %d", threshold)
		}
		prev = cur
	}
}

func TestMatch_NegativeMinMatchActsAsZero(t *testing.T) {
	m := newTestMatcher()
	assert.Equal(t, m.Match([]string{"cat"}, 0), m.Match([]string{"cat"}, -3))
}

func TestMatch_ZeroThresholdIncludesZeroCounts(t *testing.T) {
	m := newTestMatcher()

	got := m.Match([]string{"ran"}, 0)
	require.Len(t, got, 4)
	last := got[len(got)-1]
	assert.Equal(t, "lexRule/3", last.RuleName+"/"+string(last.Index))
	assert.Equal(t, 0, last.MatchCount)
	assert.NotNil(t, last.MatchedWords)
	assert.Empty(t, last.MatchedWords)
}

func TestMatch_WordsBindingNoTags(t *testing.T) {
	words := fakeWords{"a": "1"}
	rules := fakeRules{
		binding("emptyRule", "1"),
		binding("other", "2", noun),
	}
	m := New(words, rules)

	assert.Empty(t, m.Match([]string{"a"}, 0))
}

func TestBind_FirstRuleWins(t *testing.T) {
	words := fakeWords{"run": "1"}
	rules := fakeRules{
		binding("verbRule", "1", verb),
		binding("nounRule", "1", noun),
	}
	m := New(words, rules)

	got := m.Bind([]string{"run"})
	require.Len(t, got, 1)
	assert.Equal(t, ir.WordTypeBinding{Word: "run", Index: "1", Tags: []tag.Tag{verb}}, got[0])

	matches := m.Match([]string{"run"}, 1)
	assert.Equal(t, []string{"verbRule/1"}, summary(matches), "the noun reading is never bound")
}

func TestBind_IndexWithoutRule(t *testing.T) {
	m := New(fakeWords{"lonely": "44"}, fakeRules{binding("r", "1", noun)})
	assert.Empty(t, m.Bind([]string{"lonely"}))
}

func TestMatch_ReflectsStoreMutations(t *testing.T) {
	dir := t.TempDir()
	dict := lexicon.New(lexicon.Dictionary, filepath.Join(dir, "dics.json"))
	rules := grammar.New(filepath.Join(dir, "grammars.json"))
	m := New(dict, rules)

	dict.SetEntry("1", "run")
	rules.AddRule("verbRule", "1", verb)
	require.Len(t, m.Match([]string{"run"}, 1), 1)

	rules.AddRule("verbRule", "1", noun)
	rules.AddRule("nounRule", "2", noun)
	got := m.Match([]string{"run"}, 1)
	assert.Equal(t, []string{"verbRule/1", "nounRule/2"}, summary(got))

	dict.RemoveEntry("1")
	assert.Empty(t, m.Match([]string{"run"}, 1))
}

func TestMatch_DictionaryScenario(t *testing.T) {
	dir := t.TempDir()
	dictPath := filepath.Join(dir, "dics.json")
	grammarPath := filepath.Join(dir, "grammars.json")
	require.NoError(t, os.WriteFile(dictPath, []byte(`{"1": ["run", "to move quickly"]}`), 0o644))
	require.NoError(t, os.WriteFile(grammarPath,
		[]byte(`{"verbRule": {"1": [{"type":"DefinitionType","value":2}]}}`), 0o644))

	dict, err := lexicon.Open(lexicon.Dictionary, dictPath)
	require.NoError(t, err)
	rules, err := grammar.Open(grammarPath)
	require.NoError(t, err)

	got := New(dict, rules).Match([]string{"run"}, 1)
	require.Len(t, got, 1)
	assert.Equal(t, "verbRule", got[0].RuleName)
	assert.Equal(t, ir.Key("1"), got[0].Index)
	assert.Equal(t, 1, got[0].MatchCount)

	withUnknown := New(dict, rules).Match([]string{"fly", "run"}, 1)
	assert.Equal(t, got, withUnknown)
}

func TestMatch_UnresolvableAndPlaceholderTags(t *testing.T) {
	dir := t.TempDir()
	dictPath := filepath.Join(dir, "dics.json")
	grammarPath := filepath.Join(dir, "grammars.json")
	require.NoError(t, os.WriteFile(dictPath, []byte(`{"1": ["run", "to move quickly"], "2": ["fast", "quickly"]}`), 0o644))
	require.NoError(t, os.WriteFile(grammarPath, []byte(`{
		"verbRule": {"1": [
			{"type": "DefinitionType", "value": 2},
			{"type": "TenseType", "value": 99},
			{"type": "NoSuchType", "value": 1},
			{"type": "MoodType", "value": 1}
		]},
		"clauseRule": {"5": [{"type": "DefinitionType", "value": 2}, {"type": "MoodType", "value": 1}, 7]},
		"adverbRule": {"2": [7]}
	}`), 0o644))

	dict, err := lexicon.Open(lexicon.Dictionary, dictPath)
	require.NoError(t, err)
	rules, err := grammar.Open(grammarPath)
	require.NoError(t, err)
	m := New(dict, rules)

	got := m.Match([]string{"run"}, 1)
	assert.Equal(t, []string{"verbRule/1", "clauseRule/5"}, summary(got))
	assert.Equal(t, 2, got[0].MatchCount, "unresolvable descriptors are dropped, not counted")
	assert.Equal(t, []tag.Tag{verb, indicative}, got[0].RuleTags)
	assert.Equal(t, 2, got[1].MatchCount, "placeholder absent from the input")

	assert.Empty(t, m.Match([]string{"run"}, 3), "four stored elements resolve to two tags")

	got = m.Match([]string{"run", "fast"}, 1)
	assert.Equal(t, []string{"clauseRule/5", "verbRule/1", "adverbRule/2"}, summary(got))
	assert.Equal(t, []int{3, 2, 1}, []int{got[0].MatchCount, got[1].MatchCount, got[2].MatchCount})
	assert.Equal(t, []ir.MatchedWord{{Word: "fast", MatchedTags: []tag.Tag{tag.Placeholder("7")}}}, got[2].MatchedWords)
}

// fakeRecorder captures runs and hands out sequence numbers.
type fakeRecorder struct {
	runs []ir.MatchRun
	err  error
}

func (f *fakeRecorder) WriteMatchRun(_ context.Context, run ir.MatchRun) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.runs = append(f.runs, run)
	return int64(len(f.runs)), nil
}

func TestMatchAndRecord(t *testing.T) {
	words := fakeWords{"dogs": "1", "ran": "2", "cat": "3"}
	rules := fakeRules{
		binding("lexRule", "1", noun, plural),
		binding("clauseRule", "9", noun, plural),
	}
	m := New(words, rules, WithRunIDs(NewFixedGenerator("run-1", "run-2")))
	rec := &fakeRecorder{}

	run, err := m.MatchAndRecord(context.Background(), rec, []string{"dogs"}, 2)
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, int64(1), run.Seq)
	assert.Equal(t, []string{"dogs"}, run.Words)
	assert.Equal(t, 2, run.MinMatch)
	assert.Equal(t, []string{"lexRule/1", "clauseRule/9"}, summary(run.Matches))

	run, err = m.MatchAndRecord(context.Background(), rec, []string{"ran"}, 2)
	require.NoError(t, err)
	assert.Equal(t, "run-2", run.ID)
	assert.Empty(t, run.Matches)
	assert.Len(t, rec.runs, 2)
}

func TestMatchAndRecord_RecorderError(t *testing.T) {
	m := New(fakeWords{}, fakeRules{}, WithRunIDs(NewFixedGenerator("run-1")))
	boom := errors.New("disk full")

	_, err := m.MatchAndRecord(context.Background(), &fakeRecorder{err: boom}, []string{"x"}, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
