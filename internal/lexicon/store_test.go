package lexicon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/roach88/salin/internal/ir"
)

func openFixture(t *testing.T, content string, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dics.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := Open(Dictionary, path, opts...)
	require.NoError(t, err)
	return s
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return zap.New(core), logs
}

const fixture = `{
	"1": ["run", "to move quickly", "to operate"],
	"2": ["dog"],
	"3": ["walk", "to move on foot"]
}`

func TestOpen_LoadsInFileOrder(t *testing.T) {
	s := openFixture(t, fixture)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []ir.Key{"1", "2", "3"}, s.Indices())
	assert.Equal(t, []string{"run", "dog", "walk"}, s.Words())
	assert.Equal(t, Dictionary, s.Kind())
}

func TestOpen_MissingFileFails(t *testing.T) {
	_, err := Open(Actions, filepath.Join(t.TempDir(), "actions.json"))
	assert.Error(t, err)
}

func TestOpen_CorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dics.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"1": ["run",`), 0o644))

	s, err := Open(Dictionary, path)
	assert.Error(t, err)
	assert.Nil(t, s, "no partially loaded store")
}

func TestOpen_DropsEmptyEntriesWithWarning(t *testing.T) {
	logger, logs := observedLogger()
	s := openFixture(t, `{"1": [], "2": ["dog"]}`, WithLogger(logger))

	assert.Equal(t, []ir.Key{"2"}, s.Indices())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "1", logs.All()[0].ContextMap()["index"])
}

func TestWordToIndex(t *testing.T) {
	s := openFixture(t, fixture)

	index, ok := s.WordToIndex("walk")
	require.True(t, ok)
	assert.Equal(t, ir.Key("3"), index)

	_, ok = s.WordToIndex("to move quickly")
	assert.False(t, ok, "associated strings are not canonical words")

	_, ok = s.WordToIndex("cat")
	assert.False(t, ok)
}

func TestWordToIndex_FirstMatchWins(t *testing.T) {
	s := openFixture(t, `{"5": ["bank", "river side"], "2": ["bank", "money house"]}`)

	index, ok := s.WordToIndex("bank")
	require.True(t, ok)
	assert.Equal(t, ir.Key("5"), index)

	word, ok := s.IndexToWord("2")
	require.True(t, ok)
	assert.Equal(t, "bank", word, "the shadowed entry is still reachable by index")
}

func TestAssociated_ThreeWayResult(t *testing.T) {
	s := openFixture(t, fixture)

	items, ok := s.Associated("run")
	require.True(t, ok)
	assert.Equal(t, []string{"to move quickly", "to operate"}, items)

	items, ok = s.Associated("dog")
	require.True(t, ok, "word present")
	assert.NotNil(t, items)
	assert.Empty(t, items)

	items, ok = s.Associated("cat")
	assert.False(t, ok)
	assert.Nil(t, items)
}

func TestAssociated_ReturnsCopy(t *testing.T) {
	s := openFixture(t, fixture)

	items, _ := s.Associated("run")
	items[0] = "mutated"

	again, _ := s.Associated("run")
	assert.Equal(t, "to move quickly", again[0])
}

func TestSetEntry_RoundTrip(t *testing.T) {
	s := New(Actions, filepath.Join(t.TempDir(), "actions.json"))

	replaced := s.SetEntry("7", "jump", "leap", "hop")
	assert.False(t, replaced)

	word, ok := s.IndexToWord("7")
	require.True(t, ok)
	assert.Equal(t, "jump", word)

	items, ok := s.Associated("jump")
	require.True(t, ok)
	assert.Equal(t, []string{"leap", "hop"}, items)

	index, ok := s.WordToIndex(word)
	require.True(t, ok)
	assert.Equal(t, ir.Key("7"), index)
}

func TestSetEntry_OverwriteWarnsAndReplaces(t *testing.T) {
	logger, logs := observedLogger()
	s := openFixture(t, fixture, WithLogger(logger))

	replaced := s.SetEntry("1", "sprint")
	assert.True(t, replaced)

	entry, ok := s.Entry("1")
	require.True(t, ok)
	assert.Equal(t, "sprint", entry.Word)
	assert.Empty(t, entry.Associated, "content is replaced entirely")
	assert.Equal(t, []ir.Key{"1", "2", "3"}, s.Indices(), "position kept")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "1", fields["index"])
	assert.Equal(t, "run", fields["old_word"])
	assert.Equal(t, "dictionary", fields["table"])
}

func TestSetEntry_NewIndexAppends(t *testing.T) {
	s := openFixture(t, fixture)

	s.SetEntry("0", "cat")
	assert.Equal(t, []ir.Key{"1", "2", "3", "0"}, s.Indices())
}

func TestAddAssociated(t *testing.T) {
	logger, logs := observedLogger()
	s := openFixture(t, fixture, WithLogger(logger))

	assert.True(t, s.AddAssociated("2", "loyal animal"))
	items, _ := s.Associated("dog")
	assert.Equal(t, []string{"loyal animal"}, items)

	assert.False(t, s.AddAssociated("2", "loyal animal"), "repeat is rejected")
	items, _ = s.Associated("dog")
	assert.Equal(t, []string{"loyal animal"}, items, "list unchanged after repeat")

	assert.False(t, s.AddAssociated("99", "anything"))
	assert.Equal(t, 2, logs.Len())
}

func TestAddAssociated_ItemEqualToWordIsAllowed(t *testing.T) {
	s := openFixture(t, fixture)

	assert.True(t, s.AddAssociated("2", "dog"))
	items, _ := s.Associated("dog")
	assert.Equal(t, []string{"dog"}, items)
}

func TestAddAssociatedByWord(t *testing.T) {
	s := openFixture(t, fixture)

	assert.True(t, s.AddAssociatedByWord("walk", "stroll"))
	assert.False(t, s.AddAssociatedByWord("cat", "meow"))

	items, _ := s.Associated("walk")
	assert.Equal(t, []string{"to move on foot", "stroll"}, items)
}

func TestRemoveAssociated(t *testing.T) {
	s := openFixture(t, fixture)

	assert.True(t, s.RemoveAssociated("1", "to operate"))
	items, ok := s.Associated("run")
	require.True(t, ok)
	assert.NotContains(t, items, "to operate")

	assert.False(t, s.RemoveAssociated("1", "to operate"))
	assert.False(t, s.RemoveAssociated("1", "run"), "the canonical word is not an associated item")
	assert.False(t, s.RemoveAssociated("42", "x"))
}

func TestRemoveAssociated_LastItemKeepsEntry(t *testing.T) {
	s := openFixture(t, fixture)

	require.True(t, s.RemoveAssociated("3", "to move on foot"))

	items, ok := s.Associated("walk")
	require.True(t, ok, "entry still exists")
	assert.Empty(t, items)
	assert.Equal(t, 3, s.Len())
}

func TestRemoveEntry(t *testing.T) {
	s := openFixture(t, fixture)

	assert.True(t, s.RemoveEntry("2"))
	assert.False(t, s.RemoveEntry("2"))

	_, ok := s.IndexToWord("2")
	assert.False(t, ok)
	assert.Equal(t, []ir.Key{"1", "3"}, s.Indices())
}

func TestUpdateWord_KeepsAssociated(t *testing.T) {
	s := openFixture(t, fixture)

	assert.True(t, s.UpdateWord("1", "dash"))
	assert.False(t, s.UpdateWord("404", "nothing"))

	_, ok := s.WordToIndex("run")
	assert.False(t, ok)
	items, ok := s.Associated("dash")
	require.True(t, ok)
	assert.Equal(t, []string{"to move quickly", "to operate"}, items)
}

func TestMutationsDoNotPersistUntilSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dics.json")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))

	s, err := Open(Dictionary, path)
	require.NoError(t, err)
	s.SetEntry("9", "swim", "to move through water")
	s.RemoveEntry("2")

	reloaded, err := Open(Dictionary, path)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Len())

	require.NoError(t, s.Save())

	reloaded, err = Open(Dictionary, path)
	require.NoError(t, err)
	assert.Equal(t, []ir.Key{"1", "3", "9"}, reloaded.Indices())
	items, ok := reloaded.Associated("swim")
	require.True(t, ok)
	assert.Equal(t, []string{"to move through water"}, items)
}

func TestNormalization(t *testing.T) {
	decomposed := "cafe\u0301"
	composed := "caf\u00e9"

	s := New(Dictionary, filepath.Join(t.TempDir(), "dics.json"), WithNormalization())
	s.SetEntry("1", decomposed, "coffee")

	index, ok := s.WordToIndex(composed)
	require.True(t, ok)
	assert.Equal(t, ir.Key("1"), index)

	index, ok = s.WordToIndex(decomposed)
	require.True(t, ok)
	assert.Equal(t, ir.Key("1"), index)

	word, ok := s.IndexToWord("1")
	require.True(t, ok)
	assert.Equal(t, []byte(decomposed), []byte(word), "stored word is kept as given")
	assert.Equal(t, []string{decomposed}, s.Words())

	require.True(t, s.UpdateWord("1", decomposed+"s"))
	word, _ = s.IndexToWord("1")
	assert.Equal(t, decomposed+"s", word)
	_, ok = s.WordToIndex(composed + "s")
	assert.True(t, ok)

	plain := New(Dictionary, filepath.Join(t.TempDir(), "dics.json"))
	plain.SetEntry("1", decomposed)
	_, ok = plain.WordToIndex(composed)
	assert.False(t, ok, "without normalization words compare byte-wise")
}

func TestNormalization_SaveKeepsWordsAsLoaded(t *testing.T) {
	content := "{\n    \"1\": [\n        \"cafe\u0301\",\n        \"coffee\"\n    ],\n    \"2\": [\n        \"dog\"\n    ]\n}\n"
	path := filepath.Join(t.TempDir(), "dics.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := Open(Dictionary, path, WithNormalization())
	require.NoError(t, err)
	require.True(t, s.AddAssociated("2", "hound"))
	require.True(t, s.RemoveAssociated("2", "hound"))
	require.NoError(t, s.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestString(t *testing.T) {
	empty := New(Actions, "unused.json")
	assert.Equal(t, "actions table is empty", empty.String())

	s := openFixture(t, `{"2": ["dog", "bark"]}`)
	assert.Equal(t, "dictionary table:\n  2: \"dog\" -> [\"bark\"]\n", s.String())
}
