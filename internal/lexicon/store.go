package lexicon

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/salin/internal/compiler"
	"github.com/roach88/salin/internal/ir"
)

// Kind names which table a store holds. It only affects logging and display.
type Kind string

const (
	Dictionary Kind = "dictionary"
	Actions    Kind = "actions"
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

// WithNormalization makes word lookups compare the NFC forms of the stored
// and requested words. Stored words are kept as given.
func WithNormalization() Option {
	return func(s *Store) {
		s.normalize = true
	}
}

// Store is an ordered index → (word, associated strings) table.
//
// Store is not safe for concurrent use; callers serialize access.
type Store struct {
	kind      Kind
	path      string
	order     []ir.Key
	entries   map[ir.Key]*ir.LexicalEntry
	logger    *zap.Logger
	normalize bool
}

// New returns an empty store that saves to path.
func New(kind Kind, path string, opts ...Option) *Store {
	s := &Store{
		kind:    kind,
		path:    path,
		entries: make(map[ir.Key]*ir.LexicalEntry),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("table", string(kind)))
	return s
}

// Open loads the resource at path in full. Any read or parse failure fails
// the whole load.
func Open(kind Kind, path string, opts ...Option) (*Store, error) {
	s := New(kind, path, opts...)

	result, err := compiler.LoadLexicon(path)
	if err != nil {
		return nil, fmt.Errorf("open %s table %s: %w", kind, path, err)
	}

	for _, index := range result.Empty {
		s.logger.Warn("dropping entry without a word", zap.String("index", string(index)))
	}
	for _, e := range result.Entries {
		s.put(e.Index, e.Word, e.Associated)
	}

	s.logger.Debug("loaded table", zap.String("path", path), zap.Int("entries", len(s.order)))
	return s, nil
}

// Kind returns the table kind.
func (s *Store) Kind() Kind {
	return s.kind
}

// Path returns the backing resource path.
func (s *Store) Path() string {
	return s.path
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.order)
}

// WordToIndex returns the index of the first entry, in store order, whose
// canonical word equals word.
func (s *Store) WordToIndex(word string) (ir.Key, bool) {
	word = s.norm(word)
	for _, index := range s.order {
		if s.norm(s.entries[index].Word) == word {
			return index, true
		}
	}
	return "", false
}

// IndexToWord returns the canonical word stored at index.
func (s *Store) IndexToWord(index ir.Key) (string, bool) {
	e, ok := s.entries[index]
	if !ok {
		return "", false
	}
	return e.Word, true
}

// Associated returns the associated strings of the first entry whose word
// equals word. ok is false when the word is absent; a present word with no
// associated strings returns an empty, non-nil slice.
func (s *Store) Associated(word string) ([]string, bool) {
	index, ok := s.WordToIndex(word)
	if !ok {
		return nil, false
	}
	return slices.Clone(s.entries[index].Associated), true
}

// Entry returns a copy of the entry at index.
func (s *Store) Entry(index ir.Key) (ir.LexicalEntry, bool) {
	e, ok := s.entries[index]
	if !ok {
		return ir.LexicalEntry{}, false
	}
	return copyEntry(e), true
}

// SetEntry stores word and associated under index, replacing any existing
// entry entirely. Replacing keeps the entry's position and logs a warning;
// replaced reports whether that happened.
func (s *Store) SetEntry(index ir.Key, word string, associated ...string) (replaced bool) {
	if old, ok := s.entries[index]; ok {
		s.logger.Warn("index already exists, overwriting",
			zap.String("index", string(index)),
			zap.String("old_word", old.Word),
			zap.Strings("old_associated", old.Associated),
			zap.String("word", word))
		replaced = true
	}
	s.put(index, word, associated)
	return replaced
}

// AddAssociated appends item to the entry at index. It returns false, with a
// warning, when the index is absent or the item is already present.
func (s *Store) AddAssociated(index ir.Key, item string) bool {
	e, ok := s.entries[index]
	if !ok {
		s.logger.Warn("index does not exist", zap.String("index", string(index)))
		return false
	}
	if slices.Contains(e.Associated, item) {
		s.logger.Warn("item already present",
			zap.String("index", string(index)),
			zap.String("item", item))
		return false
	}
	e.Associated = append(e.Associated, item)
	return true
}

// AddAssociatedByWord resolves word with WordToIndex and calls AddAssociated.
func (s *Store) AddAssociatedByWord(word, item string) bool {
	index, ok := s.WordToIndex(word)
	if !ok {
		return false
	}
	return s.AddAssociated(index, item)
}

// RemoveAssociated removes the first occurrence of item from the entry at
// index. The entry itself stays, even when its list becomes empty.
func (s *Store) RemoveAssociated(index ir.Key, item string) bool {
	e, ok := s.entries[index]
	if !ok {
		return false
	}
	i := slices.Index(e.Associated, item)
	if i < 0 {
		return false
	}
	e.Associated = slices.Delete(e.Associated, i, i+1)
	return true
}

// RemoveEntry deletes the entry at index.
func (s *Store) RemoveEntry(index ir.Key) bool {
	if _, ok := s.entries[index]; !ok {
		return false
	}
	delete(s.entries, index)
	s.order = slices.DeleteFunc(s.order, func(k ir.Key) bool { return k == index })
	return true
}

// UpdateWord replaces the canonical word at index, keeping its associated
// strings.
func (s *Store) UpdateWord(index ir.Key, newWord string) bool {
	e, ok := s.entries[index]
	if !ok {
		return false
	}
	e.Word = newWord
	return true
}

// Words returns the canonical words in store order.
func (s *Store) Words() []string {
	words := make([]string, 0, len(s.order))
	for _, index := range s.order {
		words = append(words, s.entries[index].Word)
	}
	return words
}

// Indices returns the indices in store order.
func (s *Store) Indices() []ir.Key {
	return slices.Clone(s.order)
}

// Entries returns copies of all entries in store order.
func (s *Store) Entries() []ir.LexicalEntry {
	out := make([]ir.LexicalEntry, 0, len(s.order))
	for _, index := range s.order {
		out = append(out, copyEntry(s.entries[index]))
	}
	return out
}

// Save rewrites the backing resource with the current content.
func (s *Store) Save() error {
	if err := compiler.WriteLexicon(s.path, s.Entries()); err != nil {
		return fmt.Errorf("save %s table: %w", s.kind, err)
	}
	s.logger.Debug("saved table", zap.String("path", s.path), zap.Int("entries", len(s.order)))
	return nil
}

// String renders the table for display.
func (s *Store) String() string {
	if len(s.order) == 0 {
		return fmt.Sprintf("%s table is empty", s.kind)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s table:\n", s.kind)
	for _, index := range s.order {
		e := s.entries[index]
		fmt.Fprintf(&b, "  %s: %q -> %q\n", index, e.Word, e.Associated)
	}
	return b.String()
}

func (s *Store) put(index ir.Key, word string, associated []string) {
	if _, ok := s.entries[index]; !ok {
		s.order = append(s.order, index)
	}
	items := make([]string, len(associated))
	copy(items, associated)
	s.entries[index] = &ir.LexicalEntry{Index: index, Word: word, Associated: items}
}

func (s *Store) norm(word string) string {
	if !s.normalize {
		return word
	}
	return norm.NFC.String(word)
}

func copyEntry(e *ir.LexicalEntry) ir.LexicalEntry {
	items := make([]string, len(e.Associated))
	copy(items, e.Associated)
	return ir.LexicalEntry{Index: e.Index, Word: e.Word, Associated: items}
}
