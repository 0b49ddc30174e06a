package ir

import (
	"strconv"

	"github.com/roach88/salin/internal/tag"
)

// Key identifies one lexical slot shared by the dictionary, action and
// grammar tables.
type Key string

// IntKey returns the string form of an integer index.
func IntKey(n int) Key {
	return Key(strconv.Itoa(n))
}

// String returns the key's string form.
func (k Key) String() string {
	return string(k)
}

// LexicalEntry is one row of a dictionary or action table. Word is the
// canonical word; Associated holds the definitions or action names.
type LexicalEntry struct {
	Index      Key      `json:"index"`
	Word       string   `json:"word"`
	Associated []string `json:"associated"`
}

// StoredBinding is one (rule, index) pair of the grammar table in storage
// form.
type StoredBinding struct {
	RuleName string       `json:"rule_name"`
	Index    Key          `json:"index"`
	Stored   []tag.Stored `json:"stored"`
}

// RuleBinding is one (rule, index) pair with its tags decoded.
type RuleBinding struct {
	RuleName string    `json:"rule_name"`
	Index    Key       `json:"index"`
	Tags     []tag.Tag `json:"tags"`
}

// TagCount reports how often a tag occurs in one rule binding.
type TagCount struct {
	RuleName string    `json:"rule_name"`
	Index    Key       `json:"index"`
	Count    int       `json:"count"`
	Tags     []tag.Tag `json:"tags"`
}

// WordTypeBinding ties an input word to the tags of the first rule binding
// found for its index. Computed per match call, never cached.
type WordTypeBinding struct {
	Word  string    `json:"word"`
	Index Key       `json:"index"`
	Tags  []tag.Tag `json:"tags"`
}

// Match is one ranked result of matching input words against a rule binding.
type Match struct {
	RuleName     string        `json:"rule_name"`
	Index        Key           `json:"index"`
	MatchCount   int           `json:"match_count"`
	RuleTags     []tag.Tag     `json:"rule_tags"`
	MatchedWords []MatchedWord `json:"matched_words"`
}

// MatchedWord lists which of a word's tags intersected a rule's tags.
type MatchedWord struct {
	Word        string    `json:"word"`
	MatchedTags []tag.Tag `json:"matched_tags"`
}

// Rule is a named grammar rule with its bindings in storage order. A rule may
// have no bindings.
type Rule struct {
	Name     string          `json:"name"`
	Bindings []StoredBinding `json:"bindings"`
}
