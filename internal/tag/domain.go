package tag

import (
	"fmt"
	"strconv"
	"strings"
)

// Domain identifies one of the fixed grammatical-category enumerations.
type Domain int

const (
	// DomainNone marks a placeholder tag carried through from a bare stored value.
	DomainNone Domain = iota
	// PartOfSpeech is stored as "DefinitionType".
	PartOfSpeech
	// Mood is stored as "MoodType".
	Mood
	// Tense is stored as "TenseType".
	Tense
	// Other holds number/gender and custom semantic tags, stored as "OtherType".
	Other
)

// domainNames are the storage names, indexed by Domain.
var domainNames = [...]string{
	DomainNone:   "",
	PartOfSpeech: "DefinitionType",
	Mood:         "MoodType",
	Tense:        "TenseType",
	Other:        "OtherType",
}

// members lists each domain's symbolic names; the numeric code of
// members[d][i] is i+1.
var members = map[Domain][]string{
	PartOfSpeech: {"noun", "verb", "adjective", "adverb", "pronoun", "preposition", "conjunction", "interjection"},
	Mood:         {"indicative", "subjunctive", "imperative", "conditional", "infinitive", "gerund", "participle"},
	Tense:        {"present", "past", "future", "present_perfect", "past_perfect", "future_perfect"},
	Other:        {"plural", "singular", "masculine", "feminine", "neuter"},
}

// Domains returns the four resolvable domains in registry order.
func Domains() []Domain {
	return []Domain{PartOfSpeech, Mood, Tense, Other}
}

// LookupDomain resolves a storage name such as "MoodType".
func LookupDomain(name string) (Domain, bool) {
	if name == "" {
		return DomainNone, false
	}
	for _, d := range Domains() {
		if domainNames[d] == name {
			return d, true
		}
	}
	return DomainNone, false
}

// String returns the storage name of the domain.
func (d Domain) String() string {
	if d < DomainNone || int(d) >= len(domainNames) {
		return fmt.Sprintf("Domain(%d)", int(d))
	}
	return domainNames[d]
}

// Name returns the symbolic name for a numeric code within d.
func (d Domain) Name(code int) (string, bool) {
	names := members[d]
	if code < 1 || code > len(names) {
		return "", false
	}
	return names[code-1], true
}

// Code returns the numeric code for a symbolic name within d.
func (d Domain) Code(name string) (int, bool) {
	for i, n := range members[d] {
		if n == name {
			return i + 1, true
		}
	}
	return 0, false
}

// Members returns the symbolic names of d in code order.
func (d Domain) Members() []string {
	return append([]string(nil), members[d]...)
}

// Tag is a canonical grammatical tag: a (domain, value) pair, or a
// placeholder carrying an unresolved stored literal.
//
// Tag is comparable and can be used as a map key.
type Tag struct {
	Domain  Domain
	Value   int
	Literal string
}

// New returns the tag for (d, value), failing when value is not a member of d.
func New(d Domain, value int) (Tag, error) {
	if _, ok := d.Name(value); !ok {
		return Tag{}, fmt.Errorf("invalid %s value %d", d, value)
	}
	return Tag{Domain: d, Value: value}, nil
}

// MustNew is like New but panics on an invalid pair. Intended for tables of
// known-good tags.
func MustNew(d Domain, value int) Tag {
	t, err := New(d, value)
	if err != nil {
		panic(err)
	}
	return t
}

// Named returns the tag for a symbolic name within d.
func Named(d Domain, name string) (Tag, error) {
	code, ok := d.Code(name)
	if !ok {
		return Tag{}, fmt.Errorf("invalid %s name %q", d, name)
	}
	return Tag{Domain: d, Value: code}, nil
}

// Placeholder wraps a stored value that does not resolve to any domain.
func Placeholder(literal string) Tag {
	return Tag{Literal: literal}
}

// IsPlaceholder reports whether t carries an unresolved literal.
func (t Tag) IsPlaceholder() bool {
	return t.Domain == DomainNone
}

// String renders "DefinitionType.verb" for resolved tags and the literal
// for placeholders.
func (t Tag) String() string {
	if t.IsPlaceholder() {
		return t.Literal
	}
	name, ok := t.Domain.Name(t.Value)
	if !ok {
		return fmt.Sprintf("%s(%d)", t.Domain, t.Value)
	}
	return t.Domain.String() + "." + name
}

// MarshalText implements encoding.TextMarshaler so tags render by name in
// JSON output.
func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Parse reads the textual tag forms accepted on the command line:
//
//	DefinitionType.verb   domain and symbolic name
//	DefinitionType:2      domain and numeric code
//	7                     bare integer placeholder
func Parse(s string) (Tag, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Tag{}, fmt.Errorf("empty tag")
	}
	if _, err := strconv.Atoi(s); err == nil {
		return Placeholder(s), nil
	}

	sep := strings.IndexAny(s, ".:")
	if sep <= 0 || sep == len(s)-1 {
		return Tag{}, fmt.Errorf("malformed tag %q: want Domain.name or Domain:code", s)
	}
	d, ok := LookupDomain(s[:sep])
	if !ok {
		return Tag{}, fmt.Errorf("unknown tag domain %q", s[:sep])
	}
	rest := s[sep+1:]
	if s[sep] == ':' {
		code, err := strconv.Atoi(rest)
		if err != nil {
			return Tag{}, fmt.Errorf("malformed tag code %q: %w", rest, err)
		}
		return New(d, code)
	}
	return Named(d, rest)
}
