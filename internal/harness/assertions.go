package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/salin/internal/ir"
	"github.com/roach88/salin/internal/tag"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Results  []string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	fmt.Fprintf(&buf, "\nResults:\n")
	for i, r := range e.Results {
		fmt.Fprintf(&buf, "  [%d] %s\n", i+1, r)
	}
	return buf.String()
}

// evaluateAssertion dispatches on the assertion type.
func evaluateAssertion(matches []ir.Match, a Assertion) error {
	switch a.Type {
	case AssertContains:
		return assertContains(matches, a)
	case AssertOrder:
		return assertOrder(matches, a)
	case AssertCount:
		return assertCount(matches, a)
	case AssertMatchedWords:
		return assertMatchedWords(matches, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func findResult(matches []ir.Match, rule, index string) (ir.Match, bool) {
	for _, m := range matches {
		if m.RuleName == rule && string(m.Index) == index {
			return m, true
		}
	}
	return ir.Match{}, false
}

func assertContains(matches []ir.Match, a Assertion) error {
	if _, ok := findResult(matches, a.Rule, a.Index); ok {
		return nil
	}
	return &AssertionError{
		Type:     AssertContains,
		Expected: fmt.Sprintf("result %s/%s", a.Rule, a.Index),
		Actual:   "not found",
		Results:  resultKeys(matches),
	}
}

// assertOrder checks that the listed results appear in the given relative
// order. Other results may sit between them.
func assertOrder(matches []ir.Match, a Assertion) error {
	keys := resultKeys(matches)
	pos := -1
	for _, want := range a.Results {
		i := slices.Index(keys, want)
		if i < 0 {
			return &AssertionError{
				Type:     AssertOrder,
				Expected: fmt.Sprintf("order %v", a.Results),
				Actual:   fmt.Sprintf("%s not found", want),
				Results:  keys,
			}
		}
		if i <= pos {
			return &AssertionError{
				Type:     AssertOrder,
				Expected: fmt.Sprintf("order %v", a.Results),
				Actual:   fmt.Sprintf("%s at rank %d, before its predecessor", want, i+1),
				Results:  keys,
			}
		}
		pos = i
	}
	return nil
}

func assertCount(matches []ir.Match, a Assertion) error {
	if len(matches) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertCount,
		Expected: fmt.Sprintf("%d results", a.Count),
		Actual:   fmt.Sprintf("%d results", len(matches)),
		Results:  resultKeys(matches),
	}
}

func assertMatchedWords(matches []ir.Match, a Assertion) error {
	m, ok := findResult(matches, a.Rule, a.Index)
	if !ok {
		return &AssertionError{
			Type:     AssertMatchedWords,
			Expected: fmt.Sprintf("result %s/%s", a.Rule, a.Index),
			Actual:   "not found",
			Results:  resultKeys(matches),
		}
	}

	want := make([]string, 0, len(a.Tags))
	for _, s := range a.Tags {
		t, err := tag.Parse(s)
		if err != nil {
			return fmt.Errorf("assertion %s: %w", AssertMatchedWords, err)
		}
		want = append(want, t.String())
	}

	got := []string{}
	for _, w := range m.MatchedWords {
		if w.Word != a.Word {
			continue
		}
		for _, t := range w.MatchedTags {
			got = append(got, t.String())
		}
	}

	if slices.Equal(want, got) {
		return nil
	}
	return &AssertionError{
		Type:     AssertMatchedWords,
		Expected: fmt.Sprintf("%s matched %v in %s/%s", a.Word, want, a.Rule, a.Index),
		Actual:   fmt.Sprintf("%v", got),
		Results:  resultKeys(matches),
	}
}
