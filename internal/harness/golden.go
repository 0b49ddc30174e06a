package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/salin/internal/tag"
)

// Snapshot renders a result in the golden-file text form:
//
//	scenario: ranked
//	words: allqu purin
//	min_match: 2
//	results: 1
//	#1 clauseRule/10 count=5
//	  rule_tags: DefinitionType.noun, OtherType.singular
//	  allqu: DefinitionType.noun, OtherType.singular
//
// Each result lists its rule tags, then one line per word that matched.
func Snapshot(scenarioName string, result *Result) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", scenarioName)
	fmt.Fprintf(&b, "words: %s\n", strings.Join(result.Words, " "))
	fmt.Fprintf(&b, "min_match: %d\n", result.MinMatch)
	fmt.Fprintf(&b, "results: %d\n", len(result.Matches))
	for i, m := range result.Matches {
		fmt.Fprintf(&b, "#%d %s count=%d\n", i+1, resultKey(m), m.MatchCount)
		fmt.Fprintf(&b, "  rule_tags:%s\n", tagList(m.RuleTags))
		for _, w := range m.MatchedWords {
			fmt.Fprintf(&b, "  %s:%s\n", w.Word, tagList(w.MatchedTags))
		}
	}
	return []byte(b.String())
}

func tagList(tags []tag.Tag) string {
	if len(tags) == 0 {
		return ""
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.String()
	}
	return " " + strings.Join(names, ", ")
}

// RunWithGolden executes a scenario and compares the snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an existing result against its golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, Snapshot(scenarioName, result))
}
