package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one match scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Dictionary and Grammar are the resource paths to load. Relative paths
	// are resolved against the scenario file's directory.
	Dictionary string `yaml:"dictionary"`
	Grammar    string `yaml:"grammar"`

	// Normalize makes dictionary lookups compare NFC forms; nil follows the
	// config default.
	Normalize *bool `yaml:"normalize,omitempty"`

	// Setup mutates the loaded tables before matching. Mutations are never
	// saved.
	Setup []SetupStep `yaml:"setup,omitempty"`

	// Words is the matcher input.
	Words []string `yaml:"words"`

	// MinMatch is the matcher threshold; nil means engine.DefaultMinMatch.
	MinMatch *int `yaml:"min_match,omitempty"`

	// Expect is the complete ranked result list, in order. Nil skips the check.
	Expect []ExpectMatch `yaml:"expect,omitempty"`

	// ExpectEmpty requires an empty result.
	ExpectEmpty bool `yaml:"expect_empty,omitempty"`

	// Assertions are additional checks on the result.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// SetupStep is one table mutation.
type SetupStep struct {
	// Op is one of the Op* constants.
	Op string `yaml:"op"`

	Index      string   `yaml:"index,omitempty"`
	Word       string   `yaml:"word,omitempty"`
	Associated []string `yaml:"associated,omitempty"`
	Rule       string   `yaml:"rule,omitempty"`

	// Tags use the command-line tag syntax: DefinitionType.verb,
	// DefinitionType:2 or a bare integer.
	Tags []string `yaml:"tags,omitempty"`
}

// Setup operations.
const (
	OpSetEntry    = "set_entry"
	OpRemoveEntry = "remove_entry"
	OpAddRule     = "add_rule"
	OpRemoveRule  = "remove_rule"
)

// ExpectMatch is one expected result row.
type ExpectMatch struct {
	Rule       string `yaml:"rule"`
	Index      string `yaml:"index"`
	MatchCount int    `yaml:"match_count"`
}

// Assertion validates one property of the result.
type Assertion struct {
	// Type specifies the assertion type:
	// - "contains": the result includes Rule/Index
	// - "order": Results appear in this relative order
	// - "count": the result has exactly Count rows
	// - "matched_words": Word matched exactly Tags in Rule/Index
	Type string `yaml:"type"`

	Rule  string `yaml:"rule,omitempty"`
	Index string `yaml:"index,omitempty"`

	// Results lists "rule/index" keys (used by order).
	Results []string `yaml:"results,omitempty"`

	// Count is the expected number of results (used by count).
	Count int `yaml:"count,omitempty"`

	// Word and Tags are used by matched_words.
	Word string   `yaml:"word,omitempty"`
	Tags []string `yaml:"tags,omitempty"`
}

// Assertion type constants.
const (
	AssertContains     = "contains"
	AssertOrder        = "order"
	AssertCount        = "count"
	AssertMatchedWords = "matched_words"
)

// LoadScenario reads and parses a scenario YAML file, resolving resource
// paths relative to the file. Unknown fields are rejected.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath is LoadScenario with resource paths resolved
// against basePath instead.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for _, p := range []*string{&scenario.Dictionary, &scenario.Grammar} {
		if *p != "" && !filepath.IsAbs(*p) && basePath != "" {
			*p = filepath.Join(basePath, *p)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Dictionary == "" {
		return fmt.Errorf("dictionary is required")
	}
	if s.Grammar == "" {
		return fmt.Errorf("grammar is required")
	}
	for _, p := range []string{s.Dictionary, s.Grammar} {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("resource not found: %s", p)
		}
	}
	if s.ExpectEmpty && len(s.Expect) > 0 {
		return fmt.Errorf("expect and expect_empty are mutually exclusive")
	}

	for i, step := range s.Setup {
		if err := validateSetupStep(i, &step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateSetupStep(index int, step *SetupStep) error {
	switch step.Op {
	case OpSetEntry:
		if step.Index == "" || step.Word == "" {
			return fmt.Errorf("setup[%d]: index and word are required for set_entry", index)
		}
	case OpRemoveEntry:
		if step.Index == "" {
			return fmt.Errorf("setup[%d]: index is required for remove_entry", index)
		}
	case OpAddRule:
		if step.Rule == "" || step.Index == "" {
			return fmt.Errorf("setup[%d]: rule and index are required for add_rule", index)
		}
	case OpRemoveRule:
		if step.Rule == "" {
			return fmt.Errorf("setup[%d]: rule is required for remove_rule", index)
		}
	case "":
		return fmt.Errorf("setup[%d]: op is required", index)
	default:
		return fmt.Errorf("setup[%d]: unknown op %q", index, step.Op)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertContains:
		if a.Rule == "" || a.Index == "" {
			return fmt.Errorf("assertions[%d]: rule and index are required for contains", index)
		}
	case AssertOrder:
		if len(a.Results) == 0 {
			return fmt.Errorf("assertions[%d]: results list is required for order", index)
		}
	case AssertCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertMatchedWords:
		if a.Rule == "" || a.Index == "" || a.Word == "" {
			return fmt.Errorf("assertions[%d]: rule, index and word are required for matched_words", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
