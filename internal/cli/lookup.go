package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/salin/internal/ir"
	"github.com/roach88/salin/internal/model"
)

// LookupResult describes everything known about one word.
type LookupResult struct {
	Word        string           `json:"word"`
	Index       ir.Key           `json:"index"`
	Definitions []string         `json:"definitions"`
	Actions     []string         `json:"actions"`
	Grammar     []ir.RuleBinding `json:"grammar"`
}

// String renders the text form.
func (r LookupResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (index %s)\n", r.Word, r.Index)
	fmt.Fprintf(&b, "  definitions: %s\n", joinOrDash(r.Definitions))
	fmt.Fprintf(&b, "  actions: %s\n", joinOrDash(r.Actions))
	if len(r.Grammar) == 0 {
		b.WriteString("  grammar: -")
		return b.String()
	}
	b.WriteString("  grammar:")
	for _, g := range r.Grammar {
		fmt.Fprintf(&b, "\n    %s: [%s]", g.RuleName, strings.Join(tagNames(g.Tags), ", "))
	}
	return b.String()
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, "; ")
}

// NewLookupCommand creates the lookup command.
func NewLookupCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <word>",
		Short: "Show a word's index, definitions, actions and grammar bindings",
		Long: `Resolve a canonical word through the dictionary and report what every
table holds for its index. The first rule listed is the one the matcher binds.

Exit codes:
  0 - Word found
  2 - Word not in the dictionary, or tables failed to load`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := loadModel(rootOpts)
			if err != nil {
				return err
			}
			result, err := lookup(m, args[0])
			if err != nil {
				return err
			}
			return rootOpts.formatter(cmd).Success(result)
		},
	}
}

func lookup(m *model.Model, word string) (LookupResult, error) {
	index, ok := m.Dictionary.WordToIndex(word)
	if !ok {
		return LookupResult{}, NewExitError(ExitCommandError, fmt.Sprintf("word %q not in dictionary", word))
	}

	result := LookupResult{
		Word:        word,
		Index:       index,
		Definitions: []string{},
		Actions:     []string{},
		Grammar:     bindingsFor(m, index),
	}
	if defs, ok := m.Dictionary.Associated(word); ok {
		result.Definitions = defs
	}
	// the action table is keyed by the same index; its word may differ
	if e, ok := m.Actions.Entry(index); ok {
		result.Actions = e.Associated
	}
	return result, nil
}
