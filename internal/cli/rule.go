package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/salin/internal/ir"
	"github.com/roach88/salin/internal/tag"
)

// RuleOptions holds flags shared by the rule subcommands.
type RuleOptions struct {
	*RootOptions
	Save     bool
	MinCount int
}

// RuleResult is one (rule, index) binding with its tags.
type RuleResult struct {
	Rule  string   `json:"rule"`
	Index ir.Key   `json:"index"`
	Tags  []string `json:"tags"`
	Saved bool     `json:"saved,omitempty"`
}

// String renders the text form.
func (r RuleResult) String() string {
	s := fmt.Sprintf("%s/%s: [%s]", r.Rule, r.Index, strings.Join(r.Tags, ", "))
	if r.Saved {
		s += "\n  saved"
	}
	return s
}

// FindResult lists the bindings a tag occurs in.
type FindResult struct {
	Tag      string        `json:"tag"`
	MinCount int           `json:"min_count"`
	Matches  []ir.TagCount `json:"matches"`
}

// String renders the text form.
func (r FindResult) String() string {
	if len(r.Matches) == 0 {
		return fmt.Sprintf("no rule contains %s at least %d time(s)", r.Tag, r.MinCount)
	}
	lines := make([]string, len(r.Matches))
	for i, m := range r.Matches {
		lines[i] = fmt.Sprintf("%s/%s count=%d [%s]", m.RuleName, m.Index, m.Count, strings.Join(tagNames(m.Tags), ", "))
	}
	return strings.Join(lines, "\n")
}

// NewRuleCommand creates the rule command group.
func NewRuleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RuleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Inspect and edit grammar rules",
		Long: `Inspect and edit the grammar table. Tags are written as
DefinitionType.verb (domain and name), DefinitionType:2 (domain and code) or a
bare integer placeholder.`,
	}

	add := &cobra.Command{
		Use:           "add <rule> <index> <tag>...",
		Short:         "Bind tags to an index in a rule, replacing any existing binding",
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			tags, err := parseTags(args[2:])
			if err != nil {
				return err
			}
			m, _, err := loadModel(opts.RootOptions)
			if err != nil {
				return err
			}
			index := ir.Key(args[1])
			m.Grammar.AddRule(args[0], index, tags...)

			result := RuleResult{Rule: args[0], Index: index, Tags: tagNames(tags)}
			if opts.Save {
				if err := m.Grammar.Save(); err != nil {
					return WrapExitError(ExitCommandError, "failed to save", err)
				}
				result.Saved = true
			}
			return opts.formatter(cmd).Success(result)
		},
	}
	add.Flags().BoolVar(&opts.Save, "save", false, "write the grammar back to its resource")

	show := &cobra.Command{
		Use:           "show <rule> <index>",
		Short:         "Show the tags bound to an index in a rule",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := loadModel(opts.RootOptions)
			if err != nil {
				return err
			}
			index := ir.Key(args[1])
			tags, ok := m.Grammar.RuleTags(args[0], index)
			if !ok {
				return NewExitError(ExitCommandError, fmt.Sprintf("rule %s has no binding for index %s", args[0], index))
			}
			return opts.formatter(cmd).Success(RuleResult{Rule: args[0], Index: index, Tags: tagNames(tags)})
		},
	}

	find := &cobra.Command{
		Use:           "find <tag>",
		Short:         "List bindings containing a tag at least --min-count times",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := tag.Parse(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid tag", err)
			}
			m, _, err := loadModel(opts.RootOptions)
			if err != nil {
				return err
			}
			matches := m.Grammar.FindRulesByTag(t, opts.MinCount)
			if matches == nil {
				matches = []ir.TagCount{}
			}
			return opts.formatter(cmd).Success(FindResult{Tag: t.String(), MinCount: opts.MinCount, Matches: matches})
		},
	}
	find.Flags().IntVar(&opts.MinCount, "min-count", 1, "minimum occurrences of the tag")

	remove := &cobra.Command{
		Use:           "remove <rule> [index]",
		Short:         "Remove one binding, or a whole rule when no index is given",
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := loadModel(opts.RootOptions)
			if err != nil {
				return err
			}
			var removed bool
			what := args[0]
			if len(args) == 2 {
				removed = m.Grammar.RemoveBinding(args[0], ir.Key(args[1]))
				what += "/" + args[1]
			} else {
				removed = m.Grammar.RemoveRule(args[0])
			}
			if !removed {
				return NewExitError(ExitCommandError, fmt.Sprintf("%s not found", what))
			}
			msg := "removed " + what
			if opts.Save {
				if err := m.Grammar.Save(); err != nil {
					return WrapExitError(ExitCommandError, "failed to save", err)
				}
				msg += "\n  saved"
			}
			return opts.formatter(cmd).Success(msg)
		},
	}
	remove.Flags().BoolVar(&opts.Save, "save", false, "write the grammar back to its resource")

	cmd.AddCommand(add, show, find, remove)
	return cmd
}
