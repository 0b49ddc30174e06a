package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/salin/internal/compiler"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Strict bool
}

// ValidateResult reports table sizes and consistency findings.
type ValidateResult struct {
	Dictionary int                         `json:"dictionary"`
	Actions    int                         `json:"actions"`
	Rules      int                         `json:"rules"`
	Bindings   int                         `json:"bindings"`
	Findings   []compiler.ValidationError `json:"findings"`
}

// String renders the text form.
func (r ValidateResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "dictionary: %d entries\n", r.Dictionary)
	fmt.Fprintf(&b, "actions: %d entries\n", r.Actions)
	fmt.Fprintf(&b, "grammar: %d rules, %d bindings", r.Rules, r.Bindings)
	if len(r.Findings) == 0 {
		b.WriteString("\n✓ no consistency findings")
		return b.String()
	}
	fmt.Fprintf(&b, "\n%d finding(s):", len(r.Findings))
	for _, f := range r.Findings {
		fmt.Fprintf(&b, "\n  %s", f.Error())
	}
	return b.String()
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load all three tables and cross-check them",
		Long: `Load the dictionary, action table and grammar, report their sizes and
list consistency findings: repeated canonical words, indices missing from the
dictionary and tag elements that will be ignored.

Exit codes:
  0 - Tables loaded (findings are reported but do not fail without --strict)
  1 - Findings present and --strict given
  2 - A table failed to load`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := loadModel(opts.RootOptions)
			if err != nil {
				return err
			}

			findings := m.Validate()
			if findings == nil {
				findings = []compiler.ValidationError{}
			}
			result := ValidateResult{
				Dictionary: m.Dictionary.Len(),
				Actions:    m.Actions.Len(),
				Rules:      m.Grammar.Len(),
				Bindings:   len(m.Grammar.Bindings()),
				Findings:   findings,
			}
			if err := opts.formatter(cmd).Success(result); err != nil {
				return err
			}
			if opts.Strict && len(findings) > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d consistency finding(s)", len(findings)))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit 1 when findings are present")
	return cmd
}
