package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/salin/internal/lexicon"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "list dictionary|actions|grammar",
		Short:     "Dump one table",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(lexicon.Dictionary), string(lexicon.Actions), "grammar"},
		Example: `  salin list dictionary
  salin list grammar --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := loadModel(rootOpts)
			if err != nil {
				return err
			}
			out := rootOpts.formatter(cmd)

			if args[0] == "grammar" {
				if out.Format == "json" {
					return out.Success(m.Grammar.Bindings())
				}
				return out.Success(m.Grammar)
			}

			kind, err := parseTable(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("cannot list %q", args[0]), err)
			}
			table, err := m.Table(kind)
			if err != nil {
				return WrapExitError(ExitCommandError, "cannot list", err)
			}
			if out.Format == "json" {
				return out.Success(table.Entries())
			}
			return out.Success(table)
		},
	}
}
