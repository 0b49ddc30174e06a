package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/salin/internal/store"
)

// ExportResult summarizes a snapshot export.
type ExportResult struct {
	Path       string `json:"path"`
	Dictionary int    `json:"dictionary"`
	Actions    int    `json:"actions"`
	Rules      int    `json:"rules"`
}

// String renders the text form.
func (r ExportResult) String() string {
	return fmt.Sprintf("exported %d dictionary, %d action entries and %d rules to %s",
		r.Dictionary, r.Actions, r.Rules, r.Path)
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <db>",
		Short: "Write a SQLite snapshot of all three tables",
		Long: `Write the dictionary, action table and grammar to a SQLite database.
An existing snapshot in the same database is replaced; recorded match runs
are kept.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := loadModel(rootOpts)
			if err != nil {
				return err
			}
			db, err := store.Open(args[0], store.WithLogger(rootOpts.logger()))
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			defer db.Close()

			if err := m.Export(cmd.Context(), db); err != nil {
				return WrapExitError(ExitCommandError, "export failed", err)
			}
			return rootOpts.formatter(cmd).Success(ExportResult{
				Path:       args[0],
				Dictionary: m.Dictionary.Len(),
				Actions:    m.Actions.Len(),
				Rules:      m.Grammar.Len(),
			})
		},
	}
}
