package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/salin/internal/ir"
	"github.com/roach88/salin/internal/store"
)

// HistoryResult lists recorded match runs.
type HistoryResult struct {
	Runs []ir.MatchRun `json:"runs"`
}

// String renders one line per run.
func (r HistoryResult) String() string {
	if len(r.Runs) == 0 {
		return "no recorded runs"
	}
	lines := make([]string, len(r.Runs))
	for i, run := range r.Runs {
		top := "-"
		if len(run.Matches) > 0 {
			top = fmt.Sprintf("%s/%s (%d)", run.Matches[0].RuleName, run.Matches[0].Index, run.Matches[0].MatchCount)
		}
		lines[i] = fmt.Sprintf("%d %s [%s] min=%d results=%d top=%s",
			run.Seq, run.ID, strings.Join(run.Words, " "), run.MinMatch, len(run.Matches), top)
	}
	return strings.Join(lines, "\n")
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:           "history",
		Short:         "List match runs recorded with match --record",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := dbPath
			if path == "" {
				cfg, err := loadConfig(rootOpts)
				if err != nil {
					return err
				}
				path = cfg.History
			}
			if path == "" {
				return NewExitError(ExitCommandError, "no history database: pass --db or set history in the config")
			}

			if _, err := os.Stat(path); err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("history database not found: %s", path), err)
			}

			db, err := store.Open(path, store.WithLogger(rootOpts.logger()))
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open history", err)
			}
			defer db.Close()

			runs, err := db.ReadMatchRuns(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read history", err)
			}
			return rootOpts.formatter(cmd).Success(HistoryResult{Runs: runs})
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "history database (default from config)")
	return cmd
}
