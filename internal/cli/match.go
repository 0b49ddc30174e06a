package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/salin/internal/ir"
	"github.com/roach88/salin/internal/store"
)

// MatchOptions holds flags for the match command.
type MatchOptions struct {
	*RootOptions
	MinMatch int
	Record   bool
	DB       string
}

// MatchResult is the output of the match command.
type MatchResult struct {
	RunID    string     `json:"run_id,omitempty"`
	Seq      int64      `json:"seq,omitempty"`
	Words    []string   `json:"words"`
	MinMatch int        `json:"min_match"`
	Matches  []ir.Match `json:"matches"`
}

// String renders the text form.
func (r MatchResult) String() string {
	var b strings.Builder
	if len(r.Matches) == 0 {
		fmt.Fprintf(&b, "no rule matched at least %d tag(s)", r.MinMatch)
	}
	for i, m := range r.Matches {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "#%d %s/%s count=%d [%s]", i+1, m.RuleName, m.Index, m.MatchCount,
			strings.Join(tagNames(m.RuleTags), ", "))
		for _, w := range m.MatchedWords {
			fmt.Fprintf(&b, "\n    %s: %s", w.Word, strings.Join(tagNames(w.MatchedTags), ", "))
		}
	}
	if r.RunID != "" {
		fmt.Fprintf(&b, "\nrecorded run %s (seq %d)", r.RunID, r.Seq)
	}
	return b.String()
}

// NewMatchCommand creates the match command.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "match <word>...",
		Short: "Rank grammar rules against input words",
		Long: `Bind each word to the tags of the first rule listing its index, then
score every rule binding by how many of its tags occur among the bound tags.
Bindings scoring at least --min-match are printed, highest first.

Words missing from the dictionary are skipped. With --record the run is
appended to the history database (--db, or history: in the config).`,
		Example: `  salin match allqu purin
  salin match allqu purin --min-match 2 --format json
  salin match allqu --record --db history.db`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, opts, args)
		},
	}

	cmd.Flags().IntVar(&opts.MinMatch, "min-match", -1, "minimum score (default from config)")
	cmd.Flags().BoolVar(&opts.Record, "record", false, "append the run to the history database")
	cmd.Flags().StringVar(&opts.DB, "db", "", "history database (default from config)")

	return cmd
}

func runMatch(cmd *cobra.Command, opts *MatchOptions, words []string) error {
	m, cfg, err := loadModel(opts.RootOptions)
	if err != nil {
		return err
	}

	minMatch := m.MinMatch()
	if cmd.Flags().Changed("min-match") {
		minMatch = opts.MinMatch
	}
	matcher := m.Matcher()
	out := opts.formatter(cmd)

	if !opts.Record {
		return out.Success(MatchResult{
			Words:    words,
			MinMatch: minMatch,
			Matches:  matcher.Match(words, minMatch),
		})
	}

	dbPath := opts.DB
	if dbPath == "" {
		dbPath = cfg.History
	}
	if dbPath == "" {
		return NewExitError(ExitCommandError, "--record needs a database: pass --db or set history in the config")
	}
	db, err := store.Open(dbPath, store.WithLogger(opts.logger()))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open history", err)
	}
	defer db.Close()

	run, err := matcher.MatchAndRecord(cmd.Context(), db, words, minMatch)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to record run", err)
	}
	out.VerboseLog("recorded run %s in %s", run.ID, dbPath)
	return out.Success(MatchResult{
		RunID:    run.ID,
		Seq:      run.Seq,
		Words:    run.Words,
		MinMatch: run.MinMatch,
		Matches:  run.Matches,
	})
}
