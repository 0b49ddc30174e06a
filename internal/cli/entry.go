package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/salin/internal/ir"
	"github.com/roach88/salin/internal/lexicon"
)

// EntryOptions holds flags shared by the entry subcommands.
type EntryOptions struct {
	*RootOptions
	Table string
	Save  bool
}

// EntryResult reports the state of an entry after a mutation.
type EntryResult struct {
	Table   lexicon.Kind     `json:"table"`
	Action  string           `json:"action"`
	Changed bool             `json:"changed"`
	Entry   *ir.LexicalEntry `json:"entry,omitempty"`
	Saved   bool             `json:"saved"`
}

// String renders the text form.
func (r EntryResult) String() string {
	status := "unchanged"
	if r.Changed {
		status = "ok"
	}
	s := fmt.Sprintf("%s %s: %s", r.Table, r.Action, status)
	if r.Entry != nil {
		s += fmt.Sprintf("\n  %s: %q -> %q", r.Entry.Index, r.Entry.Word, r.Entry.Associated)
	}
	if r.Saved {
		s += "\n  saved"
	}
	return s
}

// NewEntryCommand creates the entry command group.
func NewEntryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EntryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Edit dictionary or action table entries",
		Long: `Edit one lexical table. Changes stay in memory unless --save is given,
in which case the table's resource file is rewritten.`,
	}
	cmd.PersistentFlags().StringVarP(&opts.Table, "table", "t", string(lexicon.Dictionary), "table to edit (dictionary|actions)")
	cmd.PersistentFlags().BoolVar(&opts.Save, "save", false, "write the table back to its resource")

	cmd.AddCommand(newEntryMutation(opts, "set <index> <word> [item...]", "Create or replace an entry", cobra.MinimumNArgs(2),
		func(t *lexicon.Store, args []string) (ir.Key, bool, error) {
			index := ir.Key(args[0])
			t.SetEntry(index, args[1], args[2:]...)
			return index, true, nil
		}))

	var byWord bool
	add := newEntryMutation(opts, "add <index|word> <item>", "Append an item to an entry", cobra.ExactArgs(2),
		func(t *lexicon.Store, args []string) (ir.Key, bool, error) {
			if byWord {
				index, ok := t.WordToIndex(args[0])
				if !ok {
					return "", false, NewExitError(ExitCommandError, fmt.Sprintf("word %q not in %s table", args[0], t.Kind()))
				}
				return index, t.AddAssociatedByWord(args[0], args[1]), nil
			}
			index := ir.Key(args[0])
			if _, ok := t.Entry(index); !ok {
				return "", false, NewExitError(ExitCommandError, fmt.Sprintf("no %s entry at index %s", t.Kind(), index))
			}
			return index, t.AddAssociated(index, args[1]), nil
		})
	add.Flags().BoolVar(&byWord, "by-word", false, "treat the first argument as a canonical word")
	cmd.AddCommand(add)

	cmd.AddCommand(newEntryMutation(opts, "remove <index> <item>", "Remove an item from an entry", cobra.ExactArgs(2),
		func(t *lexicon.Store, args []string) (ir.Key, bool, error) {
			index := ir.Key(args[0])
			return index, t.RemoveAssociated(index, args[1]), nil
		}))

	cmd.AddCommand(newEntryMutation(opts, "delete <index>", "Delete an entry", cobra.ExactArgs(1),
		func(t *lexicon.Store, args []string) (ir.Key, bool, error) {
			index := ir.Key(args[0])
			return index, t.RemoveEntry(index), nil
		}))

	cmd.AddCommand(newEntryMutation(opts, "rename <index> <word>", "Change an entry's canonical word", cobra.ExactArgs(2),
		func(t *lexicon.Store, args []string) (ir.Key, bool, error) {
			index := ir.Key(args[0])
			return index, t.UpdateWord(index, args[1]), nil
		}))

	return cmd
}

// entryMutation applies one edit and reports the affected index and whether
// the table changed.
type entryMutation func(t *lexicon.Store, args []string) (ir.Key, bool, error)

func newEntryMutation(opts *EntryOptions, use, short string, nargs cobra.PositionalArgs, mutate entryMutation) *cobra.Command {
	return &cobra.Command{
		Use:           use,
		Short:         short,
		Args:          nargs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseTable(opts.Table)
			if err != nil {
				return err
			}
			m, _, err := loadModel(opts.RootOptions)
			if err != nil {
				return err
			}
			table, err := m.Table(kind)
			if err != nil {
				return WrapExitError(ExitCommandError, "cannot edit", err)
			}

			index, changed, err := mutate(table, args)
			if err != nil {
				return err
			}

			result := EntryResult{Table: kind, Action: cmd.Name(), Changed: changed}
			if e, ok := table.Entry(index); ok {
				result.Entry = &e
			}
			if opts.Save && changed {
				if err := table.Save(); err != nil {
					return WrapExitError(ExitCommandError, "failed to save", err)
				}
				result.Saved = true
			}
			return opts.formatter(cmd).Success(result)
		},
	}
}
