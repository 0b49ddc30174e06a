// Package model opens the dictionary, action and grammar tables together and
// wires them to a matcher.
package model

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/salin/internal/compiler"
	"github.com/roach88/salin/internal/config"
	"github.com/roach88/salin/internal/engine"
	"github.com/roach88/salin/internal/grammar"
	"github.com/roach88/salin/internal/ir"
	"github.com/roach88/salin/internal/lexicon"
)

// Model holds the three tables of one lexicon.
type Model struct {
	Dictionary *lexicon.Store
	Actions    *lexicon.Store
	Grammar    *grammar.Store

	minMatch int
	logger   *zap.Logger
}

// Open loads all three resources named by cfg. Any load failure fails the
// whole open.
func Open(cfg *config.Config, logger *zap.Logger) (*Model, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	lexOpts := []lexicon.Option{lexicon.WithLogger(logger)}
	if cfg.Normalize {
		lexOpts = append(lexOpts, lexicon.WithNormalization())
	}

	dict, err := lexicon.Open(lexicon.Dictionary, cfg.Dictionary, lexOpts...)
	if err != nil {
		return nil, err
	}
	actions, err := lexicon.Open(lexicon.Actions, cfg.Actions, lexOpts...)
	if err != nil {
		return nil, err
	}
	rules, err := grammar.Open(cfg.Grammar, grammar.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return &Model{
		Dictionary: dict,
		Actions:    actions,
		Grammar:    rules,
		minMatch:   cfg.MinMatch,
		logger:     logger,
	}, nil
}

// MinMatch returns the configured matcher threshold.
func (m *Model) MinMatch() int {
	return m.minMatch
}

// Matcher returns a matcher over the dictionary and grammar. The matcher
// reads the live tables, so later mutations are visible to it.
func (m *Model) Matcher(opts ...engine.Option) *engine.Matcher {
	opts = append([]engine.Option{engine.WithLogger(m.logger)}, opts...)
	return engine.New(m.Dictionary, m.Grammar, opts...)
}

// Table returns the lexical table for kind.
func (m *Model) Table(kind lexicon.Kind) (*lexicon.Store, error) {
	switch kind {
	case lexicon.Dictionary:
		return m.Dictionary, nil
	case lexicon.Actions:
		return m.Actions, nil
	default:
		return nil, fmt.Errorf("unknown table %q", kind)
	}
}

// Validate runs the cross-table checks.
func (m *Model) Validate() []compiler.ValidationError {
	return compiler.Validate(m.Dictionary.Entries(), m.Actions.Entries(), m.Grammar.Rules())
}

// Save writes all three tables back to their resources.
func (m *Model) Save() error {
	if err := m.Dictionary.Save(); err != nil {
		return err
	}
	if err := m.Actions.Save(); err != nil {
		return err
	}
	return m.Grammar.Save()
}

// Snapshotter persists table snapshots. Implemented by *store.Store.
type Snapshotter interface {
	WriteLexicon(ctx context.Context, table string, entries []ir.LexicalEntry) error
	WriteGrammar(ctx context.Context, rules []ir.Rule) error
}

// Export writes a snapshot of all three tables to dst.
func (m *Model) Export(ctx context.Context, dst Snapshotter) error {
	for _, t := range []*lexicon.Store{m.Dictionary, m.Actions} {
		if err := dst.WriteLexicon(ctx, string(t.Kind()), t.Entries()); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	if err := dst.WriteGrammar(ctx, m.Grammar.Rules()); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	m.logger.Info("exported snapshot",
		zap.Int("dictionary", m.Dictionary.Len()),
		zap.Int("actions", m.Actions.Len()),
		zap.Int("rules", m.Grammar.Len()))
	return nil
}
