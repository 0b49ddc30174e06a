package store

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/salin/internal/ir"
	"github.com/roach88/salin/internal/tag"
)

// WriteLexicon replaces the snapshot of one lexical table. Rows are written
// with their position in entries so ReadLexicon returns them in the same
// order.
func (s *Store) WriteLexicon(ctx context.Context, table string, entries []ir.LexicalEntry) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM lexicon_entries WHERE table_name = ?`, table); err != nil {
			return err
		}
		for pos, e := range entries {
			associated, err := marshalStrings(e.Associated)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO lexicon_entries (table_name, idx, position, word, associated)
				VALUES (?, ?, ?, ?, ?)
			`, table, string(e.Index), pos, e.Word, associated); err != nil {
				return fmt.Errorf("index %s: %w", e.Index, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write lexicon %s: %w", table, err)
	}
	s.logger.Debug("wrote lexicon snapshot", zap.String("table", table), zap.Int("entries", len(entries)))
	return nil
}

// WriteGrammar replaces the grammar snapshot. Rules without bindings are
// kept.
func (s *Store) WriteGrammar(ctx context.Context, rules []ir.Rule) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		// grammar_tags rows go with their rule via ON DELETE CASCADE
		if _, err := tx.ExecContext(ctx, `DELETE FROM grammar_rules`); err != nil {
			return err
		}
		for rulePos, r := range rules {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO grammar_rules (rule_name, rule_pos) VALUES (?, ?)
			`, r.Name, rulePos); err != nil {
				return fmt.Errorf("rule %s: %w", r.Name, err)
			}
			for idxPos, b := range r.Bindings {
				stored, err := marshalStored(b.Stored)
				if err != nil {
					return err
				}
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO grammar_tags (rule_name, idx, idx_pos, stored)
					VALUES (?, ?, ?, ?)
				`, r.Name, string(b.Index), idxPos, stored); err != nil {
					return fmt.Errorf("rule %s index %s: %w", r.Name, b.Index, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write grammar: %w", err)
	}
	s.logger.Debug("wrote grammar snapshot", zap.Int("rules", len(rules)))
	return nil
}

// WriteMatchRun appends a run and its ranked results to the history log and
// returns the sequence number assigned to it. Sequence numbers are a logical
// counter: one past the largest already stored.
//
// Writing a run whose ID is already stored fails.
func (s *Store) WriteMatchRun(ctx context.Context, run ir.MatchRun) (int64, error) {
	words, err := marshalStrings(run.Words)
	if err != nil {
		return 0, fmt.Errorf("write match run: %w", err)
	}

	var seq int64
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(seq), 0) + 1 FROM match_runs`).Scan(&seq); err != nil {
			return fmt.Errorf("next seq: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO match_runs (id, seq, words, min_match) VALUES (?, ?, ?, ?)
		`, run.ID, seq, words, run.MinMatch); err != nil {
			return err
		}
		for rank, m := range run.Matches {
			ruleTags, err := marshalTags(m.RuleTags)
			if err != nil {
				return err
			}
			matched, err := marshalMatchedWords(m.MatchedWords)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO match_results
				(run_id, rank, rule_name, idx, match_count, rule_tags, matched_words)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, run.ID, rank, m.RuleName, string(m.Index), m.MatchCount, ruleTags, matched); err != nil {
				return fmt.Errorf("result %d: %w", rank, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("write match run %s: %w", run.ID, err)
	}
	return seq, nil
}

func marshalMatchedWords(words []ir.MatchedWord) (string, error) {
	rows := make([]matchedWordRow, len(words))
	for i, w := range words {
		rows[i] = matchedWordRow{Word: w.Word, MatchedTags: tag.EncodeAll(w.MatchedTags)}
	}
	data, err := marshalJSON(rows)
	if err != nil {
		return "", fmt.Errorf("marshal matched words: %w", err)
	}
	return data, nil
}

// inTx runs fn in a transaction, committing on success.
func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
