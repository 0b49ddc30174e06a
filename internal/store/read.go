package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/salin/internal/ir"
	"github.com/roach88/salin/internal/tag"
)

// ReadLexicon returns the snapshot of one lexical table in write order.
// Returns an empty slice (not nil) when the table has no rows.
func (s *Store) ReadLexicon(ctx context.Context, table string) ([]ir.LexicalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, word, associated
		FROM lexicon_entries
		WHERE table_name = ?
		ORDER BY position ASC
	`, table)
	if err != nil {
		return nil, fmt.Errorf("query lexicon %s: %w", table, err)
	}
	defer rows.Close()

	entries := []ir.LexicalEntry{}
	for rows.Next() {
		var (
			e          ir.LexicalEntry
			index      string
			associated string
		)
		if err := rows.Scan(&index, &e.Word, &associated); err != nil {
			return nil, fmt.Errorf("scan lexicon entry: %w", err)
		}
		e.Index = ir.Key(index)
		if e.Associated, err = unmarshalStrings(associated); err != nil {
			return nil, fmt.Errorf("lexicon %s index %s: %w", table, index, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lexicon: %w", err)
	}
	return entries, nil
}

// ReadGrammar returns the grammar snapshot in write order, rules without
// bindings included.
func (s *Store) ReadGrammar(ctx context.Context) ([]ir.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.rule_name, t.idx, t.stored
		FROM grammar_rules r
		LEFT JOIN grammar_tags t ON t.rule_name = r.rule_name
		ORDER BY r.rule_pos ASC, t.idx_pos ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query grammar: %w", err)
	}
	defer rows.Close()

	rules := []ir.Rule{}
	for rows.Next() {
		var (
			name   string
			index  *string
			stored *string
		)
		if err := rows.Scan(&name, &index, &stored); err != nil {
			return nil, fmt.Errorf("scan grammar row: %w", err)
		}
		if len(rules) == 0 || rules[len(rules)-1].Name != name {
			rules = append(rules, ir.Rule{Name: name})
		}
		if index == nil {
			continue
		}
		elems, err := unmarshalStored(*stored)
		if err != nil {
			return nil, fmt.Errorf("rule %s index %s: %w", name, *index, err)
		}
		r := &rules[len(rules)-1]
		r.Bindings = append(r.Bindings, ir.StoredBinding{
			RuleName: name,
			Index:    ir.Key(*index),
			Stored:   elems,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grammar: %w", err)
	}
	return rules, nil
}

// ReadMatchRuns returns every recorded run with its results, ordered by seq.
func (s *Store) ReadMatchRuns(ctx context.Context) ([]ir.MatchRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, words, min_match
		FROM match_runs
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query match runs: %w", err)
	}
	defer rows.Close()

	runs := []ir.MatchRun{}
	for rows.Next() {
		var (
			run   ir.MatchRun
			words string
		)
		if err := rows.Scan(&run.ID, &run.Seq, &words, &run.MinMatch); err != nil {
			return nil, fmt.Errorf("scan match run: %w", err)
		}
		if run.Words, err = unmarshalStrings(words); err != nil {
			return nil, fmt.Errorf("match run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match runs: %w", err)
	}
	rows.Close()

	for i := range runs {
		matches, err := s.readMatchResults(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Matches = matches
	}
	return runs, nil
}

func (s *Store) readMatchResults(ctx context.Context, runID string) ([]ir.Match, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rule_name, idx, match_count, rule_tags, matched_words
		FROM match_results
		WHERE run_id = ?
		ORDER BY rank ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query match results: %w", err)
	}
	defer rows.Close()

	matches := []ir.Match{}
	for rows.Next() {
		var (
			m                 ir.Match
			index             string
			ruleTags, matched string
		)
		if err := rows.Scan(&m.RuleName, &index, &m.MatchCount, &ruleTags, &matched); err != nil {
			return nil, fmt.Errorf("scan match result: %w", err)
		}
		m.Index = ir.Key(index)
		if m.RuleTags, err = unmarshalTags(ruleTags); err != nil {
			return nil, fmt.Errorf("match run %s: %w", runID, err)
		}
		if m.MatchedWords, err = unmarshalMatchedWords(matched); err != nil {
			return nil, fmt.Errorf("match run %s: %w", runID, err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match results: %w", err)
	}
	return matches, nil
}

func unmarshalMatchedWords(data string) ([]ir.MatchedWord, error) {
	var rows []matchedWordRow
	if err := json.Unmarshal([]byte(data), &rows); err != nil {
		return nil, fmt.Errorf("unmarshal matched words: %w", err)
	}
	out := make([]ir.MatchedWord, len(rows))
	for i, r := range rows {
		out[i] = ir.MatchedWord{Word: r.Word, MatchedTags: tag.DecodeAll(r.MatchedTags)}
	}
	return out, nil
}
