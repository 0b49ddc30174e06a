// Package store provides SQLite-backed snapshots of the lexical tables and an
// append-only match history log.
//
// # Tables
//
//   - lexicon_entries: dictionary and action rows, keyed by (table_name, idx)
//   - grammar_rules / grammar_tags: rules and their bindings, tag lists kept in
//     storage form so unknown elements survive a round trip
//   - match_runs / match_results: one row per recorded matcher call, plus its
//     ranked results
//
// # Ordering
//
// Every read orders by a logical column (position, rule_pos, idx_pos, seq,
// rank), never by timestamps, so a snapshot reads back in the order it was
// written.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
