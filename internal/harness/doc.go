// Package harness runs match scenarios: YAML files that name a dictionary and
// a grammar resource, optionally mutate the loaded tables, match a list of
// words and check the ranked results.
//
// Each scenario runs against freshly loaded tables and a fresh in-memory
// history log, so scenarios never see each other's mutations. Run IDs are
// derived from the scenario name, which keeps golden snapshots stable.
//
// # Scenario format
//
//	name: simple-clause
//	description: a noun and a verb satisfy the clause rule
//	dictionary: ../lexicon/dics.json
//	grammar: ../lexicon/grammars.json
//	setup:
//	  - op: set_entry
//	    index: "6"
//	    word: puriq
//	    associated: [walker]
//	words: [allqu, purin]
//	min_match: 5
//	expect:
//	  - rule: clauseRule
//	    index: "10"
//	    match_count: 5
//	assertions:
//	  - type: count
//	    count: 1
//
// Resource paths are relative to the scenario file.
package harness
