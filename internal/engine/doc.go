// Package engine implements the grammar-rule matcher.
//
// Given a list of input words, the matcher resolves each word to an index
// through the dictionary, binds the index to the tags of the first grammar
// rule that lists it, and scores every rule binding in the grammar table by
// how many of its tags appear among the input's tags.
//
// Matching is deterministic and single-pass:
//  1. Words are resolved in input order; unknown words are skipped.
//  2. A resolved index binds to the FIRST rule, in table order, that lists it.
//  3. The bound tags of all words form one input tag set.
//  4. Each (rule, index) binding scores the number of its tags found in that
//     set (membership, not multiplicity).
//  5. Bindings scoring at least minMatch are kept and stable-sorted by score,
//     highest first.
//
// Nothing is cached between calls; the stores may change between matches.
package engine
