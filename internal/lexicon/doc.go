// Package lexicon implements the dictionary and action tables.
//
// Both tables share one shape: an index maps to a canonical word plus an
// ordered list of associated strings (definitions for the dictionary, action
// names for the action table). Enumeration order is the order of the backing
// resource, with new indices appended.
//
// Mutations are in-memory only. Nothing is written until Save is called.
package lexicon
