// Package synchro computes bounds on, or the exact value of, the minimum
// length synchronizing word (MLSW) of a deterministic complete automaton.
//
// A word w over the automaton's alphabet is synchronizing if applying it
// from every state lands on the same state; the MLSW is the shortest such
// word, when one exists. This module runs a configurable pipeline of five
// algorithms against a shared, monotonically tightened result:
//
//	reduce/   — forward-BFS automaton restriction, component J
//	beam/     — bounded-width inverse-BFS upper bound, component G
//	eppstein/ — pairwise-merge upper bound, component H
//	exact/    — bidirectional meet-in-the-middle search, components K/L
//	brute/    — exhaustive subset-lattice BFS for small automata
//
// automaton/ and bitset/ hold the core data types; transition/,
// concurrency/, graphutil/, trie/, pairs/, and memalloc/ are shared
// infrastructure; config/ and result/ hold the pipeline's configuration
// and shared state; runner/ orchestrates the pipeline end to end.
package synchro
