// Package bptree implements an in-memory, arena-addressed B+ tree keyed by
// uint64, used to index append-only row storage by timestamp.
//
// Nodes live in a single growable slice and are referenced by their index
// into that slice rather than by pointer. This keeps the tree free of
// pointer chasing and GC pressure for large trees, and makes every
// reference trivially comparable and serializable as a plain integer.
//
// Leaves are chained left to right via a next-leaf index, so an ascending
// range scan only needs to find the first leaf once and then walk the
// chain, without re-descending from the root for each leaf boundary.
//
// Splits propagate upward along the descent path recorded during insert:
// a leaf split inserts a separator key into its parent, which may itself
// overflow and split, all the way up to the root. This package does not
// implement deletion; rows are never removed once indexed.
package bptree
