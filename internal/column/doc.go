// Package column implements a single append-only, mmap-backed column of
// fixed-width values.
//
// # On-disk layout
//
//	offset 0        : committed_count (uint64, little-endian)
//	offset 8        : slot 0
//	offset 8+n*size : slot n
//
// Only the first committed_count slots hold valid data; slots beyond that
// are allocated capacity that has not yet been committed. Capacity and
// committed_count are tracked independently so that growth (extending the
// file and remapping it) never has to coincide with a commit.
//
// # Growth
//
// The column starts with capacity for one 4KiB chunk of slots and grows by
// one chunk at a time, or by doubling when a chunk's worth of slots would
// not strictly increase capacity (e.g. very wide slots). Growth is guarded
// by double-checked locking: readers and the single writer both take the
// fast, lock-free path while there is capacity, and only the rare grow
// operation pays for a mutex.
package column
