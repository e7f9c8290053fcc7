// Package mmap provides a growable, read-write memory-mapped file primitive
// for columnar storage.
//
// # Overview
//
// A Mapping owns one memory-mapped region covering the whole of a file: a
// fixed-size header followed by a data area. Growth is handled by unmapping
// the current region, extending the file with Truncate, and remapping at the
// new size — the caller is responsible for serializing growth (see
// internal/column for the double-checked locking pattern built on top of
// this package).
//
// # Durability
//
// Sync flushes a byte range back to the underlying file. It defaults to an
// asynchronous msync (MS_ASYNC on Unix, a deferred FlushViewOfFile on
// Windows): the kernel is told the range is dirty but the call does not wait
// for the write to reach disk. Pass async=false to block until the range is
// durable (MS_SYNC / FlushFileBuffers).
//
// # Platform support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_SHARED, msync(2) for flushes.
//   - Windows: CreateFileMapping/MapViewOfFile, FlushViewOfFile for flushes.
//
// # Thread safety
//
// Bytes() is safe for concurrent readers as long as no goroutine calls Grow
// or Close concurrently. Grow and Close must be externally synchronized by
// the caller; Sync may be called concurrently with readers.
package mmap
