package tsdb

import (
	"golang.org/x/time/rate"

	"github.com/SSYernar/Low-Latency-Time-Series-Database-TSDB-for-Market-Data/internal/fs"
)

// SyncMode controls how aggressively the background writer flushes
// committed columns back to disk.
type SyncMode int

const (
	// SyncAsync requests an asynchronous msync after each writer batch: the
	// kernel is told the range is dirty, but the writer does not wait for
	// it to reach disk. This is the default.
	SyncAsync SyncMode = iota
	// SyncImmediate blocks the writer on a durable msync after every
	// batch. This trades write throughput for a smaller window of
	// unflushed data after a crash.
	SyncImmediate
)

// DefaultWriterBatchSize is the maximum number of ticks the background
// writer drains from the queue before committing and moving on, used when
// WithWriterBatchSize is not given.
const DefaultWriterBatchSize = 1000

type options struct {
	logger          *Logger
	queueCapacity   int
	writerBatchSize int
	syncMode        SyncMode
	rateLimiter     *rate.Limiter
	fs              fs.FileSystem
}

// Option configures Open.
type Option func(*options)

// WithLogger configures structured logging for the writer pipeline, column
// growth, and queries. Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithQueueCapacity bounds the number of pending ticks the writer queue
// will hold before Append blocks. A capacity of 0 (the default) leaves the
// queue unbounded, matching the append-only, never-reject contract of the
// underlying column storage.
func WithQueueCapacity(capacity int) Option {
	return func(o *options) {
		if capacity < 0 {
			capacity = 0
		}
		o.queueCapacity = capacity
	}
}

// WithWriterBatchSize sets the maximum number of queued ticks the
// background writer drains and commits in a single pass before yielding
// and checking the queue again.
func WithWriterBatchSize(n int) Option {
	return func(o *options) {
		if n <= 0 {
			n = DefaultWriterBatchSize
		}
		o.writerBatchSize = n
	}
}

// WithSyncMode selects how the writer flushes committed data to disk.
func WithSyncMode(mode SyncMode) Option {
	return func(o *options) {
		o.syncMode = mode
	}
}

// WithAppendRateLimiter throttles Append to the given token-bucket limiter,
// one tick per token. Pass nil to disable throttling (the default).
//
// This is intended for bulk-load callers sharing a disk with latency
// sensitive readers; it has no effect on the background writer itself,
// only on how fast callers may enqueue new ticks.
func WithAppendRateLimiter(limiter *rate.Limiter) Option {
	return func(o *options) {
		o.rateLimiter = limiter
	}
}

// WithFileSystem overrides the file system used for directory setup
// (creating the database directory).
// Column files themselves are always opened through a real mmap, since
// mmap requires an OS file descriptor. This exists primarily for testing
// IO_ERROR handling with internal/fs.FaultyFS.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys == nil {
			fsys = fs.Default
		}
		o.fs = fsys
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:          NoopLogger(),
		writerBatchSize: DefaultWriterBatchSize,
		syncMode:        SyncAsync,
		fs:              fs.Default,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
