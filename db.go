package tsdb

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/SSYernar/Low-Latency-Time-Series-Database-TSDB-for-Market-Data/internal/bptree"
	"github.com/SSYernar/Low-Latency-Time-Series-Database-TSDB-for-Market-Data/internal/column"
)

const (
	timestampsFile = "timestamps.bin"
	pricesFile     = "prices.bin"
	volumesFile    = "volumes.bin"

	slotWidth = 8 // all three columns are fixed 8-byte (uint64/float64) slots
)

// Tick is a single market-data sample: a price and a traded volume observed
// at a point in time. Timestamp is an opaque monotonic integer from the
// caller's domain; this package imposes no monotonicity or uniqueness
// requirement on it.
type Tick struct {
	Timestamp uint64
	Price     float64
	Volume    uint64
}

type tick struct {
	timestamp uint64
	price     float64
	volume    uint64
}

// Db is an embeddable, append-only columnar store for market-data ticks.
// Writes are buffered through a background writer goroutine; reads are
// served directly from the memory-mapped columns and an in-memory ordered
// index over timestamps.
type Db struct {
	dir string

	tsCol    *column.Column
	priceCol *column.Column
	volCol   *column.Column

	// mu guards the (index, columns) pair: the writer holds it exclusively
	// while committing a batch, queries hold it for reading.
	mu    sync.RWMutex
	index *bptree.Tree

	queue   *tickQueue
	pending atomic.Int64

	syncMu   sync.Mutex
	syncCond *sync.Cond

	writerWg sync.WaitGroup

	writeErr atomic.Pointer[error]
	closed   atomic.Bool

	opts   options
	logger *Logger
}

// Open opens the database for symbol under dataDir, creating
// <dataDir>/<symbol> and its column files if they do not exist, and
// replaying existing column data into a fresh in-memory index.
func Open(dataDir, symbol string, optFns ...Option) (*Db, error) {
	o := applyOptions(optFns)

	dir := filepath.Join(dataDir, symbol)
	if err := o.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, translateError("mkdir", dir, err)
	}

	tsCol, err := column.Open(filepath.Join(dir, timestampsFile), slotWidth)
	if err != nil {
		return nil, translateError("open", filepath.Join(dir, timestampsFile), err)
	}

	priceCol, err := column.Open(filepath.Join(dir, pricesFile), slotWidth)
	if err != nil {
		_ = tsCol.Close()
		return nil, translateError("open", filepath.Join(dir, pricesFile), err)
	}

	volCol, err := column.Open(filepath.Join(dir, volumesFile), slotWidth)
	if err != nil {
		_ = tsCol.Close()
		_ = priceCol.Close()
		return nil, translateError("open", filepath.Join(dir, volumesFile), err)
	}

	// The three columns are always appended to in the same fixed order
	// under the same lock, so after a clean close their committed counts
	// agree. A crash between two column appends can leave the later
	// columns short by the rows of that writer batch; the smallest count
	// that any column confirms is the only row count the database can trust.
	rowCount := minCount(tsCol.Count(), priceCol.Count(), volCol.Count())

	index := bptree.New(bptree.DefaultFanout)
	for i := uint64(0); i < rowCount; i++ {
		ts, err := tsCol.ReadUint64(i)
		if err != nil {
			_ = tsCol.Close()
			_ = priceCol.Close()
			_ = volCol.Close()
			return nil, &InvalidFormatError{Path: dir, cause: err}
		}
		index.Insert(ts, i)
	}

	db := &Db{
		dir:      dir,
		tsCol:    tsCol,
		priceCol: priceCol,
		volCol:   volCol,
		index:    index,
		queue:    newTickQueue(o.queueCapacity),
		opts:     o,
		logger:   o.logger,
	}
	db.syncCond = sync.NewCond(&db.syncMu)

	tsCol.OnGrow(func(n uint64) { db.logger.LogGrowth(context.Background(), timestampsFile, n) })
	priceCol.OnGrow(func(n uint64) { db.logger.LogGrowth(context.Background(), pricesFile, n) })
	volCol.OnGrow(func(n uint64) { db.logger.LogGrowth(context.Background(), volumesFile, n) })

	db.writerWg.Add(1)
	go db.writerLoop()

	db.logger.LogOpen(context.Background(), dir, rowCount, nil)
	return db, nil
}

// Count returns the number of committed rows.
func (db *Db) Count() uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return minCount(db.tsCol.Count(), db.priceCol.Count(), db.volCol.Count())
}

func (db *Db) stickyErr() error {
	if p := db.writeErr.Load(); p != nil {
		return *p
	}
	return nil
}

func (db *Db) setStickyErr(err error) {
	db.writeErr.Store(&err)
}

func minCount(a, b, c uint64) uint64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
