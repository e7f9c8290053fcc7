// Package tsdb is an embeddable, append-only columnar store for market-data
// ticks (timestamp, price, volume), backed by memory-mapped column files
// and an in-memory ordered index over timestamps.
//
// # Quick start
//
//	db, err := tsdb.Open("./data", "AAPL")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	ctx := context.Background()
//	db.Append(ctx, tsdb.Tick{Timestamp: uint64(time.Now().UnixNano()), Price: 189.32, Volume: 100})
//	db.Sync(ctx) // wait for durability
//
//	ticks, err := db.QueryRange(ctx, lo, hi)
//
// # Write path
//
// Append enqueues a tick onto a FIFO queue and returns immediately; a
// single background goroutine drains the queue, appends each tick to the
// timestamp, price, and volume columns in that fixed order, updates the
// ordered index, and flushes the batch according to the configured
// SyncMode. Sync blocks the caller until every tick enqueued before the
// call has been committed.
//
// # Read path
//
// Queries (QueryRange, QueryLast) are served directly from the
// memory-mapped columns and run concurrently with each other; they only
// block behind the writer for the duration of a single batch commit.
//
// # Durability
//
// Column files persist their own committed row count in their header, so
// reopening a database after a clean shutdown recovers exactly the rows
// that were committed. The in-memory timestamp index is never persisted;
// it is rebuilt from the columns on every Open.
package tsdb
