package tsdb

import (
	"context"
	"fmt"
)

// QueryRange returns every committed tick with lo <= Timestamp <= hi, in
// ascending timestamp order. It holds the shared query lock for the
// duration of the scan, so it may run concurrently with other queries but
// blocks the writer from committing a new batch (and vice versa).
func (db *Db) QueryRange(ctx context.Context, lo, hi uint64) ([]Tick, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	pairs := db.index.RangeQuery(lo, hi)
	ticks := make([]Tick, len(pairs))
	for i, p := range pairs {
		price, err := db.priceCol.ReadFloat64(p.Value)
		if err != nil {
			db.logger.LogQuery(ctx, lo, hi, i, err)
			return nil, &OutOfRangeError{Requested: fmt.Sprintf("row %d", p.Value), cause: err}
		}
		volume, err := db.volCol.ReadUint64(p.Value)
		if err != nil {
			db.logger.LogQuery(ctx, lo, hi, i, err)
			return nil, &OutOfRangeError{Requested: fmt.Sprintf("row %d", p.Value), cause: err}
		}
		ticks[i] = Tick{Timestamp: p.Key, Price: price, Volume: volume}
	}

	db.logger.LogQuery(ctx, lo, hi, len(ticks), nil)
	return ticks, nil
}

// QueryLast returns the n most recently committed ticks in row-insertion
// order (not sorted by timestamp: out-of-order appends stay in the order
// they were committed). If fewer than n rows are committed, it returns all
// of them.
func (db *Db) QueryLast(ctx context.Context, n int) ([]Tick, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}
	if n <= 0 {
		return nil, nil
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	count := minCount(db.tsCol.Count(), db.priceCol.Count(), db.volCol.Count())
	if uint64(n) > count {
		n = int(count)
	}

	start := count - uint64(n)
	ticks := make([]Tick, n)
	for i := 0; i < n; i++ {
		row := start + uint64(i)
		ts, err := db.tsCol.ReadUint64(row)
		if err != nil {
			return nil, &OutOfRangeError{Requested: fmt.Sprintf("row %d", row), cause: err}
		}
		price, err := db.priceCol.ReadFloat64(row)
		if err != nil {
			return nil, &OutOfRangeError{Requested: fmt.Sprintf("row %d", row), cause: err}
		}
		volume, err := db.volCol.ReadUint64(row)
		if err != nil {
			return nil, &OutOfRangeError{Requested: fmt.Sprintf("row %d", row), cause: err}
		}
		ticks[i] = Tick{Timestamp: ts, Price: price, Volume: volume}
	}

	db.logger.LogQuery(ctx, start, count, n, nil)
	return ticks, nil
}
