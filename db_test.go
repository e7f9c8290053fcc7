package tsdb

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAppendSyncQueryRange(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir, "AAPL")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	ticks := []Tick{
		{Timestamp: 100, Price: 10.0, Volume: 1},
		{Timestamp: 200, Price: 11.0, Volume: 2},
		{Timestamp: 300, Price: 12.0, Volume: 3},
	}
	for _, tk := range ticks {
		require.NoError(t, db.Append(ctx, tk))
	}
	require.NoError(t, db.Sync(ctx))

	assert.Equal(t, uint64(3), db.Count())

	got, err := db.QueryRange(ctx, 150, 300)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(200), got[0].Timestamp)
	assert.Equal(t, uint64(300), got[1].Timestamp)
	assert.Equal(t, 11.0, got[0].Price)
}

func TestQueryLast(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir, "AAPL")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	for i := uint64(0); i < 10; i++ {
		require.NoError(t, db.Append(ctx, Tick{Timestamp: i, Price: float64(i), Volume: 1}))
	}
	require.NoError(t, db.Sync(ctx))

	last, err := db.QueryLast(ctx, 3)
	require.NoError(t, err)
	require.Len(t, last, 3)
	assert.Equal(t, []uint64{7, 8, 9}, []uint64{last[0].Timestamp, last[1].Timestamp, last[2].Timestamp})

	all, err := db.QueryLast(ctx, 1000)
	require.NoError(t, err)
	assert.Len(t, all, 10)
}

func TestRecoversAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir, "AAPL")
	require.NoError(t, err)

	ctx := context.Background()
	for i := uint64(0); i < 50; i++ {
		require.NoError(t, db.Append(ctx, Tick{Timestamp: i, Price: float64(i), Volume: 1}))
	}
	require.NoError(t, db.Sync(ctx))
	require.NoError(t, db.Close())

	db2, err := Open(dir, "AAPL")
	require.NoError(t, err)
	defer db2.Close()

	assert.Equal(t, uint64(50), db2.Count())
	got, err := db2.QueryRange(ctx, 0, 49)
	require.NoError(t, err)
	assert.Len(t, got, 50)
}

func TestAppendAfterCloseFails(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir, "AAPL")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	err = db.Append(context.Background(), Tick{Timestamp: 1})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir, "AAPL")
	require.NoError(t, err)

	require.NoError(t, db.Close())
	require.NoError(t, db.Close())
}

func TestOutOfOrderTimestampsAreIndexedInKeyOrder(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir, "AAPL")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	for _, ts := range []uint64{500, 100, 300, 200, 400} {
		require.NoError(t, db.Append(ctx, Tick{Timestamp: ts, Price: float64(ts)}))
	}
	require.NoError(t, db.Sync(ctx))

	got, err := db.QueryRange(ctx, 0, 1000)
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i, tk := range got {
		assert.Equal(t, uint64(100*(i+1)), tk.Timestamp)
	}
}

func TestWithQueueCapacityBoundsPending(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir, "AAPL", WithQueueCapacity(2), WithWriterBatchSize(1))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	for i := uint64(0); i < 20; i++ {
		require.NoError(t, db.Append(ctx, Tick{Timestamp: i}))
	}
	require.NoError(t, db.Sync(ctx))
	assert.Equal(t, uint64(20), db.Count())
}

// TestConcurrentAppendBatchAndQueryRangeSeePrefixConsistentSnapshots runs one
// writer goroutine appending a large batch alongside many concurrent
// queriers, and asserts every query result is a gap-free prefix of the
// batch with matching price/volume for every row — never a tuple stitched
// together from two different rows.
func TestConcurrentAppendBatchAndQueryRangeSeePrefixConsistentSnapshots(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir, "AAPL")
	require.NoError(t, err)
	defer db.Close()

	const n = 5000
	ticks := make([]Tick, n)
	for i := range ticks {
		ticks[i] = Tick{Timestamp: uint64(i), Price: float64(i), Volume: uint64(i)}
	}

	ctx := context.Background()
	errs := make(chan error, 100)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := db.AppendBatch(ctx, ticks); err != nil {
			errs <- err
		}
	}()

	const numQueriers = 20
	wg.Add(numQueriers)
	for q := 0; q < numQueriers; q++ {
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				got, err := db.QueryRange(ctx, 0, uint64(n-1))
				if err != nil {
					errs <- err
					return
				}
				for j, tk := range got {
					if tk.Timestamp != uint64(j) {
						errs <- fmt.Errorf("gap: position %d holds timestamp %d", j, tk.Timestamp)
						return
					}
					if tk.Price != float64(tk.Timestamp) || tk.Volume != tk.Timestamp {
						errs <- fmt.Errorf("row mismatch at timestamp %d: price=%v volume=%v", tk.Timestamp, tk.Price, tk.Volume)
						return
					}
				}
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	require.NoError(t, db.Sync(ctx))
	assert.Equal(t, uint64(n), db.Count())
}

func TestOpenCreatesNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	db, err := Open(dir, "market")
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, uint64(0), db.Count())
}
