package tsdb

import (
	"context"
	"encoding/binary"
	"math"
)

const bytesPerSlot = 8

// writerLoop is the single background goroutine that drains the tick
// queue, appends each tick to the three columns in fixed order (timestamp,
// price, volume), and updates the in-memory index, all under an exclusive
// hold of mu. It runs until the queue is closed and empty.
func (db *Db) writerLoop() {
	defer db.writerWg.Done()

	for {
		batch, done := db.queue.Drain(db.opts.writerBatchSize)
		if len(batch) > 0 {
			db.commitBatch(batch)
		}
		if done {
			return
		}
	}
}

func (db *Db) commitBatch(batch []tick) {
	n := len(batch)

	tsBuf := make([]byte, n*bytesPerSlot)
	priceBuf := make([]byte, n*bytesPerSlot)
	volBuf := make([]byte, n*bytesPerSlot)
	for i, t := range batch {
		binary.LittleEndian.PutUint64(tsBuf[i*bytesPerSlot:], t.timestamp)
		binary.LittleEndian.PutUint64(priceBuf[i*bytesPerSlot:], math.Float64bits(t.price))
		binary.LittleEndian.PutUint64(volBuf[i*bytesPerSlot:], t.volume)
	}

	committed := 0
	db.mu.Lock()

	start, err := db.tsCol.AppendBatch(tsBuf, n)
	if err != nil {
		db.setStickyErr(translateError("append", db.dir, err))
	} else if _, err := db.priceCol.AppendBatch(priceBuf, n); err != nil {
		db.setStickyErr(translateError("append", db.dir, err))
	} else if _, err := db.volCol.AppendBatch(volBuf, n); err != nil {
		db.setStickyErr(translateError("append", db.dir, err))
	} else {
		for i, t := range batch {
			db.index.Insert(t.timestamp, start+uint64(i))
		}
		committed = n
	}

	var syncErr error
	if committed > 0 {
		async := db.opts.syncMode == SyncAsync
		syncErr = firstErr(
			db.tsCol.Sync(async),
			db.priceCol.Sync(async),
			db.volCol.Sync(async),
		)
		if syncErr != nil {
			db.setStickyErr(translateError("sync", db.dir, syncErr))
		}
	}
	db.mu.Unlock()

	db.queue.Release(committed)
	db.pending.Add(-int64(len(batch)))

	db.syncMu.Lock()
	db.syncCond.Broadcast()
	db.syncMu.Unlock()

	db.logger.LogWriterBatch(context.Background(), committed, db.stickyErr())
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
