package tsdb

import "context"

// Append enqueues t for the background writer to commit. It returns once
// the tick has been accepted onto the queue (and, if WithQueueCapacity is
// set, once a slot is available) — not once it has been durably written.
// Call Sync to wait for durability.
func (db *Db) Append(ctx context.Context, t Tick) error {
	if db.closed.Load() {
		return ErrClosed
	}
	if err := db.stickyErr(); err != nil {
		return err
	}

	if db.opts.rateLimiter != nil {
		if err := db.opts.rateLimiter.Wait(ctx); err != nil {
			return err
		}
	}

	db.pending.Add(1)
	err := db.queue.Push(ctx, tick{timestamp: t.Timestamp, price: t.Price, volume: t.Volume})
	if err != nil {
		db.pending.Add(-1)
		db.logger.LogAppend(ctx, t.Timestamp, err)
		return err
	}

	db.logger.LogAppend(ctx, t.Timestamp, nil)
	return nil
}

// AppendBatch enqueues multiple ticks as a single unit: either all of them
// are accepted onto the queue under one lock acquisition, or none are.
func (db *Db) AppendBatch(ctx context.Context, ticks []Tick) error {
	if db.closed.Load() {
		return ErrClosed
	}
	if err := db.stickyErr(); err != nil {
		return err
	}
	if len(ticks) == 0 {
		return nil
	}

	if db.opts.rateLimiter != nil {
		if err := db.opts.rateLimiter.WaitN(ctx, len(ticks)); err != nil {
			return err
		}
	}

	batch := make([]tick, len(ticks))
	for i, t := range ticks {
		batch[i] = tick{timestamp: t.Timestamp, price: t.Price, volume: t.Volume}
	}

	db.pending.Add(int64(len(batch)))
	if err := db.queue.PushBatch(ctx, batch); err != nil {
		db.pending.Add(-int64(len(batch)))
		return err
	}

	return nil
}
