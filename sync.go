package tsdb

import "context"

// Sync blocks until every tick accepted by Append before this call has
// been committed to the columns and flushed according to the configured
// SyncMode. It returns ctx's error if ctx is canceled first, and the first
// sticky write error if the writer has hit an unrecoverable IO error.
func (db *Db) Sync(ctx context.Context) error {
	if db.closed.Load() {
		return ErrClosed
	}
	if err := db.stickyErr(); err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			db.syncMu.Lock()
			db.syncCond.Broadcast()
			db.syncMu.Unlock()
		case <-done:
		}
	}()

	db.syncMu.Lock()
	for db.pending.Load() > 0 {
		if err := ctx.Err(); err != nil {
			db.syncMu.Unlock()
			return err
		}
		if err := db.stickyErr(); err != nil {
			db.syncMu.Unlock()
			return err
		}
		db.syncCond.Wait()
	}
	db.syncMu.Unlock()

	err := db.stickyErr()
	db.logger.LogSync(ctx, db.pending.Load(), err)
	return err
}
