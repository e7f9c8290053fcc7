package tsdb

import "context"

// Close stops the background writer, flushes remaining committed data, and
// unmaps the column files. It blocks until any ticks already enqueued by
// Append have been committed (or have failed with a sticky error). Close is
// idempotent.
func (db *Db) Close() error {
	if db == nil || db.closed.Swap(true) {
		return nil
	}

	db.queue.Close()
	db.writerWg.Wait()

	db.mu.Lock()
	defer db.mu.Unlock()

	var closeErr error
	for _, col := range []struct {
		name string
		c    interface {
			Sync(bool) error
			Close() error
		}
	}{
		{timestampsFile, db.tsCol},
		{pricesFile, db.priceCol},
		{volumesFile, db.volCol},
	} {
		if err := col.c.Sync(false); err != nil && closeErr == nil {
			closeErr = translateError("sync", col.name, err)
		}
		if err := col.c.Close(); err != nil && closeErr == nil {
			closeErr = translateError("close", col.name, err)
		}
	}

	db.logger.LogClose(context.Background(), closeErr)
	return closeErr
}
