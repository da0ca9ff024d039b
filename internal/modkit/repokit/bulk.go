package repokit

import (
	"context"
)

// DefaultBulkChunk is how many rows go into one insert transaction
const DefaultBulkChunk = 500

// DefaultProgressEvery is the progress reporting cadence in rows
const DefaultProgressEvery = 500

// BulkOptions tunes BulkInsert
type BulkOptions struct {
	// ChunkSize is rows per transaction; <=0 means DefaultBulkChunk
	ChunkSize int

	// ProgressEvery is the callback cadence in rows; <=0 means DefaultProgressEvery
	ProgressEvery int

	// OnProgress, when set, is called with the running committed-row count
	OnProgress func(written int)
}

// BulkInsert writes rows in fixed-size chunks, each chunk inside its own
// transaction. The insert callback receives the transactional Queryer and one
// chunk; statements are expected to carry ON CONFLICT DO NOTHING so replays
// of already-written rows stay silent.
//
// Returns the number of rows in committed chunks. On error the in-flight
// chunk transaction is rolled back; earlier commits are retained and the
// error is returned for the caller to surface.
func BulkInsert[T any](
	ctx context.Context,
	tx TxRunner,
	rows []T,
	opt BulkOptions,
	insert func(q Queryer, chunk []T) error,
) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	size := opt.ChunkSize
	if size <= 0 {
		size = DefaultBulkChunk
	}
	every := opt.ProgressEvery
	if every <= 0 {
		every = DefaultProgressEvery
	}

	written := 0
	nextProgress := every
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		if err := tx.Tx(ctx, func(q Queryer) error {
			return insert(q, chunk)
		}); err != nil {
			return written, err
		}
		written += len(chunk)

		for written >= nextProgress {
			if opt.OnProgress != nil {
				opt.OnProgress(written)
			}
			nextProgress += every
		}
	}
	return written, nil
}
