package domain

import "context"

// ReaderPort resolves run metadata and yields per-batch customer ids
type ReaderPort interface {
	// LatestRun returns the newest run with its as-of-date resolved.
	// Errors when no run exists; a run must be created first
	LatestRun(ctx context.Context) (Run, error)

	// BatchRange returns the inclusive batch span of the worklist.
	// Errors when the worklist is empty or has no batch numbers
	BatchRange(ctx context.Context) (BatchRange, error)

	// Batch returns the sorted customer ids of one batch; empty means skip
	Batch(ctx context.Context, batchNo int) ([]int64, error)
}
