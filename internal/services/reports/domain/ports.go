package domain

import (
	"context"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/core/docval"
)

// Builder produces module payloads for a batch of customers in bulk.
// The returned map may omit customers the builder found no master data for;
// the coordinator fills those with a warning payload
type Builder interface {
	Code() string
	Build(ctx context.Context, customerIDs []int64, asOfDate string) (map[int64]docval.Value, error)
}

// DocWriterPort persists module documents idempotently in chunked transactions
type DocWriterPort interface {
	InsertModuleDocs(ctx context.Context, rows []DocumentRow, onProgress func(written int)) (int, error)
}

// RunnerPort drives a full generation run
type RunnerPort interface {
	Run(ctx context.Context) error
}

// StatsPort mirrors per-module completion facts into the analytics store.
// Implementations must be safe to call when the mirror is disabled
type StatsPort interface {
	ModuleDone(ctx context.Context, runID int64, batchNo int, module string, rows int, elapsedMs int64)
	RunDone(ctx context.Context, runID int64, batches, rows int, elapsedMs int64)
}
