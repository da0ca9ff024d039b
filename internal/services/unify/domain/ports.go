package domain

import "context"

// RunnerPort drives the unification stage of a run. It must only start
// after every module document of the run has been written
type RunnerPort interface {
	Run(ctx context.Context) error
}

// WriterPort persists unified documents idempotently
type WriterPort interface {
	InsertUnifiedDocs(ctx context.Context, rows []UnifiedRow, onProgress func(written int)) (int, error)
}
