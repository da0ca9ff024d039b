// Package runstats mirrors run progress facts into ClickHouse for
// operational analysis. The mirror is best effort: a failed insert is
// logged and dropped, it never fails the run that produced it.
package runstats

import (
	"context"
	"time"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/logger"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/store"
)

// Recorder writes completion facts. A Recorder over a nil seam records
// nothing, so callers never need to branch on whether the mirror is on
type Recorder struct {
	ch  store.Clickhouse
	now func() time.Time
}

// New constructs a Recorder; ch may be nil
func New(ch store.Clickhouse) *Recorder {
	return &Recorder{ch: ch, now: time.Now}
}

// ModuleDone records one completed (batch, module) unit
func (r *Recorder) ModuleDone(ctx context.Context, runID int64, batchNo int, module string, rows int, elapsedMs int64) {
	if r == nil || r.ch == nil {
		return
	}
	err := r.ch.Exec(ctx, `
		INSERT INTO eurcom_run_module_stats
			(run_id, batch_no, module_code, rows_written, elapsed_ms, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, runID, int32(batchNo), module, int64(rows), elapsedMs, r.now().UTC())
	if err != nil {
		logger.C(ctx).Warn().Err(err).
			Int("batch_no", batchNo).
			Str("module", module).
			Msg("module stats mirror insert failed")
	}
}

// RunDone records the completion of a whole run
func (r *Recorder) RunDone(ctx context.Context, runID int64, batches, rows int, elapsedMs int64) {
	if r == nil || r.ch == nil {
		return
	}
	err := r.ch.Exec(ctx, `
		INSERT INTO eurcom_run_stats
			(run_id, batches, rows_written, elapsed_ms, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`, runID, int32(batches), int64(rows), elapsedMs, r.now().UTC())
	if err != nil {
		logger.C(ctx).Warn().Err(err).Int64("run_id", runID).Msg("run stats mirror insert failed")
	}
}
