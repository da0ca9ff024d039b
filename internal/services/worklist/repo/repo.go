// Package repo provides the worklist repository implementation
package repo

import (
	"context"
	stderrs "errors"
	"time"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/modkit/repokit"
	perr "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/errors"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/worklist/domain"

	"github.com/jackc/pgx/v5"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// RunRow is the raw run record; AsOf is nil when the run has no as-of-date
type RunRow struct {
	ID   int64
	AsOf *time.Time
}

// Storage defines the worklist repository
type Storage interface {
	LatestRun(ctx context.Context) (RunRow, error)
	BatchRange(ctx context.Context) (domain.BatchRange, error)
	Batch(ctx context.Context, batchNo int) ([]int64, error)
}

// LatestRun implements Storage
func (s *pg) LatestRun(ctx context.Context) (RunRow, error) {
	var r RunRow
	err := s.q.QueryRow(ctx, `
		SELECT run_id, as_of_date
		FROM ecs_rpt_runs
		ORDER BY run_id DESC
		LIMIT 1
	`).Scan(&r.ID, &r.AsOf)
	if err != nil {
		if stderrs.Is(err, pgx.ErrNoRows) {
			return RunRow{}, perr.NotFoundf("no report runs exist; create a run first")
		}
		return RunRow{}, perr.FromPostgres(err, "latest run lookup failed")
	}
	return r, nil
}

// BatchRange implements Storage
func (s *pg) BatchRange(ctx context.Context) (domain.BatchRange, error) {
	var minB, maxB *int
	err := s.q.QueryRow(ctx, `
		SELECT MIN(batch_no), MAX(batch_no)
		FROM ecs_rpt_customer_worklist
	`).Scan(&minB, &maxB)
	if err != nil {
		return domain.BatchRange{}, perr.FromPostgres(err, "batch range lookup failed")
	}
	if minB == nil || maxB == nil {
		return domain.BatchRange{}, perr.NotFoundf("customer worklist is empty or has no batch numbers")
	}
	return domain.BatchRange{Min: *minB, Max: *maxB}, nil
}

// Batch implements Storage
func (s *pg) Batch(ctx context.Context, batchNo int) ([]int64, error) {
	rs, err := s.q.Query(ctx, `
		SELECT customer_id
		FROM ecs_rpt_customer_worklist
		WHERE batch_no = $1
		ORDER BY customer_id
	`, batchNo)
	if err != nil {
		return nil, perr.FromPostgres(err, "batch customer lookup failed")
	}
	defer rs.Close()

	var ids []int64
	for rs.Next() {
		var id int64
		if err := rs.Scan(&id); err != nil {
			return nil, perr.FromPostgres(err, "batch customer scan failed")
		}
		ids = append(ids, id)
	}
	return ids, rs.Err()
}
