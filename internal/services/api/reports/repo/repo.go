// Package repo reads unified reports for the serving API
package repo

import (
	"context"
	stderrs "errors"
	"time"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/modkit/repokit"
	perr "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/errors"

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

// ReportRow is one unified report as served to clients
type ReportRow struct {
	RunID         int64     `json:"run_id"`
	CustomerID    int64     `json:"customer_id"`
	StructuredDoc string    `json:"structured_doc"`
	MarkupDoc     string    `json:"markup_doc"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// Storage defines the serving-side report reads
type Storage interface {
	// DistinctCustomers lists every customer with at least one unified report
	DistinctCustomers(ctx context.Context) ([]int64, error)

	// LatestByCustomer returns the newest-run report of one customer
	LatestByCustomer(ctx context.Context, customerID int64) (ReportRow, error)

	// AllByCustomer returns every report of one customer, newest run first
	AllByCustomer(ctx context.Context, customerID int64) ([]ReportRow, error)
}

// DistinctCustomers implements Storage
func (s *pg) DistinctCustomers(ctx context.Context) ([]int64, error) {
	rs, err := s.q.Query(ctx, `
		SELECT DISTINCT customer_id
		FROM ecs_customer_rpt
		ORDER BY customer_id
	`)
	if err != nil {
		return nil, perr.FromPostgres(err, "customer list failed")
	}
	defer rs.Close()

	var ids []int64
	for rs.Next() {
		var id int64
		if err := rs.Scan(&id); err != nil {
			return nil, perr.FromPostgres(err, "customer list scan failed")
		}
		ids = append(ids, id)
	}
	return ids, rs.Err()
}

// LatestByCustomer implements Storage
func (s *pg) LatestByCustomer(ctx context.Context, customerID int64) (ReportRow, error) {
	var r ReportRow
	err := s.q.QueryRow(ctx, `
		SELECT run_id, customer_id, structured_doc, markup_doc, generated_at
		FROM ecs_customer_rpt
		WHERE customer_id = $1
		ORDER BY run_id DESC
		LIMIT 1
	`, customerID).Scan(&r.RunID, &r.CustomerID, &r.StructuredDoc, &r.MarkupDoc, &r.GeneratedAt)
	if err != nil {
		if stderrs.Is(err, pgx.ErrNoRows) {
			return ReportRow{}, perr.NotFoundf("customer report not found")
		}
		return ReportRow{}, perr.FromPostgres(err, "customer report lookup failed")
	}
	return r, nil
}

// AllByCustomer implements Storage
func (s *pg) AllByCustomer(ctx context.Context, customerID int64) ([]ReportRow, error) {
	rs, err := s.q.Query(ctx, `
		SELECT run_id, customer_id, structured_doc, markup_doc, generated_at
		FROM ecs_customer_rpt
		WHERE customer_id = $1
		ORDER BY run_id DESC
	`, customerID)
	if err != nil {
		return nil, perr.FromPostgres(err, "customer reports lookup failed")
	}
	defer rs.Close()

	var out []ReportRow
	for rs.Next() {
		var r ReportRow
		if err := rs.Scan(&r.RunID, &r.CustomerID, &r.StructuredDoc, &r.MarkupDoc, &r.GeneratedAt); err != nil {
			return nil, perr.FromPostgres(err, "customer reports scan failed")
		}
		out = append(out, r)
	}
	return out, rs.Err()
}
