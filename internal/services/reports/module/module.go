// Package module wires the report generation service: repo, builders,
// writer and coordinator, resolved against one Store
package module

import (
	"context"

	perr "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/errors"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/store"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/reports/builders"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/reports/domain"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/reports/repo"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/reports/service"
	wlrepo "github.com/ChMatthaios/EUR-COM-SUITE/internal/services/worklist/repo"
	wlservice "github.com/ChMatthaios/EUR-COM-SUITE/internal/services/worklist/service"
)

// Config tunes one wired report pipeline
type Config struct {
	// Modules overrides the generation order; empty means the default list
	Modules []string

	// Limits are the per-module trim caps; zero-valued fields fall back
	// to the defaults
	Limits domain.Limits

	// Workers bounds batch concurrency; <=1 is sequential
	Workers int

	// InsertChunk is rows per insert transaction; <=0 uses the bulk default
	InsertChunk int

	// ProgressEvery is the insert progress cadence in rows
	ProgressEvery int
}

// Module exposes the wired run coordinator
type Module struct {
	Runner domain.RunnerPort
}

// New wires the pipeline. The transaction source is probed here, once,
// so every batch of the run reads from the same relation
func New(ctx context.Context, st *store.Store, stats domain.StatsPort, cfg Config) (*Module, error) {
	if st == nil || st.PG == nil {
		return nil, perr.Newf(perr.ErrorCodeUnavailable, "report pipeline requires postgres")
	}

	limits := cfg.Limits
	defaults := domain.DefaultLimits()
	if limits.Transactions <= 0 {
		limits.Transactions = defaults.Transactions
	}
	if limits.CardOpenAuths <= 0 {
		limits.CardOpenAuths = defaults.CardOpenAuths
	}
	if limits.CardSettlements <= 0 {
		limits.CardSettlements = defaults.CardSettlements
	}
	if limits.LoanPayments <= 0 {
		limits.LoanPayments = defaults.LoanPayments
	}
	if limits.ComplianceFlags <= 0 {
		limits.ComplianceFlags = defaults.ComplianceFlags
	}
	if limits.Fees <= 0 {
		limits.Fees = defaults.Fees
	}

	storage := repo.NewPG().Bind(st.PG)
	worklist := wlservice.New(wlrepo.NewPG().Bind(st.PG))

	source, err := builders.ProbeTransactionSource(ctx, storage)
	if err != nil {
		return nil, err
	}

	all := []domain.Builder{
		builders.NewProfile(storage),
		builders.NewAccounts(storage),
		builders.NewTransactions(storage, source, limits.Transactions),
		builders.NewCards(storage, limits.CardOpenAuths, limits.CardSettlements),
		builders.NewLoans(storage, limits.LoanPayments),
		builders.NewCompliance(storage, limits.ComplianceFlags),
		builders.NewFees(storage, limits.Fees),
	}

	writer := repo.NewWriter(st.PG, cfg.InsertChunk, cfg.ProgressEvery)

	svc, err := service.New(worklist, all, writer, stats, service.Config{
		Modules: cfg.Modules,
		Workers: cfg.Workers,
	})
	if err != nil {
		return nil, err
	}
	return &Module{Runner: svc}, nil
}
