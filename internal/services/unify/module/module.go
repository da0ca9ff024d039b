// Package module wires the unification merger against one Store
package module

import (
	perr "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/errors"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/store"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/unify/domain"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/unify/repo"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/unify/service"
	wlrepo "github.com/ChMatthaios/EUR-COM-SUITE/internal/services/worklist/repo"
	wlservice "github.com/ChMatthaios/EUR-COM-SUITE/internal/services/worklist/service"
)

// Config tunes one wired merger
type Config struct {
	// Modules overrides the module-key order; empty means the default list
	Modules []string

	// InsertChunk is rows per insert transaction; <=0 uses the bulk default
	InsertChunk int

	// ProgressEvery is the insert progress cadence in rows
	ProgressEvery int
}

// Module exposes the wired merger
type Module struct {
	Runner domain.RunnerPort
}

// New wires the merger
func New(st *store.Store, cfg Config) (*Module, error) {
	if st == nil || st.PG == nil {
		return nil, perr.Newf(perr.ErrorCodeUnavailable, "unification requires postgres")
	}

	worklist := wlservice.New(wlrepo.NewPG().Bind(st.PG))
	storage := repo.NewPG().Bind(st.PG)
	writer := repo.NewWriter(st.PG, cfg.InsertChunk, cfg.ProgressEvery)

	return &Module{Runner: service.New(worklist, storage, writer, cfg.Modules)}, nil
}
