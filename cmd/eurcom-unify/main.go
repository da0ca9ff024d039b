// Command eurcom-unify folds the per-module documents of the latest run
// into one unified document per customer. Run it only after eurcom-etl
// has finished the run.
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/config"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/logger"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/store"
	unifymodule "github.com/ChMatthaios/EUR-COM-SUITE/internal/services/unify/module"
)

func main() {
	logger.Init(logger.FromEnv())
	l := logger.Named("eurcom-unify")

	var (
		insertChunk   = flag.Int("insert-chunk", 0, "rows per insert transaction (0 = default)")
		progressEvery = flag.Int("progress-every", 0, "progress log cadence in rows (0 = default)")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCfg := config.New().Prefix("EURCOM_PGSQL_")
	st, err := store.Open(ctx, store.Config{
		AppName: "eurcom-unify",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*logger.Get()))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	mod, err := unifymodule.New(st, unifymodule.Config{
		InsertChunk:   *insertChunk,
		ProgressEvery: *progressEvery,
	})
	if err != nil {
		l.Panic().Err(err).Msg("unification wiring failed")
	}

	if err := mod.Runner.Run(ctx); err != nil {
		l.Fatal().Err(err).Msg("unification failed")
	}
	l.Info().Msg("all batches complete")
}
