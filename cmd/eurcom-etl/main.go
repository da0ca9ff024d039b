// Command eurcom-etl generates the per-module customer report documents
// for the latest run, batch by batch.
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/config"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/logger"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/store"
	rptmodule "github.com/ChMatthaios/EUR-COM-SUITE/internal/services/reports/module"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/runstats"
)

func main() {
	logger.Init(logger.FromEnv())
	l := logger.Named("eurcom-etl")

	var (
		workers       = flag.Int("workers", 1, "batch concurrency (>=1)")
		insertChunk   = flag.Int("insert-chunk", 0, "rows per insert transaction (0 = default)")
		progressEvery = flag.Int("progress-every", 0, "progress log cadence in rows (0 = default)")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := config.New().Prefix("EURCOM_")
	pgCfg := root.Prefix("PGSQL_")
	chCfg := root.Prefix("CLICKHOUSE_")
	chURL := chCfg.MayString("DBURL", "")

	st, err := store.Open(ctx, store.Config{
		AppName: "eurcom-etl",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
		CH: store.CHConfig{
			Enabled: chURL != "",
			URL:     chURL,
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

	mod, err := rptmodule.New(ctx, st, runstats.New(st.CH), rptmodule.Config{
		Workers:       *workers,
		InsertChunk:   *insertChunk,
		ProgressEvery: *progressEvery,
	})
	if err != nil {
		l.Panic().Err(err).Msg("report pipeline wiring failed")
	}

	if err := mod.Runner.Run(ctx); err != nil {
		l.Fatal().Err(err).Msg("report run failed")
	}
	l.Info().Msg("all batches complete")
}
