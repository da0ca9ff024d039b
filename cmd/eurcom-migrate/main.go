// Command eurcom-migrate applies the embedded schema files to Postgres.
// Each file runs in its own transaction and is recorded in
// eurcom_schema_migrations so re-runs skip what is already applied.
package main

import (
	"context"
	"os/signal"
	"sort"
	"syscall"

	"github.com/ChMatthaios/EUR-COM-SUITE/db"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/config"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/logger"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/store"
)

func main() {
	logger.Init(logger.FromEnv())
	l := logger.Named("eurcom-migrate")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCfg := config.New().Prefix("EURCOM_PGSQL_")
	st, err := store.Open(ctx, store.Config{
		AppName: "eurcom-migrate",
		PG: store.PGConfig{
			Enabled:  true,
			URL:      pgCfg.MustString("DBURL"),
			MaxConns: int32(pgCfg.MayInt("MAX_CONNS", 2)),
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

	if err := migrate(ctx, st.PG, l); err != nil {
		l.Fatal().Err(err).Msg("migration failed")
	}
	l.Info().Msg("schema up to date")
}

func migrate(ctx context.Context, pg store.TxRunner, l *logger.Logger) error {
	_, err := pg.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS eurcom_schema_migrations (
			filename   TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return err
	}

	entries, err := db.Migrations.ReadDir("migrations")
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		var applied bool
		err := pg.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM eurcom_schema_migrations WHERE filename = $1)
		`, name).Scan(&applied)
		if err != nil {
			return err
		}
		if applied {
			l.Debug().Str("file", name).Msg("already applied")
			continue
		}

		sql, err := db.Migrations.ReadFile("migrations/" + name)
		if err != nil {
			return err
		}
		err = pg.Tx(ctx, func(q store.RowQuerier) error {
			if _, err := q.Exec(ctx, string(sql)); err != nil {
				return err
			}
			_, err := q.Exec(ctx, `
				INSERT INTO eurcom_schema_migrations (filename) VALUES ($1)
			`, name)
			return err
		})
		if err != nil {
			return err
		}
		l.Info().Str("file", name).Msg("applied")
	}
	return nil
}
