// Command eurcom-api serves the unified customer reports over HTTP with
// token-based authentication and role guards.
package main

import (
	"context"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/config"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/logger"
	phttp "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/net/http"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/net/middleware"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/store"
	authhttp "github.com/ChMatthaios/EUR-COM-SUITE/internal/services/api/auth/http"
	rpthttp "github.com/ChMatthaios/EUR-COM-SUITE/internal/services/api/reports/http"
	rptrepo "github.com/ChMatthaios/EUR-COM-SUITE/internal/services/api/reports/repo"
	rptservice "github.com/ChMatthaios/EUR-COM-SUITE/internal/services/api/reports/service"
	identrepo "github.com/ChMatthaios/EUR-COM-SUITE/internal/services/ident/repo"
	identservice "github.com/ChMatthaios/EUR-COM-SUITE/internal/services/ident/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func main() {
	logger.Init(logger.FromEnv())
	l := logger.Named("eurcom-api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := config.New().Prefix("EURCOM_")
	pgCfg := root.Prefix("PGSQL_")

	st, err := store.Open(ctx, store.Config{
		AppName: "eurcom-api",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 8)),
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

	auth := identservice.New(identrepo.NewPG().Bind(st.PG), identservice.Config{
		Secret:   root.MayString("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL: time.Duration(root.MayInt("JWT_EXP_MIN", 60)) * time.Minute,
	})
	reports := rptservice.New(rptrepo.NewPG().Bind(st.PG))

	authH := authhttp.New(auth)
	rptH := rpthttp.New(reports)

	srv := phttp.NewServer(root, func(m *chi.Mux) {
		m.Use(middleware.RequestID)
		m.Use(middleware.RecoverJSON)
		m.Use(middleware.AccessLog(middleware.AccessLogOptions{Slow: 2 * time.Second}))
		m.Use(cors.Handler(cors.Options{
			AllowedOrigins: root.MayCSV("CORS_ORIGINS", []string{"*"}),
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		}))

		m.Route("/api", func(r chi.Router) {
			r.Get("/health", func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
				if err := st.Guard(req.Context()); err != nil {
					phttp.RespondError(w, req, err)
					return
				}
				phttp.RespondOK(w, req, map[string]any{"ok": true})
			})

			authH.MountPublic(r)

			r.Group(func(pr chi.Router) {
				pr.Use(middleware.RequireAuth(auth))
				authH.MountProtected(pr)
				rptH.Mount(pr)
			})
		})
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error().Err(err).Msg("shutdown failed")
		}
	case err := <-errCh:
		if err != nil {
			l.Fatal().Err(err).Msg("http server failed")
		}
	}
}
