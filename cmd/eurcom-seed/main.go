// Command eurcom-seed provisions the two demo API accounts: a CUSTOMER
// bound to a customer id that already has a unified report, and an
// EMPLOYEE. Existing rows with the same usernames are replaced, so the
// command is safe to re-run.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/config"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/logger"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/store"
	identdomain "github.com/ChMatthaios/EUR-COM-SUITE/internal/services/ident/domain"
	identrepo "github.com/ChMatthaios/EUR-COM-SUITE/internal/services/ident/repo"
	identservice "github.com/ChMatthaios/EUR-COM-SUITE/internal/services/ident/service"
)

func main() {
	logger.Init(logger.FromEnv())
	l := logger.Named("eurcom-seed")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCfg := config.New().Prefix("EURCOM_PGSQL_")
	st, err := store.Open(ctx, store.Config{
		AppName: "eurcom-seed",
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

	users := identrepo.NewPG().Bind(st.PG)

	customerID, err := users.AnyReportedCustomer(ctx)
	if err != nil {
		l.Fatal().Err(err).Msg("no unified reports found; run eurcom-etl and eurcom-unify first")
	}

	if err := users.DeleteByUsernames(ctx, []string{"customer1", "employee1"}); err != nil {
		l.Fatal().Err(err).Msg("failed to remove existing demo users")
	}

	customerHash, err := identservice.HashPassword("Customer123!")
	if err != nil {
		l.Fatal().Err(err).Msg("password hashing failed")
	}
	employeeHash, err := identservice.HashPassword("Employee123!")
	if err != nil {
		l.Fatal().Err(err).Msg("password hashing failed")
	}

	id, err := users.InsertUser(ctx, "customer1", customerHash, identdomain.RoleCustomer, &customerID)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to insert customer1")
	}
	l.Info().Int64("user_id", id).Int64("customer_id", customerID).Msg("seeded customer1")

	id, err = users.InsertUser(ctx, "employee1", employeeHash, identdomain.RoleEmployee, nil)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to insert employee1")
	}
	l.Info().Int64("user_id", id).Msg("seeded employee1")
}
