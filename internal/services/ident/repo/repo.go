// Package repo provides the users repository
package repo

import (
	"context"
	stderrs "errors"

	"github.com/ChMatthaios/EUR-COM-SUITE/internal/modkit/repokit"
	perr "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/errors"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/ident/domain"

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

// UserRow is the stored account including its password hash
type UserRow struct {
	User         domain.User
	PasswordHash string
}

// Storage defines the users repository
type Storage interface {
	UserByUsername(ctx context.Context, username string) (UserRow, error)
	UserByID(ctx context.Context, id int64) (domain.User, error)
	TouchLastLogin(ctx context.Context, id int64) error

	// seeding support
	DeleteByUsernames(ctx context.Context, usernames []string) error
	InsertUser(ctx context.Context, username, passwordHash, role string, customerID *int64) (int64, error)
	AnyReportedCustomer(ctx context.Context) (int64, error)
}

// UserByUsername implements Storage
func (s *pg) UserByUsername(ctx context.Context, username string) (UserRow, error) {
	var r UserRow
	err := s.q.QueryRow(ctx, `
		SELECT id, username, password_hash, role, customer_id, is_active
		FROM ecs_users
		WHERE username = $1
	`, username).Scan(&r.User.ID, &r.User.Username, &r.PasswordHash,
		&r.User.Role, &r.User.CustomerID, &r.User.IsActive)
	if err != nil {
		if stderrs.Is(err, pgx.ErrNoRows) {
			return UserRow{}, perr.NotFoundf("user %s not found", username)
		}
		return UserRow{}, perr.FromPostgres(err, "user lookup failed")
	}
	return r, nil
}

// UserByID implements Storage
func (s *pg) UserByID(ctx context.Context, id int64) (domain.User, error) {
	var u domain.User
	err := s.q.QueryRow(ctx, `
		SELECT id, username, role, customer_id, is_active
		FROM ecs_users
		WHERE id = $1
	`, id).Scan(&u.ID, &u.Username, &u.Role, &u.CustomerID, &u.IsActive)
	if err != nil {
		if stderrs.Is(err, pgx.ErrNoRows) {
			return domain.User{}, perr.NotFoundf("user %d not found", id)
		}
		return domain.User{}, perr.FromPostgres(err, "user lookup failed")
	}
	return u, nil
}

// TouchLastLogin implements Storage
func (s *pg) TouchLastLogin(ctx context.Context, id int64) error {
	if _, err := s.q.Exec(ctx, `
		UPDATE ecs_users SET last_login_at = now() WHERE id = $1
	`, id); err != nil {
		return perr.FromPostgres(err, "last login update failed")
	}
	return nil
}

// DeleteByUsernames implements Storage
func (s *pg) DeleteByUsernames(ctx context.Context, usernames []string) error {
	if _, err := s.q.Exec(ctx, `
		DELETE FROM ecs_users WHERE username = ANY($1)
	`, usernames); err != nil {
		return perr.FromPostgres(err, "user delete failed")
	}
	return nil
}

// InsertUser implements Storage
func (s *pg) InsertUser(ctx context.Context, username, passwordHash, role string, customerID *int64) (int64, error) {
	var id int64
	err := s.q.QueryRow(ctx, `
		INSERT INTO ecs_users (username, password_hash, role, customer_id, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id
	`, username, passwordHash, role, customerID).Scan(&id)
	if err != nil {
		return 0, perr.FromPostgres(err, "user insert failed")
	}
	return id, nil
}

// AnyReportedCustomer implements Storage: picks a customer that actually
// has a unified report so seeded customer logins land on real data
func (s *pg) AnyReportedCustomer(ctx context.Context) (int64, error) {
	var id int64
	err := s.q.QueryRow(ctx, `
		SELECT customer_id FROM ecs_customer_rpt ORDER BY customer_id LIMIT 1
	`).Scan(&id)
	if err != nil {
		if stderrs.Is(err, pgx.ErrNoRows) {
			return 0, perr.NotFoundf("no unified reports exist; run the pipeline first")
		}
		return 0, perr.FromPostgres(err, "reported customer lookup failed")
	}
	return id, nil
}
