// Package service implements authentication: credential checks, access
// token issuance and bearer token resolution
package service

import (
	"context"
	"time"

	perr "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/errors"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/logger"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/ident/domain"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/ident/repo"
)

// Config tunes the auth service
type Config struct {
	// Secret signs access tokens
	Secret string

	// TokenTTL bounds token validity; zero means one hour
	TokenTTL time.Duration
}

// Service implements domain.AuthPort
type Service struct {
	store    repo.Storage
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

// New constructs the auth service
func New(store repo.Storage, cfg Config) *Service {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Service{
		store:    store,
		secret:   []byte(cfg.Secret),
		tokenTTL: ttl,
		now:      time.Now,
	}
}

// Login implements domain.AuthPort. Unknown users and wrong passwords
// return the same error so usernames cannot be probed
func (s *Service) Login(ctx context.Context, username, password string) (domain.Session, error) {
	if username == "" || password == "" {
		return domain.Session{}, perr.InvalidArgf("missing username or password")
	}

	row, err := s.store.UserByUsername(ctx, username)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.Session{}, perr.Unauthorizedf("invalid credentials")
		}
		return domain.Session{}, err
	}
	if !row.User.IsActive {
		return domain.Session{}, perr.Forbiddenf("user disabled")
	}
	if !VerifyPassword(password, row.PasswordHash) {
		return domain.Session{}, perr.Unauthorizedf("invalid credentials")
	}

	if err := s.store.TouchLastLogin(ctx, row.User.ID); err != nil {
		// login still succeeds; the timestamp is informational
		logger.C(ctx).Warn().Err(err).Int64("user_id", row.User.ID).Msg("last login update failed")
	}

	token, err := s.issueToken(row.User)
	if err != nil {
		return domain.Session{}, err
	}
	return domain.Session{Token: token, User: row.User}, nil
}

// UserFromToken implements domain.AuthPort
func (s *Service) UserFromToken(ctx context.Context, token string) (domain.User, error) {
	c, err := s.parseToken(token)
	if err != nil {
		return domain.User{}, err
	}

	u, err := s.store.UserByID(ctx, c.UID)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.User{}, perr.Unauthorizedf("user not found")
		}
		return domain.User{}, err
	}
	if !u.IsActive {
		return domain.User{}, perr.Forbiddenf("user disabled")
	}
	return u, nil
}
