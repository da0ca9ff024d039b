package domain

import "context"

// AuthPort authenticates credentials and resolves bearer tokens.
// UserFromToken re-reads the account so disabling a user takes effect
// immediately, not at token expiry
type AuthPort interface {
	Login(ctx context.Context, username, password string) (Session, error)
	UserFromToken(ctx context.Context, token string) (User, error)
}
