package service

import (
	"time"

	perr "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/errors"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/ident/domain"

	"github.com/golang-jwt/jwt/v5"
)

// claims is the access token payload: subject is the username, uid the
// account id used for the fresh lookup on every request
type claims struct {
	Role string `json:"role"`
	UID  int64  `json:"uid"`
	jwt.RegisteredClaims
}

func (s *Service) issueToken(u domain.User) (string, error) {
	now := s.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: u.Role,
		UID:  u.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	})
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnknown, "token signing failed")
	}
	return signed, nil
}

func (s *Service) parseToken(token string) (claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	if err != nil {
		return claims{}, perr.Unauthorizedf("invalid or expired token")
	}
	if c.UID == 0 {
		return claims{}, perr.Unauthorizedf("invalid token")
	}
	return c, nil
}
