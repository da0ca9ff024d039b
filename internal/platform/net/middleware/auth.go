package middleware

import (
	"context"
	stdhttp "net/http"
	"strings"

	perr "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/errors"
	pnet "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/net"
	phttp "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/net/http"
	identdomain "github.com/ChMatthaios/EUR-COM-SUITE/internal/services/ident/domain"
)

// RequireAuth resolves the bearer token on each request and stores the
// fresh user on the context. Requests without a valid token are rejected
func RequireAuth(auth identdomain.AuthPort) func(stdhttp.Handler) stdhttp.Handler {
	return func(next stdhttp.Handler) stdhttp.Handler {
		return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				phttp.RespondError(w, r, perr.Unauthorizedf("missing bearer token"))
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

			user, err := auth.UserFromToken(r.Context(), token)
			if err != nil {
				phttp.RespondError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(pnet.WithUser(r.Context(), user)))
		})
	}
}

// CurrentUser returns the authenticated user stored by RequireAuth
func CurrentUser(ctx context.Context) (identdomain.User, bool) {
	u, ok := pnet.UserValue(ctx).(identdomain.User)
	return u, ok
}

// RequireEmployee rejects requests whose user is not employee or admin
func RequireEmployee(next stdhttp.Handler) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		u, ok := CurrentUser(r.Context())
		if !ok {
			phttp.RespondError(w, r, perr.Unauthorizedf("missing bearer token"))
			return
		}
		if !u.CanActAsEmployee() {
			phttp.RespondError(w, r, perr.Forbiddenf("employee access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCustomer rejects requests whose user is not a customer
func RequireCustomer(next stdhttp.Handler) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		u, ok := CurrentUser(r.Context())
		if !ok {
			phttp.RespondError(w, r, perr.Unauthorizedf("missing bearer token"))
			return
		}
		if u.Role != identdomain.RoleCustomer {
			phttp.RespondError(w, r, perr.Forbiddenf("customer access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
