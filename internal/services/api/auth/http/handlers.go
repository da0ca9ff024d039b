// Package http mounts the authentication routes
package http

import (
	stdhttp "net/http"

	phttp "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/net/http"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/net/http/bind"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/net/middleware"
	identdomain "github.com/ChMatthaios/EUR-COM-SUITE/internal/services/ident/domain"

	"github.com/go-chi/chi/v5"
)

// Handlers serves login and identity routes
type Handlers struct {
	auth identdomain.AuthPort
}

// New constructs the auth handlers
func New(auth identdomain.AuthPort) *Handlers { return &Handlers{auth: auth} }

// MountPublic attaches routes that need no bearer token
func (h *Handlers) MountPublic(r chi.Router) {
	r.Post("/auth/login", h.login)
}

// MountProtected attaches routes behind RequireAuth
func (h *Handlers) MountProtected(r chi.Router) {
	r.Get("/me", h.me)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	User        identdomain.User `json:"user"`
}

func (h *Handlers) login(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var req loginRequest
	if err := bind.JSON(r, &req); err != nil {
		phttp.RespondError(w, r, err)
		return
	}

	sess, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	phttp.RespondOK(w, r, loginResponse{
		AccessToken: sess.Token,
		TokenType:   "bearer",
		User:        sess.User,
	})
}

func (h *Handlers) me(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	u, _ := middleware.CurrentUser(r.Context())
	phttp.RespondOK(w, r, u)
}
