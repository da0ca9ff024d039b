// Package http mounts the unified report routes
package http

import (
	stdhttp "net/http"
	"strconv"

	perr "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/errors"
	phttp "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/net/http"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/net/middleware"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/api/reports/service"

	"github.com/go-chi/chi/v5"
)

// Handlers serves the report routes
type Handlers struct {
	svc *service.Service
}

// New constructs the report handlers
func New(svc *service.Service) *Handlers { return &Handlers{svc: svc} }

// Mount attaches routes; callers wrap the router with RequireAuth first
func (h *Handlers) Mount(r chi.Router) {
	r.With(middleware.RequireEmployee).Get("/customers", h.listCustomers)
	r.With(middleware.RequireEmployee).Get("/customers/{customerID}", h.latestReport)
	r.With(middleware.RequireCustomer).Get("/customer/reports", h.ownReports)
}

func (h *Handlers) listCustomers(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	u, _ := middleware.CurrentUser(r.Context())
	ids, err := h.svc.ListCustomers(r.Context(), u)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}

	type item struct {
		CustomerID int64 `json:"customer_id"`
	}
	out := make([]item, 0, len(ids))
	for _, id := range ids {
		out = append(out, item{CustomerID: id})
	}
	phttp.RespondOK(w, r, out)
}

func (h *Handlers) latestReport(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	customerID, err := strconv.ParseInt(chi.URLParam(r, "customerID"), 10, 64)
	if err != nil {
		phttp.RespondError(w, r, perr.InvalidArgf("customer id must be an integer"))
		return
	}

	u, _ := middleware.CurrentUser(r.Context())
	row, err := h.svc.LatestReport(r.Context(), u, customerID)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	phttp.RespondOK(w, r, row)
}

func (h *Handlers) ownReports(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	u, _ := middleware.CurrentUser(r.Context())
	rows, err := h.svc.OwnReports(r.Context(), u)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	phttp.RespondOK(w, r, rows)
}
