package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	perr "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/errors"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/net/middleware"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/api/reports/repo"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/api/reports/service"
	identdomain "github.com/ChMatthaios/EUR-COM-SUITE/internal/services/ident/domain"

	"github.com/go-chi/chi/v5"
)

type fakeAuth struct {
	users map[string]identdomain.User
}

func (f *fakeAuth) Login(context.Context, string, string) (identdomain.Session, error) {
	return identdomain.Session{}, perr.Unauthorizedf("not implemented")
}

func (f *fakeAuth) UserFromToken(_ context.Context, token string) (identdomain.User, error) {
	u, ok := f.users[token]
	if !ok {
		return identdomain.User{}, perr.Unauthorizedf("invalid or expired token")
	}
	return u, nil
}

type fakeReports struct {
	customers []int64
	rows      map[int64][]repo.ReportRow
}

func (f *fakeReports) DistinctCustomers(context.Context) ([]int64, error) {
	return f.customers, nil
}

func (f *fakeReports) LatestByCustomer(_ context.Context, customerID int64) (repo.ReportRow, error) {
	rows := f.rows[customerID]
	if len(rows) == 0 {
		return repo.ReportRow{}, perr.NotFoundf("customer report not found")
	}
	return rows[0], nil
}

func (f *fakeReports) AllByCustomer(_ context.Context, customerID int64) ([]repo.ReportRow, error) {
	return f.rows[customerID], nil
}

func newTestRouter(store *fakeReports, auth *fakeAuth) stdhttp.Handler {
	r := chi.NewRouter()
	h := New(service.New(store))
	r.Group(func(g chi.Router) {
		g.Use(middleware.RequireAuth(auth))
		h.Mount(g)
	})
	return r
}

func testUsers() *fakeAuth {
	cid := int64(101)
	return &fakeAuth{users: map[string]identdomain.User{
		"emp-token":  {ID: 2, Username: "employee1", Role: identdomain.RoleEmployee, IsActive: true},
		"cust-token": {ID: 1, Username: "customer1", Role: identdomain.RoleCustomer, CustomerID: &cid, IsActive: true},
	}}
}

func testStore() *fakeReports {
	gen := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &fakeReports{
		customers: []int64{101, 102},
		rows: map[int64][]repo.ReportRow{
			101: {
				{RunID: 9, CustomerID: 101, StructuredDoc: `{"x":1}`, MarkupDoc: "<CustomerReport></CustomerReport>", GeneratedAt: gen},
				{RunID: 8, CustomerID: 101, StructuredDoc: `{"x":0}`, MarkupDoc: "<CustomerReport></CustomerReport>", GeneratedAt: gen},
			},
		},
	}
}

func do(t *testing.T, h stdhttp.Handler, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoutesRejectMissingToken(t *testing.T) {
	t.Parallel()

	h := newTestRouter(testStore(), testUsers())
	for _, path := range []string{"/customers", "/customers/101", "/customer/reports"} {
		rec := do(t, h, stdhttp.MethodGet, path, "")
		if rec.Code != stdhttp.StatusUnauthorized {
			t.Errorf("%s without token: status %d", path, rec.Code)
		}
	}
}

func TestListCustomersEmployeeOnly(t *testing.T) {
	t.Parallel()

	h := newTestRouter(testStore(), testUsers())

	rec := do(t, h, stdhttp.MethodGet, "/customers", "emp-token")
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("employee list: status %d body %s", rec.Code, rec.Body.String())
	}
	var env struct {
		Data []struct {
			CustomerID int64 `json:"customer_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data) != 2 || env.Data[0].CustomerID != 101 {
		t.Fatalf("list wrong: %+v", env.Data)
	}

	// a customer token is forbidden, not just unauthorized
	rec = do(t, h, stdhttp.MethodGet, "/customers", "cust-token")
	if rec.Code != stdhttp.StatusForbidden {
		t.Fatalf("customer hitting employee route: status %d", rec.Code)
	}
}

func TestLatestReport(t *testing.T) {
	t.Parallel()

	h := newTestRouter(testStore(), testUsers())

	rec := do(t, h, stdhttp.MethodGet, "/customers/101", "emp-token")
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	var env struct {
		Data repo.ReportRow `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.RunID != 9 || env.Data.CustomerID != 101 {
		t.Fatalf("latest report wrong: %+v", env.Data)
	}

	rec = do(t, h, stdhttp.MethodGet, "/customers/999", "emp-token")
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("unknown customer: status %d", rec.Code)
	}

	rec = do(t, h, stdhttp.MethodGet, "/customers/abc", "emp-token")
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("non-numeric id: status %d", rec.Code)
	}
}

func TestOwnReportsUsesTokenCustomerID(t *testing.T) {
	t.Parallel()

	h := newTestRouter(testStore(), testUsers())

	rec := do(t, h, stdhttp.MethodGet, "/customer/reports", "cust-token")
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	var env struct {
		Data []repo.ReportRow `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data) != 2 {
		t.Fatalf("want both runs, got %d", len(env.Data))
	}
	if env.Data[0].RunID != 9 || env.Data[1].RunID != 8 {
		t.Fatalf("runs not newest-first: %+v", env.Data)
	}

	// employee tokens cannot use the customer-scoped route
	rec = do(t, h, stdhttp.MethodGet, "/customer/reports", "emp-token")
	if rec.Code != stdhttp.StatusForbidden {
		t.Fatalf("employee hitting customer route: status %d", rec.Code)
	}
}

func TestOwnReportsUnlinkedCustomer(t *testing.T) {
	t.Parallel()

	auth := testUsers()
	u := auth.users["cust-token"]
	u.CustomerID = nil
	auth.users["cust-token"] = u

	h := newTestRouter(testStore(), auth)
	rec := do(t, h, stdhttp.MethodGet, "/customer/reports", "cust-token")
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("unlinked customer: status %d", rec.Code)
	}
}
