// Package service exposes unified reports to the serving layer with the
// access rules attached: employees browse anyone, customers only themselves
package service

import (
	"context"

	perr "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/errors"
	"github.com/ChMatthaios/EUR-COM-SUITE/internal/services/api/reports/repo"
	identdomain "github.com/ChMatthaios/EUR-COM-SUITE/internal/services/ident/domain"
)

// Service reads unified reports on behalf of an authenticated user
type Service struct {
	store repo.Storage
}

// New constructs the report reading service
func New(store repo.Storage) *Service { return &Service{store: store} }

// ListCustomers returns every reported customer id; employee only
func (s *Service) ListCustomers(ctx context.Context, u identdomain.User) ([]int64, error) {
	if !u.CanActAsEmployee() {
		return nil, perr.Forbiddenf("employee access required")
	}
	return s.store.DistinctCustomers(ctx)
}

// LatestReport returns the newest report of any customer; employee only
func (s *Service) LatestReport(ctx context.Context, u identdomain.User, customerID int64) (repo.ReportRow, error) {
	if !u.CanActAsEmployee() {
		return repo.ReportRow{}, perr.Forbiddenf("employee access required")
	}
	return s.store.LatestByCustomer(ctx, customerID)
}

// OwnReports returns every report of the calling customer. The customer id
// comes from the authenticated user, never from client input
func (s *Service) OwnReports(ctx context.Context, u identdomain.User) ([]repo.ReportRow, error) {
	if u.Role != identdomain.RoleCustomer {
		return nil, perr.Forbiddenf("customer access required")
	}
	if u.CustomerID == nil {
		return nil, perr.InvalidArgf("no customer is linked to this user")
	}
	return s.store.AllByCustomer(ctx, *u.CustomerID)
}
