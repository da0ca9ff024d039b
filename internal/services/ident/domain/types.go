// Package domain holds identity types shared across layers
package domain

// User roles
const (
	RoleCustomer = "CUSTOMER"
	RoleEmployee = "EMPLOYEE"
	RoleAdmin    = "ADMIN"
)

// User is an authenticated account. CustomerID is set only for
// customer-role users and scopes what they may read
type User struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	CustomerID *int64 `json:"customer_id"`
	IsActive   bool   `json:"-"`
}

// CanActAsEmployee reports whether the user passes the employee guard
func (u User) CanActAsEmployee() bool {
	return u.Role == RoleEmployee || u.Role == RoleAdmin
}

// Session is a successful login: the signed token plus its user
type Session struct {
	Token string
	User  User
}
