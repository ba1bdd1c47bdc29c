package entity

import "time"

// Company represents an organization on the platform. The same record can act
// as customer on some PIRs and supplier on others; the side is a property of
// the request, not of the company.
type Company struct {
	ID           string
	Name         string
	ContactName  string
	ContactEmail string
	ContactPhone string
	Address      string
	City         string
	Country      string
	Status       string // active, suspended, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Membership roles (must match the CHECK on company_users.role).
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// ValidRole reports whether s is one of the defined membership roles.
func ValidRole(s string) bool {
	return s == RoleOwner || s == RoleAdmin || s == RoleMember
}

// CompanyUser links a user to a company with exactly one role.
// A user may hold memberships in any number of companies.
type CompanyUser struct {
	ID        string
	UserID    string
	CompanyID string
	Role      string // owner, admin, member
	CreatedAt time.Time
	UpdatedAt time.Time
}
