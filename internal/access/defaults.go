package access

import "soko/pkg/domain"

// DefaultTable is the platform's access control table. Prefixes cover page
// modules; unlisted paths are open to any authenticated, onboarded user.
func DefaultTable() *Table {
	return NewTable([]Entry{
		{Prefix: "/command-center", Roles: []domain.Role{domain.RoleOwner, domain.RoleAdmin, domain.RoleManager}},
		{Prefix: "/settings", Roles: []domain.Role{domain.RoleOwner, domain.RoleAdmin, domain.RoleManager}},
		{Prefix: "/pos", Roles: []domain.Role{domain.RoleOwner, domain.RoleAdmin, domain.RoleManager, domain.RoleCashier, domain.RoleStaff}},
		{Prefix: "/sacco", Roles: []domain.Role{domain.RoleOwner, domain.RoleAdmin, domain.RoleManager, domain.RoleTeller, domain.RoleAccountant, domain.RoleStaff}},
		// Loan approvals are management-only even though /sacco is open to
		// tellers; longest-prefix match keeps this narrower rule in force.
		{Prefix: "/sacco/loans/approvals", Roles: []domain.Role{domain.RoleOwner, domain.RoleAdmin, domain.RoleManager}},
		{Prefix: "/inventory", Roles: []domain.Role{domain.RoleOwner, domain.RoleAdmin, domain.RoleManager, domain.RoleStaff}},
		{Prefix: "/reports", Roles: []domain.Role{domain.RoleOwner, domain.RoleAdmin, domain.RoleManager, domain.RoleAccountant}},
	})
}

// DefaultLandingTable picks each user's landing page after login. The
// fallback path is deliberately outside every access control prefix so a
// user bounced there is never bounced again.
func DefaultLandingTable() *Landing {
	return NewLanding(
		map[domain.Role]string{
			domain.RoleOwner:      "/command-center",
			domain.RoleAdmin:      "/command-center",
			domain.RoleManager:    "/command-center",
			domain.RoleCashier:    "/pos",
			domain.RoleTeller:     "/sacco",
			domain.RoleAccountant: "/reports",
		},
		map[domain.BusinessType]string{
			domain.BusinessRetail:     "/pos",
			domain.BusinessSacco:      "/sacco",
			domain.BusinessRestaurant: "/pos",
			domain.BusinessServices:   "/invoices",
		},
		"/overview",
	)
}
