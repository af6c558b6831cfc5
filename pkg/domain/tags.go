package domain

// Role is the fine-grained permission tag assigned to a user. Roles gate
// access to path prefixes and pick the default landing page.
type Role string

const (
	RoleOwner      Role = "owner"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleCashier    Role = "cashier"
	RoleTeller     Role = "teller"
	RoleAccountant Role = "accountant"
	RoleStaff      Role = "staff"
)

// BusinessType classifies the tenant's line of business. Industry-specific
// onboarding assigns a business type instead of a fine-grained role, so the
// landing-page lookup falls back to it when the role has no entry.
type BusinessType string

const (
	BusinessRetail     BusinessType = "retail"
	BusinessSacco      BusinessType = "sacco"
	BusinessRestaurant BusinessType = "restaurant"
	BusinessServices   BusinessType = "services"
)
