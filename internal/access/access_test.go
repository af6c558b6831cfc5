package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soko/pkg/domain"
)

func TestRolesAllowed(t *testing.T) {
	table := NewTable([]Entry{
		// Broad prefix declared before the narrow one on purpose; the table
		// must resolve by specificity, not declaration order.
		{Prefix: "/sacco", Roles: []domain.Role{domain.RoleTeller, domain.RoleManager}},
		{Prefix: "/sacco/loans/approvals", Roles: []domain.Role{domain.RoleManager}},
		{Prefix: "/pos", Roles: []domain.Role{domain.RoleCashier}},
	})

	t.Run("matches a listed prefix", func(t *testing.T) {
		roles, ok := table.RolesAllowed("/pos")
		require.True(t, ok)
		assert.True(t, roles.Contains(domain.RoleCashier))
		assert.False(t, roles.Contains(domain.RoleTeller))
	})

	t.Run("matches sub-paths of a prefix", func(t *testing.T) {
		roles, ok := table.RolesAllowed("/sacco/contributions")
		require.True(t, ok)
		assert.True(t, roles.Contains(domain.RoleTeller))
	})

	t.Run("longest prefix wins over declaration order", func(t *testing.T) {
		roles, ok := table.RolesAllowed("/sacco/loans/approvals/123")
		require.True(t, ok)
		assert.False(t, roles.Contains(domain.RoleTeller), "narrow rule must shadow the broad one")
		assert.True(t, roles.Contains(domain.RoleManager))
	})

	t.Run("unlisted path has no entry", func(t *testing.T) {
		_, ok := table.RolesAllowed("/overview")
		assert.False(t, ok, "unlisted paths are implicitly allowed")
	})
}

func TestDefaultLanding(t *testing.T) {
	landing := NewLanding(
		map[domain.Role]string{domain.RoleCashier: "/pos"},
		map[domain.BusinessType]string{domain.BusinessSacco: "/sacco"},
		"/overview",
	)

	t.Run("role entry wins", func(t *testing.T) {
		assert.Equal(t, "/pos", landing.DefaultLanding(domain.RoleCashier, domain.BusinessSacco))
	})

	t.Run("falls back to business type", func(t *testing.T) {
		assert.Equal(t, "/sacco", landing.DefaultLanding(domain.RoleStaff, domain.BusinessSacco))
	})

	t.Run("falls back to default entry", func(t *testing.T) {
		assert.Equal(t, "/overview", landing.DefaultLanding(domain.RoleStaff, domain.BusinessRetail))
	})
}

// TestDefaultTablesConverge guards against redirect loops in the shipped
// configuration: every user's default landing path must itself be allowed
// for that user, whatever role and business type they carry.
func TestDefaultTablesConverge(t *testing.T) {
	table := DefaultTable()
	landing := DefaultLandingTable()

	roles := []domain.Role{
		domain.RoleOwner, domain.RoleAdmin, domain.RoleManager, domain.RoleCashier,
		domain.RoleTeller, domain.RoleAccountant, domain.RoleStaff, domain.Role("unknown"),
	}
	businessTypes := []domain.BusinessType{
		domain.BusinessRetail, domain.BusinessSacco, domain.BusinessRestaurant,
		domain.BusinessServices, domain.BusinessType("unknown"),
	}

	for _, role := range roles {
		for _, bt := range businessTypes {
			path := landing.DefaultLanding(role, bt)
			allowed, listed := table.RolesAllowed(path)
			if listed {
				assert.True(t, allowed.Contains(role),
					"landing %q must admit role %q (business type %q)", path, role, bt)
			}
		}
	}
}
