// Package access holds the static authorization tables: which roles may
// enter which path prefixes, and where each user lands by default.
//
// Both tables are immutable and process-wide. They are built once at startup
// and passed by reference into the request handler; nothing mutates them
// afterwards, so no locking is needed.
package access

import (
	"sort"
	"strings"

	"soko/pkg/domain"
)

// Entry grants a set of roles access to every path under a prefix.
type Entry struct {
	Prefix string
	Roles  []domain.Role
}

// RoleSet is the set of roles allowed past an access control entry.
type RoleSet map[domain.Role]struct{}

// Contains reports whether role is in the set.
func (s RoleSet) Contains(role domain.Role) bool {
	_, ok := s[role]
	return ok
}

// Table is an ordered list of access control entries matched by path prefix.
//
// Overlapping prefixes are resolved by longest-prefix match: entries are
// sorted by descending prefix length at construction, so a narrow rule
// (/sacco/loans/approvals) always wins over a broad one (/sacco) no matter
// the declaration order. Paths matching no entry are implicitly allowed;
// new page modules ship before their access entries and must not lock
// everyone out.
type Table struct {
	entries []tableEntry
}

type tableEntry struct {
	prefix string
	roles  RoleSet
}

// NewTable builds a table from entries. Declaration order does not matter.
func NewTable(entries []Entry) *Table {
	compiled := make([]tableEntry, 0, len(entries))
	for _, e := range entries {
		roles := make(RoleSet, len(e.Roles))
		for _, r := range e.Roles {
			roles[r] = struct{}{}
		}
		compiled = append(compiled, tableEntry{prefix: e.Prefix, roles: roles})
	}
	sort.SliceStable(compiled, func(i, j int) bool {
		return len(compiled[i].prefix) > len(compiled[j].prefix)
	})
	return &Table{entries: compiled}
}

// RolesAllowed returns the role set of the longest prefix matching path,
// or ok=false when no entry matches (implicit allow).
func (t *Table) RolesAllowed(path string) (RoleSet, bool) {
	for _, e := range t.entries {
		if strings.HasPrefix(path, e.prefix) {
			return e.roles, true
		}
	}
	return nil, false
}

// Landing maps users to their default landing path. Lookup order: role,
// then business type, then the fallback entry. The two tag spaces are kept
// separate so a role token can never collide with a business-type label.
type Landing struct {
	roles         map[domain.Role]string
	businessTypes map[domain.BusinessType]string
	fallback      string
}

// NewLanding builds a landing table. fallback is the `"default"` entry and
// must be non-empty.
func NewLanding(roles map[domain.Role]string, businessTypes map[domain.BusinessType]string, fallback string) *Landing {
	return &Landing{roles: roles, businessTypes: businessTypes, fallback: fallback}
}

// DefaultLanding resolves the landing path for a user. Generic roles like
// "admin" have direct entries; industry-specific accounts fall back to
// their business type; everything else gets the fallback path.
func (l *Landing) DefaultLanding(role domain.Role, businessType domain.BusinessType) string {
	if path, ok := l.roles[role]; ok {
		return path
	}
	if path, ok := l.businessTypes[businessType]; ok {
		return path
	}
	return l.fallback
}
