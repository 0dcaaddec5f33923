package auth

import (
	"fmt"
	"sort"
	"strings"
)

// Role is a named grouping of permissions assigned to a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Permission is an atomic capability required to perform an operation.
type Permission string

const (
	PermissionRead        Permission = "READ"
	PermissionWrite       Permission = "WRITE"
	PermissionDelete      Permission = "DELETE"
	PermissionManageUsers Permission = "MANAGE_USERS"
)

// AllPermissions lists the closed set of permission tags.
var AllPermissions = []Permission{
	PermissionRead,
	PermissionWrite,
	PermissionDelete,
	PermissionManageUsers,
}

// ParsePermission returns the permission matching s (case-insensitive).
func ParsePermission(s string) (Permission, error) {
	candidate := Permission(strings.ToUpper(strings.TrimSpace(s)))
	for _, p := range AllPermissions {
		if p == candidate {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown permission %q", s)
}

// PermissionTable maps every defined role to its permission set.
// It is built once and never mutated afterwards, so it is safe for
// concurrent use without locking.
type PermissionTable struct {
	roles map[Role]map[Permission]struct{}
}

// NewPermissionTable builds a table from a role -> permissions mapping.
// Every role present in the mapping is defined, even with an empty list.
func NewPermissionTable(mapping map[Role][]Permission) (*PermissionTable, error) {
	if len(mapping) == 0 {
		return nil, fmt.Errorf("permission table must define at least one role")
	}

	roles := make(map[Role]map[Permission]struct{}, len(mapping))
	for role, perms := range mapping {
		name := Role(strings.TrimSpace(string(role)))
		if name == "" {
			return nil, fmt.Errorf("role name cannot be empty")
		}
		if _, dup := roles[name]; dup {
			return nil, fmt.Errorf("role %q defined twice", name)
		}

		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			parsed, err := ParsePermission(string(p))
			if err != nil {
				return nil, fmt.Errorf("role %q: %w", name, err)
			}
			set[parsed] = struct{}{}
		}
		roles[name] = set
	}

	return &PermissionTable{roles: roles}, nil
}

// DefaultPermissionTable returns the built-in mapping: admins hold every
// permission, users may only read.
func DefaultPermissionTable() *PermissionTable {
	table, err := NewPermissionTable(map[Role][]Permission{
		RoleAdmin: AllPermissions,
		RoleUser:  {PermissionRead},
	})
	if err != nil {
		panic(err)
	}
	return table
}

// Allows reports whether role holds permission. Unknown roles hold the
// empty set.
func (t *PermissionTable) Allows(role Role, permission Permission) bool {
	set, ok := t.roles[role]
	if !ok {
		return false
	}
	_, ok = set[permission]
	return ok
}

// HasRole reports whether role is defined in the table.
func (t *PermissionTable) HasRole(role Role) bool {
	_, ok := t.roles[role]
	return ok
}

// Roles returns the defined roles in sorted order.
func (t *PermissionTable) Roles() []Role {
	roles := make([]Role, 0, len(t.roles))
	for role := range t.roles {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

// Permissions returns a copy of the permissions held by role, in the
// order of AllPermissions.
func (t *PermissionTable) Permissions(role Role) []Permission {
	set := t.roles[role]
	perms := make([]Permission, 0, len(set))
	for _, p := range AllPermissions {
		if _, ok := set[p]; ok {
			perms = append(perms, p)
		}
	}
	return perms
}
