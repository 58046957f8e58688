// Package access decides which operators may reach which regions, districts
// and records. Every function is a pure decision over its arguments.
package access

import (
	"fmt"
	"strings"
)

// Role is an operator's position in the privilege hierarchy.
type Role string

const (
	RoleTechnician       Role = "technician"
	RoleDistrictEngineer Role = "district_engineer"
	RoleRegionalEngineer Role = "regional_engineer"
	RoleGlobalEngineer   Role = "global_engineer"
	RoleSystemAdmin      Role = "system_admin"
)

// Roles lists every role from least to most privileged.
var Roles = []Role{
	RoleTechnician,
	RoleDistrictEngineer,
	RoleRegionalEngineer,
	RoleGlobalEngineer,
	RoleSystemAdmin,
}

// roleScope is how far a role's visibility reaches.
type roleScope int

const (
	scopeDistrict roleScope = iota
	scopeRegion
	scopeGlobal
)

type roleInfo struct {
	rank  int
	scope roleScope
	label string
}

// roleTable is the only place roles are compared. system_admin ranks above
// every other role, so it satisfies any requirement.
var roleTable = map[Role]roleInfo{
	RoleTechnician:       {rank: 0, scope: scopeDistrict, label: "Technician"},
	RoleDistrictEngineer: {rank: 1, scope: scopeDistrict, label: "District Engineer"},
	RoleRegionalEngineer: {rank: 2, scope: scopeRegion, label: "Regional Engineer"},
	RoleGlobalEngineer:   {rank: 3, scope: scopeGlobal, label: "Global Engineer"},
	RoleSystemAdmin:      {rank: 4, scope: scopeGlobal, label: "System Admin"},
}

// ParseRole converts a config or flag value into a Role. Case, surrounding
// space and hyphens are tolerated.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Valid returns true if the role is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleTable[r]
	return ok
}

// Label returns the display name of the role.
func (r Role) Label() string {
	if info, ok := roleTable[r]; ok {
		return info.label
	}
	return string(r)
}

func (r Role) String() string {
	return string(r)
}

// IsGlobal reports whether the role carries no region or district constraint.
func (r Role) IsGlobal() bool {
	info, ok := roleTable[r]
	return ok && info.scope == scopeGlobal
}

// IsDistrictScoped reports whether the role is confined to a single district.
func (r Role) IsDistrictScoped() bool {
	info, ok := roleTable[r]
	return ok && info.scope == scopeDistrict
}

// HasRequiredRole reports whether actual meets required. Unknown roles never
// satisfy a requirement and an unknown requirement is never met.
func HasRequiredRole(actual, required Role) bool {
	a, ok := roleTable[actual]
	if !ok {
		return false
	}
	if actual == RoleSystemAdmin {
		return true
	}
	r, ok := roleTable[required]
	if !ok {
		return false
	}
	return a.rank >= r.rank
}
