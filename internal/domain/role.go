package domain

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleShopper    Role = "Shopper"
	RoleEmployee   Role = "Employee"
	RoleAdmin      Role = "Admin"
	RoleSuperAdmin Role = "SuperAdmin"
)

// Roles lists every role from least to most privileged.
var Roles = []Role{RoleShopper, RoleEmployee, RoleAdmin, RoleSuperAdmin}

// ParseRole converts untrusted role text into a Role. Matching ignores case,
// spaces, dashes and underscores, and accepts "administrator" for Admin.
func ParseRole(s string) (Role, error) {
	key := strings.ToLower(s)
	key = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)

	switch key {
	case "shopper", "customer":
		return RoleShopper, nil
	case "employee", "staff":
		return RoleEmployee, nil
	case "admin", "administrator":
		return RoleAdmin, nil
	case "superadmin", "superadministrator":
		return RoleSuperAdmin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return slices.Contains(Roles, r)
}

func (r Role) String() string {
	return string(r)
}

// Policy names a set of roles allowed to call an endpoint.
type Policy struct {
	Name  string
	Roles []Role
}

var (
	PolicyAuthenticated = Policy{Name: "Authenticated", Roles: Roles}
	PolicyEmployeeOnly  = Policy{Name: "EmployeeOnly", Roles: []Role{RoleEmployee, RoleAdmin, RoleSuperAdmin}}
	PolicyAdminOnly     = Policy{Name: "AdminOnly", Roles: []Role{RoleAdmin, RoleSuperAdmin}}
	PolicySuperAdmin    = Policy{Name: "SuperAdminOnly", Roles: []Role{RoleSuperAdmin}}
)

// Principal is the verified caller of a request, derived from token claims.
type Principal struct {
	UserID   uuid.UUID
	Email    string
	Username string
	Roles    []Role
}

// HasRole reports whether the principal carries role r.
func (p *Principal) HasRole(r Role) bool {
	return p != nil && slices.Contains(p.Roles, r)
}

// Satisfies reports whether the principal holds any role the policy allows.
func (p *Principal) Satisfies(policy Policy) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if slices.Contains(policy.Roles, r) {
			return true
		}
	}
	return false
}

// IsStaff reports whether the principal may manage the catalog and orders.
func (p *Principal) IsStaff() bool {
	return p.Satisfies(PolicyEmployeeOnly)
}
