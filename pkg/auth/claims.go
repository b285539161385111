package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims the pricing service accepts. Subject identifies
// the calling user or service.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

// HasRole checks if the claims include the specified role.
func (c Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// HasAnyRole reports whether the claims carry at least one of roles. An
// empty roles list is satisfied by any caller.
func (c Claims) HasAnyRole(roles ...string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if c.HasRole(r) {
			return true
		}
	}
	return false
}

// Role constants
const (
	// RoleLoanOfficer may price loans, quote rates and manage scenarios.
	RoleLoanOfficer = "loan_officer"
	// RolePricingAdmin may additionally publish rate configurations.
	RolePricingAdmin = "pricing_admin"
	// RoleService is held by internal callers such as the CRM integration.
	RoleService = "service"
)
