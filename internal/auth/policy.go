package auth

import (
	"strings"

	"feedbackapp/internal/models"
	contextutils "feedbackapp/internal/utils"
)

// Policy is the set of roles an endpoint accepts. An empty set admits any authenticated caller.
type Policy struct {
	Roles []models.Role
}

// Common policies
var (
	AnyAuthenticated = Policy{}
	CustomerOnly     = Policy{Roles: []models.Role{models.RoleCustomer}}
	ManagerOnly      = Policy{Roles: []models.Role{models.RoleManager}}
)

// RequireRoles builds a policy admitting any of roles.
func RequireRoles(roles ...models.Role) Policy {
	return Policy{Roles: roles}
}

// Allows reports whether p satisfies the policy.
func (pol Policy) Allows(p Principal) bool {
	if !p.Authenticated() {
		return false
	}
	if len(pol.Roles) == 0 {
		return true
	}
	for _, r := range pol.Roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// Check returns nil when p satisfies the policy, an UNAUTHORIZED error for an anonymous
// caller and a FORBIDDEN error for an authenticated caller with the wrong role.
func (pol Policy) Check(p Principal) error {
	if !p.Authenticated() {
		return contextutils.NewAppError(contextutils.ErrorCodeUnauthorized, contextutils.SeverityWarn,
			"Authentication required", "")
	}
	if pol.Allows(p) {
		return nil
	}
	return contextutils.NewAuthorizationError(pol.deniedMessage())
}

func (pol Policy) deniedMessage() string {
	if len(pol.Roles) == 1 {
		r := string(pol.Roles[0])
		return "Access denied. " + strings.ToUpper(r[:1]) + r[1:] + " role required."
	}
	names := make([]string, len(pol.Roles))
	for i, r := range pol.Roles {
		names[i] = string(r)
	}
	return "Access denied. One of roles [" + strings.Join(names, ", ") + "] required."
}
