// Package auth issues and verifies bearer tokens and describes who is calling and
// which roles an endpoint accepts.
package auth

import (
	"feedbackapp/internal/models"
)

// Principal is the authenticated caller of a request. It is passed explicitly into every
// service call; nothing reads the caller from ambient state.
type Principal struct {
	UserID int
	Role   models.Role
}

// Anonymous is the zero principal.
var Anonymous = Principal{}

// Authenticated reports whether p identifies a user.
func (p Principal) Authenticated() bool {
	return p.UserID > 0 && p.Role.IsValid()
}

// HasRole reports whether p is authenticated with exactly role r.
func (p Principal) HasRole(r models.Role) bool {
	return p.Authenticated() && p.Role == r
}

// IsManager reports whether p may triage feedback.
func (p Principal) IsManager() bool {
	return p.HasRole(models.RoleManager)
}
