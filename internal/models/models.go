// Package models defines data structures used throughout the feedback service.
package models

import (
	"database/sql"
	"time"
)

// Role is the coarse permission level of a user account.
type Role string

// Account roles
const (
	RoleCustomer Role = "customer"
	RoleManager  Role = "manager"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleManager
}

// User represents an account that can authenticate against the service
type User struct {
	ID           int            `json:"id" yaml:"id"`
	Name         string         `json:"name" yaml:"name"`
	Email        string         `json:"email" yaml:"email"`
	PasswordHash sql.NullString `json:"-" yaml:"-"` // Omit from JSON responses
	Role         Role           `json:"role" yaml:"role"`
	CreatedAt    time.Time      `json:"createdAt" yaml:"created_at"`
	UpdatedAt    time.Time      `json:"updatedAt" yaml:"updated_at"`
}

// UserSummary is the identity block returned to a client after login.
type UserSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Summary returns the public identity fields of u.
func (u *User) Summary() UserSummary {
	return UserSummary{Name: u.Name, Email: u.Email, Role: u.Role}
}

// UserProfile is the account view returned by GET /api/customer/profile.
type UserProfile struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Profile returns the account view of u.
func (u *User) Profile() UserProfile {
	return UserProfile{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Product is an entry in the read-only catalog feedback can be attached to.
type Product struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description"`
	CreatedAt   time.Time `json:"-" yaml:"created_at"`
}

// ProductSummary is the id/name pair shown in product pickers.
type ProductSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Summary returns the picker representation of p.
func (p *Product) Summary() ProductSummary {
	return ProductSummary{ID: p.ID, Name: p.Name}
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     Role   `json:"role" validate:"required,oneof=customer manager"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

// MessageResponse is the generic {"message": "..."} acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

func nullStringToPointer(ns sql.NullString) *string {
	if ns.Valid {
		return &ns.String
	}
	return nil
}

func pointerToNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
