package models

import (
	"slices"
	"time"
)

// User is a staff member or beneficiary account
type User struct {
	ID        string    `json:"id" bson:"_id"`
	Username  string    `json:"username" bson:"username"`
	FullName  string    `json:"fullName" bson:"full_name"`
	Email     string    `json:"email" bson:"email"`
	Phone     string    `json:"phone" bson:"phone"`
	Roles     []Role    `json:"roles" bson:"roles"`
	IsActive  bool      `json:"isActive" bson:"is_active"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// UserRequest is the create/update payload for users
type UserRequest struct {
	Username string `json:"username" binding:"required"`
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Roles    []Role `json:"roles"`
	IsActive *bool  `json:"isActive,omitempty"`
}

// Gin context keys shared by middleware and handlers
const (
	PrincipalContextKey = "principal"
	RequestIDContextKey = "request_id"
)

// Principal is the authenticated caller of a request
type Principal struct {
	UserID   string
	Username string
	Name     string
	Roles    []Role
}

// HasRole reports whether the principal holds role
func (p *Principal) HasRole(role Role) bool {
	if p == nil {
		return false
	}
	return slices.Contains(p.Roles, role)
}

// HasAnyRole reports whether the principal holds at least one of roles
func (p *Principal) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if p.HasRole(r) {
			return true
		}
	}
	return false
}
