package models

import "strings"

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleSecurity Role = "SECURITY"
	RoleVisitor  Role = "VISITOR"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSecurity, RoleVisitor:
		return true
	}
	return false
}

// IsStaff reports whether the role may act on other people's passes.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleSecurity
}

type User struct {
	ID     string `json:"id" bson:"id"`
	Name   string `json:"name" bson:"name"`
	Email  string `json:"email" bson:"email"`
	Role   Role   `json:"role" bson:"role"`
	Avatar string `json:"avatar,omitempty" bson:"avatar,omitempty"`
}

// HasEmail compares emails case-insensitively, the way logins are looked up.
func (u *User) HasEmail(email string) bool {
	return strings.EqualFold(strings.TrimSpace(u.Email), strings.TrimSpace(email))
}

// DefaultAdmin is the reserved account that always exists.
func DefaultAdmin() User {
	return User{
		ID:    "admin-001",
		Name:  "System Administrator",
		Email: "admin@securepass.com",
		Role:  RoleAdmin,
	}
}

// VisitorSummary is one row of the registered-visitors report.
type VisitorSummary struct {
	User      User `json:"user"`
	PassCount int  `json:"passCount"`
}
