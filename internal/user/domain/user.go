package domain

import (
	"errors"
	"time"
)

// User is a portal account: one hospital, support desk, or administrator.
type User struct {
	ID           string
	HospitalName string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Role is the closed set of account kinds.
type Role string

const (
	RoleHospital Role = "hospital"
	RoleSupport  Role = "support"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleHospital, RoleSupport, RoleAdmin:
		return true
	}
	return false
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	if u.Role == "" {
		u.Role = RoleHospital
	}
	if !u.Role.Valid() {
		return errors.New("unknown role")
	}
	return nil
}
