package models

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleAdmiral Role = "admiral"
	RoleUser    Role = "user"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleAdmiral, RoleUser:
		return Role(s), true
	}
	return "", false
}

// Principal is the authenticated caller threaded into every mutation.
type Principal struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanCommandFleets covers admirals and admins.
func (p Principal) CanCommandFleets() bool {
	return p.Role == RoleAdmin || p.Role == RoleAdmiral
}

// AdminUser is a dashboard account stored under adminUsers/<username>.
type AdminUser struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u *AdminUser) Principal() Principal {
	return Principal{ID: u.ID, Username: u.Username, Role: u.Role}
}
