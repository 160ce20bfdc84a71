package domain

import (
	"slices"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User models an account of the platform. Membership sets hold document ids.
type User struct {
	ID           string
	UserName     string
	Email        string
	PasswordHash string `json:"-"`
	Roles        []string
	Attendees    []string // attendee record ids
	Events       []string // events the user is registered for
	Favorites    []string // favorited event ids
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole reports whether the user carries the given role flag.
func (u *User) HasRole(role string) bool {
	if u == nil {
		return false
	}
	return slices.Contains(u.Roles, role)
}

func (u *User) IsAdmin() bool { return u.HasRole(RoleAdmin) }

// ValidRole reports whether r is one of the known role flags.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleUser
}
