package models

import "time"

// UserRole is the caller's role as seen by the authorization boundary.
type UserRole string

const (
	RoleAdmin       UserRole = "admin"
	RoleGestore     UserRole = "gestore"
	RoleParticipant UserRole = "participant"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleGestore, RoleParticipant:
		return true
	}
	return false
}

type User struct {
	ID           int       `json:"id" db:"id"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	Role         UserRole  `json:"role" db:"role"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
