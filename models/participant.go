package models

import "time"

// Participant links a user to a tournament. Seed is assigned at tournament
// start when absent; GroupID is set once the group stage is generated.
type Participant struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	UserID       int       `json:"user_id" db:"user_id"`
	Seed         *int      `json:"seed,omitempty" db:"seed"`
	GroupID      *int      `json:"group_id,omitempty" db:"group_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	User *User `json:"user,omitempty" db:"-"`
}
