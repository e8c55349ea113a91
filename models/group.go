package models

import "time"

// Group is created once per tournament at group-stage start and never
// mutated after its matches are generated. Name is a sequential letter
// (A, B, C, ...), Position its zero-based ordinal.
type Group struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	Position     int       `json:"position" db:"position"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
