package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusCancelled MatchStatus = "cancelled"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchStatusScheduled, MatchStatusCompleted, MatchStatusCancelled:
		return true
	}
	return false
}

// SetScore records the games won by each side in one set.
type SetScore struct {
	P1Games int `json:"p1_games"`
	P2Games int `json:"p2_games"`
}

// SetScores is stored as a JSONB column.
type SetScores []SetScore

func (s SetScores) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

func (s *SetScores) Scan(src interface{}) error {
	if src == nil {
		*s = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into SetScores", src)
	}
	return json.Unmarshal(b, s)
}

// Match uses one canonical field set for all formats. Participant slots are
// nullable: an unresolved bracket slot or a bye leaves a slot empty.
// MatchNumber is sequential within the tournament.
type Match struct {
	ID             int         `json:"id" db:"id"`
	TournamentID   int         `json:"tournament_id" db:"tournament_id"`
	Phase          Phase       `json:"phase" db:"phase"`
	GroupID        *int        `json:"group_id,omitempty" db:"group_id"`
	Round          int         `json:"round" db:"round"`
	RoundLabel     string      `json:"round_label" db:"round_label"`
	MatchNumber    int         `json:"match_number" db:"match_number"`
	P1ID           *int        `json:"p1_id,omitempty" db:"p1_participant_id"`
	P2ID           *int        `json:"p2_id,omitempty" db:"p2_participant_id"`
	Status         MatchStatus `json:"status" db:"status"`
	WinnerID       *int        `json:"winner_id,omitempty" db:"winner_participant_id"`
	Sets           SetScores   `json:"sets" db:"sets"`
	ScheduledTime  *time.Time  `json:"scheduled_time,omitempty" db:"scheduled_time"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}

// IsBye reports whether the match was auto-resolved against an empty slot.
func (m *Match) IsBye() bool {
	return m.Status == MatchStatusCompleted && m.WinnerID != nil && len(m.Sets) == 0
}
