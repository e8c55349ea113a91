package models

// StandingRow is derived from completed matches, never persisted.
type StandingRow struct {
	Position      int  `json:"position"`
	ParticipantID int  `json:"participant_id"`
	GroupID       *int `json:"group_id,omitempty"`
	Played        int  `json:"played"`
	Won           int  `json:"won"`
	Lost          int  `json:"lost"`
	SetsWon       int  `json:"sets_won"`
	SetsLost      int  `json:"sets_lost"`
	GamesWon      int  `json:"games_won"`
	GamesLost     int  `json:"games_lost"`
	Points        int  `json:"points"`

	Participant *Participant `json:"participant,omitempty"`
}

// SetDiff and GameDiff are the tie-break keys after points.
func (r StandingRow) SetDiff() int  { return r.SetsWon - r.SetsLost }
func (r StandingRow) GameDiff() int { return r.GamesWon - r.GamesLost }
