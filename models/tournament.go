package models

import "time"

// TournamentType enumerates the supported competition formats.
type TournamentType string

const (
	TypeEliminazioneDiretta TournamentType = "eliminazione_diretta"
	TypeGironeEliminazione  TournamentType = "girone_eliminazione"
	TypeCampionato          TournamentType = "campionato"
)

func (t TournamentType) Valid() bool {
	switch t {
	case TypeEliminazioneDiretta, TypeGironeEliminazione, TypeCampionato:
		return true
	}
	return false
}

// Phase is the tournament's position in its format-specific lifecycle.
type Phase string

const (
	PhaseRegistration Phase = "registration"
	PhaseGroupStage   Phase = "group_stage"
	PhaseKnockout     Phase = "knockout"
	PhaseInProgress   Phase = "in_progress"
	PhaseCompleted    Phase = "completed"
)

func (p Phase) Valid() bool {
	switch p {
	case PhaseRegistration, PhaseGroupStage, PhaseKnockout, PhaseInProgress, PhaseCompleted:
		return true
	}
	return false
}

// MatchFormat controls how many sets a side must win to take a match.
// It affects score validation, not scheduling.
type MatchFormat string

const (
	BestOfThree MatchFormat = "best_of_3"
	BestOfFive  MatchFormat = "best_of_5"
)

func (f MatchFormat) Valid() bool {
	return f == BestOfThree || f == BestOfFive
}

func (f MatchFormat) SetsToWin() int {
	if f == BestOfFive {
		return 3
	}
	return 2
}

// Tournament holds one canonical field set regardless of format. The
// generation configuration (group count, advancement count, points per win)
// lives on the record itself.
type Tournament struct {
	ID               int            `json:"id" db:"id"`
	Name             string         `json:"name" db:"name"`
	Description      *string        `json:"description,omitempty" db:"description"`
	OrganizerID      int            `json:"organizer_id" db:"organizer_id"`
	Type             TournamentType `json:"type" db:"type"`
	Phase            Phase          `json:"phase" db:"phase"`
	NumGroups        int            `json:"num_groups" db:"num_groups"`
	AdvancementCount int            `json:"advancement_count" db:"advancement_count"`
	PointsPerWin     int            `json:"points_per_win" db:"points_per_win"`
	MatchFormat      MatchFormat    `json:"match_format" db:"match_format"`
	StartDate        time.Time      `json:"start_date" db:"start_date"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	LogoKey          *string        `json:"-" db:"logo_key"`
	LogoURL          *string        `json:"logo_url,omitempty" db:"-"`

	// Linked entities, populated by services when requested.
	Participants []Participant `json:"participants,omitempty" db:"-"`
	Groups       []Group       `json:"groups,omitempty" db:"-"`
	Matches      []Match       `json:"matches,omitempty" db:"-"`
}

// DefaultPointsPerWin is 3 for the championship format, 2 otherwise.
func DefaultPointsPerWin(t TournamentType) int {
	if t == TypeCampionato {
		return 3
	}
	return 2
}

// InitialPhase returns the phase a tournament enters when it leaves
// registration.
func InitialPhase(t TournamentType) Phase {
	switch t {
	case TypeGironeEliminazione:
		return PhaseGroupStage
	case TypeCampionato:
		return PhaseInProgress
	default:
		return PhaseKnockout
	}
}
