package brackets

import (
	"testing"

	"github.com/Giovo8/gst-tennis-academy-sub005/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedMatch(p1, p2, winner int, sets ...models.SetScore) models.Match {
	return models.Match{
		P1ID:     &p1,
		P2ID:     &p2,
		WinnerID: &winner,
		Status:   models.MatchStatusCompleted,
		Sets:     sets,
	}
}

func TestComputeStandings_EmptyMatches(t *testing.T) {
	rows := ComputeStandings(participantsByID(1, 2, 3), nil, 2)
	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, i+1, row.Position)
		assert.Zero(t, row.Played)
		assert.Zero(t, row.Points)
	}
	// Stable fallback keeps the original participant order.
	assert.Equal(t, 1, rows[0].ParticipantID)
	assert.Equal(t, 3, rows[2].ParticipantID)
}

func TestComputeStandings_PointsAndDifferentials(t *testing.T) {
	participants := participantsByID(1, 2, 3)
	matches := []models.Match{
		// 1 beats 2 in straight sets.
		completedMatch(1, 2, 1, models.SetScore{P1Games: 6, P2Games: 3}, models.SetScore{P1Games: 6, P2Games: 4}),
		// 3 beats 2 in three sets.
		completedMatch(3, 2, 3,
			models.SetScore{P1Games: 6, P2Games: 2},
			models.SetScore{P1Games: 4, P2Games: 6},
			models.SetScore{P1Games: 7, P2Games: 5}),
	}

	rows := ComputeStandings(participants, matches, 2)
	require.Len(t, rows, 3)

	// Both winners sit on 2 points; participant 1 ranks first on set diff
	// (+2 against +1).
	assert.Equal(t, 1, rows[0].ParticipantID)
	assert.Equal(t, 2, rows[0].Points)
	assert.Equal(t, 2, rows[0].SetsWon)
	assert.Equal(t, 0, rows[0].SetsLost)

	assert.Equal(t, 3, rows[1].ParticipantID)
	assert.Equal(t, 2, rows[1].Points)
	assert.Equal(t, 1, rows[1].SetDiff())

	assert.Equal(t, 2, rows[2].ParticipantID)
	assert.Equal(t, 2, rows[2].Played)
	assert.Equal(t, 2, rows[2].Lost)
	assert.Equal(t, 0, rows[2].Points)
	assert.Equal(t, 20, rows[2].GamesWon)
	assert.Equal(t, 29, rows[2].GamesLost)
}

func TestComputeStandings_GameDiffBreaksSetDiffTie(t *testing.T) {
	participants := participantsByID(1, 2, 3, 4)
	matches := []models.Match{
		completedMatch(1, 2, 1, models.SetScore{P1Games: 6, P2Games: 0}, models.SetScore{P1Games: 6, P2Games: 0}),
		completedMatch(3, 4, 3, models.SetScore{P1Games: 6, P2Games: 4}, models.SetScore{P1Games: 7, P2Games: 5}),
	}

	rows := ComputeStandings(participants, matches, 2)
	// 1 and 3 both have 2 points and +2 sets; 1 leads on games (+12 vs +4).
	assert.Equal(t, 1, rows[0].ParticipantID)
	assert.Equal(t, 3, rows[1].ParticipantID)
}

func TestComputeStandings_SkipsUnfinishedAndByes(t *testing.T) {
	one, two := 1, 2
	participants := participantsByID(1, 2)
	matches := []models.Match{
		{P1ID: &one, P2ID: &two, Status: models.MatchStatusScheduled},
		{P1ID: &one, P2ID: &two, Status: models.MatchStatusCancelled},
		// Bye: completed with a winner but only one slot filled.
		{P1ID: &one, WinnerID: &one, Status: models.MatchStatusCompleted},
	}

	rows := ComputeStandings(participants, matches, 2)
	for _, row := range rows {
		assert.Zero(t, row.Played)
		assert.Zero(t, row.Points)
	}
}

func TestComputeStandings_IgnoresForeignParticipants(t *testing.T) {
	// A match referencing someone outside the roster must not count; this
	// covers group filtering where the caller passes a subset.
	participants := participantsByID(1, 2)
	matches := []models.Match{
		completedMatch(1, 99, 1, models.SetScore{P1Games: 6, P2Games: 1}, models.SetScore{P1Games: 6, P2Games: 2}),
	}

	rows := ComputeStandings(participants, matches, 2)
	assert.Zero(t, rows[0].Played)
	assert.Zero(t, rows[1].Played)
}

func TestComputeStandings_ChampionshipPointsPerWin(t *testing.T) {
	participants := participantsByID(1, 2)
	matches := []models.Match{
		completedMatch(1, 2, 1, models.SetScore{P1Games: 6, P2Games: 4}, models.SetScore{P1Games: 6, P2Games: 4}),
	}

	rows := ComputeStandings(participants, matches, 3)
	assert.Equal(t, 3, rows[0].Points)
	assert.Equal(t, 0, rows[1].Points)
}
