package brackets

import (
	"log/slog"
	"sort"

	"github.com/Giovo8/gst-tennis-academy-sub005/models"
)

// ComputeStandings builds the ranked table for a tournament or a single
// group from its completed matches. Only matches with status completed, a
// recorded winner and both participant slots set are counted; everything
// else (scheduled, cancelled, byes against an empty slot) is skipped.
//
// A match win grants pointsPerWin to the winner and nothing to the loser.
// Every set attributes its game counts to both sides; the side with more
// games takes the set. A set with equal game counts is a data-integrity
// problem in the recorded score: it is logged and counted for neither side.
//
// The ordering is total: points, then set differential, then game
// differential, then the original participant order as a stable fallback.
// Positions are assigned 1-based in sort order.
func ComputeStandings(participants []models.Participant, matches []models.Match, pointsPerWin int) []models.StandingRow {
	rows := make([]models.StandingRow, len(participants))
	index := make(map[int]*models.StandingRow, len(participants))
	for i := range participants {
		p := participants[i]
		rows[i] = models.StandingRow{
			ParticipantID: p.ID,
			GroupID:       p.GroupID,
			Participant:   &participants[i],
		}
		index[p.ID] = &rows[i]
	}

	for _, m := range matches {
		if m.Status != models.MatchStatusCompleted || m.WinnerID == nil {
			continue
		}
		if m.P1ID == nil || m.P2ID == nil {
			continue // bye, no game played
		}
		r1 := index[*m.P1ID]
		r2 := index[*m.P2ID]
		if r1 == nil || r2 == nil {
			continue // match references a participant outside the roster
		}
		if *m.WinnerID != *m.P1ID && *m.WinnerID != *m.P2ID {
			continue
		}

		for _, set := range m.Sets {
			r1.GamesWon += set.P1Games
			r1.GamesLost += set.P2Games
			r2.GamesWon += set.P2Games
			r2.GamesLost += set.P1Games

			switch {
			case set.P1Games > set.P2Games:
				r1.SetsWon++
				r2.SetsLost++
			case set.P2Games > set.P1Games:
				r2.SetsWon++
				r1.SetsLost++
			default:
				slog.Warn("recorded set has equal game counts, ignoring set result",
					slog.Int("match_id", m.ID),
					slog.Int("tournament_id", m.TournamentID))
			}
		}

		r1.Played++
		r2.Played++
		if *m.WinnerID == *m.P1ID {
			r1.Won++
			r2.Lost++
			r1.Points += pointsPerWin
		} else {
			r2.Won++
			r1.Lost++
			r2.Points += pointsPerWin
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		if rows[i].SetDiff() != rows[j].SetDiff() {
			return rows[i].SetDiff() > rows[j].SetDiff()
		}
		return rows[i].GameDiff() > rows[j].GameDiff()
	})

	for i := range rows {
		rows[i].Position = i + 1
	}
	return rows
}
