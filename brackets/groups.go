package brackets

import (
	"github.com/Giovo8/gst-tennis-academy-sub005/models"
)

// groupLabels is the supported group naming scheme. Requests for more
// groups than labels are rejected with ErrTooManyGroups.
var groupLabels = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

// GroupDraft is one group produced by AssignGroups: its label, ordinal
// position, member participants and internal round-robin schedule.
type GroupDraft struct {
	Name         string
	Position     int
	Participants []models.Participant
	Rounds       [][]Pair
}

// AssignGroups partitions the participants into numGroups groups with a
// snake draft: members are taken in the given (seed) order and dealt to
// groups 0,1,...,g-1 then g-1,...,1,0 and so on, flipping direction at
// each boundary so aggregate strength stays balanced. Each group's
// internal schedule comes from RoundRobinRounds.
func AssignGroups(participants []models.Participant, numGroups int) ([]GroupDraft, error) {
	if numGroups < 2 {
		return nil, ErrInvalidGroupCount
	}
	if numGroups > len(groupLabels) {
		return nil, ErrTooManyGroups
	}
	if len(participants) < 4 {
		return nil, ErrInsufficientParticipants
	}

	members := make([][]models.Participant, numGroups)
	idx, dir := 0, 1
	for _, p := range participants {
		members[idx] = append(members[idx], p)
		next := idx + dir
		if next < 0 || next >= numGroups {
			dir = -dir // snake turn: same group takes the next pick too
		} else {
			idx = next
		}
	}

	drafts := make([]GroupDraft, 0, numGroups)
	for i, m := range members {
		if len(m) < 2 {
			return nil, ErrInsufficientParticipants
		}
		ids := make([]int, len(m))
		for j, p := range m {
			ids[j] = p.ID
		}
		rounds, err := RoundRobinRounds(ids)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, GroupDraft{
			Name:         groupLabels[i],
			Position:     i,
			Participants: m,
			Rounds:       rounds,
		})
	}
	return drafts, nil
}
