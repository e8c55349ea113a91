package brackets

import (
	"fmt"

	"github.com/Giovo8/gst-tennis-academy-sub005/models"
)

// RoundName returns the human label for a knockout round given how many
// rounds remain including the final.
func RoundName(remaining int) string {
	switch remaining {
	case 1:
		return "Finale"
	case 2:
		return "Semifinali"
	case 3:
		return "Quarti di Finale"
	case 4:
		return "Ottavi di Finale"
	case 5:
		return "Sedicesimi di Finale"
	}
	return fmt.Sprintf("Round %d", remaining)
}

// NextPowerOfTwo returns the smallest power of two >= n (n >= 1).
func NextPowerOfTwo(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}

// seedOrder lays out seeds 1..size so that the two top seeds cannot meet
// before the final: consecutive entries form the round-1 pairs
// (1 vs size, 2 vs size-1, ... folded recursively).
func seedOrder(size int) []int {
	order := []int{1}
	for len(order) < size {
		next := make([]int, 0, len(order)*2)
		opposite := len(order)*2 + 1
		for _, s := range order {
			next = append(next, s, opposite-s)
		}
		order = next
	}
	return order
}

// GenerateEliminationBracket builds a full single-elimination match tree
// for the given seeded participants. The list must hold at least two
// participants whose seeds form the dense range 1..len(participants); a
// gap would shift bracket positions and orphan the out-of-range seed.
//
// The bracket pads to the next power of two; a round-1 pair with a missing
// opponent is emitted as a completed bye with the present participant as
// winner and no games recorded. Rounds after the first are created with
// both slots empty and status scheduled; slots are filled externally as
// earlier matches complete. Match numbers run sequentially starting at
// firstMatchNumber, so the parent of position p in a round is position
// ceil(p/2) in the next one.
func GenerateEliminationBracket(participants []models.Participant, firstMatchNumber int) ([]models.Match, error) {
	n := len(participants)
	if n < 2 {
		return nil, ErrInsufficientParticipants
	}

	bySeed := make(map[int]*models.Participant, n)
	for i := range participants {
		p := &participants[i]
		// n distinct seeds within 1..n means the range is exactly 1..n.
		if p.Seed == nil || *p.Seed <= 0 || *p.Seed > n {
			return nil, ErrInvalidSeeding
		}
		if _, dup := bySeed[*p.Seed]; dup {
			return nil, ErrInvalidSeeding
		}
		bySeed[*p.Seed] = p
	}

	bracketSize := NextPowerOfTwo(n)
	numRounds := 0
	for s := bracketSize; s > 1; s >>= 1 {
		numRounds++
	}

	order := seedOrder(bracketSize)
	matchNumber := firstMatchNumber
	matches := make([]models.Match, 0, bracketSize-1)

	for i := 0; i < bracketSize; i += 2 {
		p1 := bySeed[order[i]]
		p2 := bySeed[order[i+1]]

		// The lower seed of every pair is at most bracketSize/2 < n+1, so
		// at least one slot is always occupied.
		m := models.Match{
			Round:       1,
			RoundLabel:  RoundName(numRounds),
			MatchNumber: matchNumber,
			Status:      models.MatchStatusScheduled,
		}
		matchNumber++

		switch {
		case p1 != nil && p2 != nil:
			m.P1ID = &p1.ID
			m.P2ID = &p2.ID
		case p1 != nil:
			// Bye: auto-win with no games played.
			m.P1ID = &p1.ID
			m.Status = models.MatchStatusCompleted
			m.WinnerID = &p1.ID
		default:
			m.P1ID = &p2.ID
			m.Status = models.MatchStatusCompleted
			m.WinnerID = &p2.ID
		}
		matches = append(matches, m)
	}

	for r := 2; r <= numRounds; r++ {
		slots := bracketSize >> uint(r)
		for p := 0; p < slots; p++ {
			matches = append(matches, models.Match{
				Round:       r,
				RoundLabel:  RoundName(numRounds - r + 1),
				MatchNumber: matchNumber,
				Status:      models.MatchStatusScheduled,
			})
			matchNumber++
		}
	}

	return matches, nil
}

// ParentSlot locates the match the winner of (round, position) advances to
// within a bracket of the given size: the parent's position in the next
// round and the slot (1 or 2) the winner occupies there. Positions are
// 1-based. The final has no parent; ok is false.
func ParentSlot(bracketSize, round, position int) (parentPosition, slot int, ok bool) {
	numRounds := 0
	for s := bracketSize; s > 1; s >>= 1 {
		numRounds++
	}
	if round >= numRounds {
		return 0, 0, false
	}
	parentPosition = (position + 1) / 2
	slot = 2 - position%2
	return parentPosition, slot, true
}
