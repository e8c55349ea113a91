package brackets

// Pair is one scheduled pairing between two participant IDs.
type Pair struct {
	P1 int
	P2 int
}

// RoundRobinRounds schedules a round robin over the given participant IDs
// using the circle method: participants sit around a circle, each round
// pairs opposite seats, and after every round all seats but the first
// rotate by one. An odd-sized list is padded with a synthetic bye seat;
// pairings against it are dropped, so every real pair meets exactly once
// and each participant sits out at most one round.
//
// The caller assigns round numbers and labels and persists the pairs.
func RoundRobinRounds(ids []int) ([][]Pair, error) {
	n := len(ids)
	if n < 2 {
		return nil, ErrInsufficientParticipants
	}

	padded := n
	if n%2 != 0 {
		padded = n + 1
	}

	// Seats hold indexes into ids; the pad index marks the bye seat.
	seats := make([]int, padded)
	for i := range seats {
		seats[i] = i
	}

	numRounds := padded - 1
	half := padded / 2

	rounds := make([][]Pair, 0, numRounds)
	for r := 0; r < numRounds; r++ {
		round := make([]Pair, 0, half)
		for i := 0; i < half; i++ {
			a := seats[i]
			b := seats[padded-1-i]
			if a >= n || b >= n {
				continue // bye seat, no match
			}
			round = append(round, Pair{P1: ids[a], P2: ids[b]})
		}
		rounds = append(rounds, round)

		// Rotate every seat except the first by one position.
		last := seats[padded-1]
		copy(seats[2:], seats[1:padded-1])
		seats[1] = last
	}

	return rounds, nil
}
