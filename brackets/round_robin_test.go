package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundRobinRounds_TooFewParticipants(t *testing.T) {
	_, err := RoundRobinRounds([]int{7})
	assert.ErrorIs(t, err, ErrInsufficientParticipants)

	_, err = RoundRobinRounds(nil)
	assert.ErrorIs(t, err, ErrInsufficientParticipants)
}

func TestRoundRobinRounds_EvenCount(t *testing.T) {
	ids := []int{10, 20, 30, 40}
	rounds, err := RoundRobinRounds(ids)
	require.NoError(t, err)

	// n-1 rounds of n/2 matches each.
	require.Len(t, rounds, 3)
	for _, round := range rounds {
		assert.Len(t, round, 2)
	}
	assertEveryPairMeetsOnce(t, ids, rounds)
	assertNoDoubleBooking(t, rounds)
}

func TestRoundRobinRounds_OddCountHasByes(t *testing.T) {
	ids := []int{1, 2, 3, 4, 5}
	rounds, err := RoundRobinRounds(ids)
	require.NoError(t, err)

	// Odd field: n rounds, each with one participant sitting out.
	require.Len(t, rounds, 5)
	total := 0
	for _, round := range rounds {
		assert.Len(t, round, 2)
		total += len(round)
	}
	assert.Equal(t, 10, total) // C(5,2)
	assertEveryPairMeetsOnce(t, ids, rounds)
	assertNoDoubleBooking(t, rounds)
}

func TestRoundRobinRounds_SevenParticipantsByesOnce(t *testing.T) {
	ids := []int{1, 2, 3, 4, 5, 6, 7}
	rounds, err := RoundRobinRounds(ids)
	require.NoError(t, err)
	require.Len(t, rounds, 7)

	total := 0
	byes := make(map[int]int)
	for _, round := range rounds {
		total += len(round)
		playing := make(map[int]bool)
		for _, pair := range round {
			playing[pair.P1] = true
			playing[pair.P2] = true
		}
		for _, id := range ids {
			if !playing[id] {
				byes[id]++
			}
		}
	}
	assert.Equal(t, 21, total) // C(7,2)
	for _, id := range ids {
		assert.Equal(t, 1, byes[id], "participant %d should sit out exactly one round", id)
	}
	assertEveryPairMeetsOnce(t, ids, rounds)
	assertNoDoubleBooking(t, rounds)
}

func TestRoundRobinRounds_TwoParticipants(t *testing.T) {
	rounds, err := RoundRobinRounds([]int{8, 9})
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	require.Len(t, rounds[0], 1)
	assert.Equal(t, Pair{P1: 8, P2: 9}, rounds[0][0])
}

// assertEveryPairMeetsOnce checks that the schedule covers each unordered
// pair exactly once.
func assertEveryPairMeetsOnce(t *testing.T, ids []int, rounds [][]Pair) {
	t.Helper()
	seen := make(map[[2]int]int)
	for _, round := range rounds {
		for _, pair := range round {
			key := [2]int{pair.P1, pair.P2}
			if key[0] > key[1] {
				key[0], key[1] = key[1], key[0]
			}
			seen[key]++
		}
	}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			key := [2]int{ids[i], ids[j]}
			if key[0] > key[1] {
				key[0], key[1] = key[1], key[0]
			}
			assert.Equal(t, 1, seen[key], "pair %v should meet exactly once", key)
		}
	}
}

// assertNoDoubleBooking checks that nobody plays twice in the same round.
func assertNoDoubleBooking(t *testing.T, rounds [][]Pair) {
	t.Helper()
	for r, round := range rounds {
		busy := make(map[int]bool)
		for _, pair := range round {
			assert.False(t, busy[pair.P1], "participant %d plays twice in round %d", pair.P1, r+1)
			assert.False(t, busy[pair.P2], "participant %d plays twice in round %d", pair.P2, r+1)
			busy[pair.P1] = true
			busy[pair.P2] = true
		}
	}
}
