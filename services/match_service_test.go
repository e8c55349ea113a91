package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/Giovo8/gst-tennis-academy-sub005/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type matchFixture struct {
	svc            MatchService
	tournamentRepo *fakeTournamentRepo
	matchRepo      *fakeMatchRepo
}

func newMatchFixture(t *testing.T) *matchFixture {
	f := &matchFixture{
		tournamentRepo: newFakeTournamentRepo(),
		matchRepo:      newFakeMatchRepo(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewMatchService(newStubDB(t), f.matchRepo, f.tournamentRepo, logger)
	return f
}

// addKnockout seeds a best-of-3 knockout tournament with two semifinals
// (participants 1v2 and 3v4) feeding an empty final. Returns the
// tournament ID and the three match IDs in bracket order.
func (f *matchFixture) addKnockout(t *testing.T) (int, []int) {
	t.Helper()
	ctx := context.Background()

	tour := models.Tournament{
		Name:        "Eliminazione",
		Type:        models.TypeEliminazioneDiretta,
		Phase:       models.PhaseKnockout,
		MatchFormat: models.BestOfThree,
	}
	require.NoError(t, f.tournamentRepo.Create(ctx, &tour))

	ids := make([]int, 0, 3)
	p1, p2, p3, p4 := 1, 2, 3, 4
	for _, m := range []models.Match{
		{TournamentID: tour.ID, Phase: models.PhaseKnockout, Round: 1, RoundLabel: "Semifinali", MatchNumber: 1, P1ID: &p1, P2ID: &p2, Status: models.MatchStatusScheduled},
		{TournamentID: tour.ID, Phase: models.PhaseKnockout, Round: 1, RoundLabel: "Semifinali", MatchNumber: 2, P1ID: &p3, P2ID: &p4, Status: models.MatchStatusScheduled},
		{TournamentID: tour.ID, Phase: models.PhaseKnockout, Round: 2, RoundLabel: "Finale", MatchNumber: 3, Status: models.MatchStatusScheduled},
	} {
		match := m
		require.NoError(t, f.matchRepo.Create(ctx, nil, &match))
		ids = append(ids, match.ID)
	}
	return tour.ID, ids
}

func bestOfThreeWin() []models.SetScore {
	return []models.SetScore{{P1Games: 6, P2Games: 3}, {P1Games: 6, P2Games: 4}}
}

func TestRecordResult_MatchNotFound(t *testing.T) {
	f := newMatchFixture(t)
	_, err := f.svc.RecordResult(context.Background(), 42, RecordResultInput{WinnerID: 1, Sets: bestOfThreeWin()})
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestRecordResult_StateChecks(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()
	_, ids := f.addKnockout(t)

	// Final has empty slots.
	_, err := f.svc.RecordResult(ctx, ids[2], RecordResultInput{WinnerID: 1, Sets: bestOfThreeWin()})
	assert.ErrorIs(t, err, ErrMatchNotReady)

	// Winner must be one of the two participants.
	_, err = f.svc.RecordResult(ctx, ids[0], RecordResultInput{WinnerID: 99, Sets: bestOfThreeWin()})
	assert.ErrorIs(t, err, ErrInvalidWinner)

	// A completed match cannot be re-recorded.
	_, err = f.svc.RecordResult(ctx, ids[0], RecordResultInput{WinnerID: 1, Sets: bestOfThreeWin()})
	require.NoError(t, err)
	_, err = f.svc.RecordResult(ctx, ids[0], RecordResultInput{WinnerID: 2, Sets: bestOfThreeWin()})
	assert.ErrorIs(t, err, ErrMatchAlreadyCompleted)

	// Nor a cancelled one.
	_, err = f.svc.CancelMatch(ctx, ids[1])
	require.NoError(t, err)
	_, err = f.svc.RecordResult(ctx, ids[1], RecordResultInput{WinnerID: 3, Sets: bestOfThreeWin()})
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestRecordResult_AdvancesWinnerAndCompletesTournament(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()
	tournamentID, ids := f.addKnockout(t)

	match, err := f.svc.RecordResult(ctx, ids[0], RecordResultInput{WinnerID: 2, Sets: []models.SetScore{
		{P1Games: 3, P2Games: 6}, {P1Games: 4, P2Games: 6},
	}})
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCompleted, match.Status)
	require.NotNil(t, match.WinnerID)
	assert.Equal(t, 2, *match.WinnerID)

	// Winner lands in slot 1 of the final.
	final, err := f.matchRepo.GetByID(ctx, ids[2])
	require.NoError(t, err)
	require.NotNil(t, final.P1ID)
	assert.Equal(t, 2, *final.P1ID)
	assert.Nil(t, final.P2ID)

	// Tournament still running: the other semifinal and the final remain.
	tour, err := f.tournamentRepo.GetByID(ctx, tournamentID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseKnockout, tour.Phase)

	_, err = f.svc.RecordResult(ctx, ids[1], RecordResultInput{WinnerID: 3, Sets: bestOfThreeWin()})
	require.NoError(t, err)

	final, err = f.matchRepo.GetByID(ctx, ids[2])
	require.NoError(t, err)
	require.NotNil(t, final.P2ID)
	assert.Equal(t, 3, *final.P2ID)

	// Deciding the final completes the tournament.
	_, err = f.svc.RecordResult(ctx, ids[2], RecordResultInput{WinnerID: 2, Sets: bestOfThreeWin()})
	require.NoError(t, err)

	tour, err = f.tournamentRepo.GetByID(ctx, tournamentID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseCompleted, tour.Phase)
}

func TestRecordResult_OddRoundResolvesByeParent(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()

	tour := models.Tournament{
		Name:        "Girone",
		Type:        models.TypeGironeEliminazione,
		Phase:       models.PhaseKnockout,
		MatchFormat: models.BestOfThree,
	}
	require.NoError(t, f.tournamentRepo.Create(ctx, &tour))

	// Three first-round matches feed two second-round slots and a final;
	// the third winner has no second-round opponent.
	p := []int{1, 2, 3, 4, 5, 6}
	ids := make([]int, 0, 6)
	for _, m := range []models.Match{
		{TournamentID: tour.ID, Phase: models.PhaseKnockout, Round: 1, RoundLabel: "round_of_6", MatchNumber: 1, P1ID: &p[0], P2ID: &p[1], Status: models.MatchStatusScheduled},
		{TournamentID: tour.ID, Phase: models.PhaseKnockout, Round: 1, RoundLabel: "round_of_6", MatchNumber: 2, P1ID: &p[2], P2ID: &p[3], Status: models.MatchStatusScheduled},
		{TournamentID: tour.ID, Phase: models.PhaseKnockout, Round: 1, RoundLabel: "round_of_6", MatchNumber: 3, P1ID: &p[4], P2ID: &p[5], Status: models.MatchStatusScheduled},
		{TournamentID: tour.ID, Phase: models.PhaseKnockout, Round: 2, RoundLabel: "Semifinali", MatchNumber: 4, Status: models.MatchStatusScheduled},
		{TournamentID: tour.ID, Phase: models.PhaseKnockout, Round: 2, RoundLabel: "Semifinali", MatchNumber: 5, Status: models.MatchStatusScheduled},
		{TournamentID: tour.ID, Phase: models.PhaseKnockout, Round: 3, RoundLabel: "Finale", MatchNumber: 6, Status: models.MatchStatusScheduled},
	} {
		match := m
		require.NoError(t, f.matchRepo.Create(ctx, nil, &match))
		ids = append(ids, match.ID)
	}

	_, err := f.svc.RecordResult(ctx, ids[2], RecordResultInput{WinnerID: 5, Sets: bestOfThreeWin()})
	require.NoError(t, err)

	// The second semifinal completes as a bye and its winner waits in the
	// final.
	semi2, err := f.matchRepo.GetByID(ctx, ids[4])
	require.NoError(t, err)
	assert.True(t, semi2.IsBye())
	require.NotNil(t, semi2.WinnerID)
	assert.Equal(t, 5, *semi2.WinnerID)

	final, err := f.matchRepo.GetByID(ctx, ids[5])
	require.NoError(t, err)
	require.NotNil(t, final.P2ID)
	assert.Equal(t, 5, *final.P2ID)
	assert.Nil(t, final.P1ID)

	// Four matches remain playable, so the tournament keeps running.
	tourAfter, err := f.tournamentRepo.GetByID(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseKnockout, tourAfter.Phase)
}

func TestCancelMatch(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()
	_, ids := f.addKnockout(t)

	match, err := f.svc.CancelMatch(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCancelled, match.Status)

	// Only scheduled matches can be cancelled.
	_, err = f.svc.CancelMatch(ctx, ids[0])
	assert.ErrorIs(t, err, ErrMatchAlreadyCompleted)
}

func TestValidateSets(t *testing.T) {
	p1, p2 := 1, 2
	match := &models.Match{P1ID: &p1, P2ID: &p2}

	// Straight-sets win.
	err := validateSets(match, models.BestOfThree, 1, []models.SetScore{
		{P1Games: 6, P2Games: 4}, {P1Games: 7, P2Games: 5},
	})
	assert.NoError(t, err)

	// Three-setter.
	err = validateSets(match, models.BestOfThree, 2, []models.SetScore{
		{P1Games: 6, P2Games: 4}, {P1Games: 3, P2Games: 6}, {P1Games: 5, P2Games: 7},
	})
	assert.NoError(t, err)

	// Too few sets for the declared winner.
	err = validateSets(match, models.BestOfThree, 1, []models.SetScore{
		{P1Games: 6, P2Games: 4},
	})
	assert.ErrorIs(t, err, ErrInvalidMatchScore)

	// Too many sets for the format.
	err = validateSets(match, models.BestOfThree, 1, []models.SetScore{
		{P1Games: 6, P2Games: 4}, {P1Games: 6, P2Games: 4}, {P1Games: 6, P2Games: 4}, {P1Games: 6, P2Games: 4},
	})
	assert.ErrorIs(t, err, ErrInvalidMatchScore)

	// Declared winner lost the recorded sets.
	err = validateSets(match, models.BestOfThree, 1, []models.SetScore{
		{P1Games: 4, P2Games: 6}, {P1Games: 4, P2Games: 6},
	})
	assert.ErrorIs(t, err, ErrInvalidMatchScore)

	// Drawn set is never valid.
	err = validateSets(match, models.BestOfThree, 1, []models.SetScore{
		{P1Games: 6, P2Games: 6}, {P1Games: 6, P2Games: 4},
	})
	assert.ErrorIs(t, err, ErrInvalidMatchScore)

	// Negative games rejected.
	err = validateSets(match, models.BestOfThree, 1, []models.SetScore{
		{P1Games: -1, P2Games: 6}, {P1Games: 6, P2Games: 4},
	})
	assert.ErrorIs(t, err, ErrInvalidMatchScore)

	// Best of five needs three winning sets.
	err = validateSets(match, models.BestOfFive, 1, []models.SetScore{
		{P1Games: 6, P2Games: 4}, {P1Games: 6, P2Games: 4},
	})
	assert.ErrorIs(t, err, ErrInvalidMatchScore)
	err = validateSets(match, models.BestOfFive, 1, []models.SetScore{
		{P1Games: 6, P2Games: 4}, {P1Games: 6, P2Games: 4}, {P1Games: 6, P2Games: 4},
	})
	assert.NoError(t, err)
}

func TestFindParentMatch(t *testing.T) {
	matches := make([]*models.Match, 0, 7)
	for i := 0; i < 4; i++ {
		matches = append(matches, &models.Match{Round: 1, MatchNumber: i + 1})
	}
	matches = append(matches,
		&models.Match{Round: 2, MatchNumber: 5},
		&models.Match{Round: 2, MatchNumber: 6},
		&models.Match{Round: 3, MatchNumber: 7},
	)

	parent, slot := findParentMatch(matches, matches[0])
	require.NotNil(t, parent)
	assert.Equal(t, 5, parent.MatchNumber)
	assert.Equal(t, 1, slot)

	parent, slot = findParentMatch(matches, matches[3])
	require.NotNil(t, parent)
	assert.Equal(t, 6, parent.MatchNumber)
	assert.Equal(t, 2, slot)

	parent, slot = findParentMatch(matches, matches[4])
	require.NotNil(t, parent)
	assert.Equal(t, 7, parent.MatchNumber)
	assert.Equal(t, 1, slot)

	// The final has no parent.
	parent, _ = findParentMatch(matches, matches[6])
	assert.Nil(t, parent)
}
