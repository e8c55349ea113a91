package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/Giovo8/gst-tennis-academy-sub005/brackets"
	"github.com/Giovo8/gst-tennis-academy-sub005/models"
	"github.com/Giovo8/gst-tennis-academy-sub005/repositories"
	"github.com/Giovo8/gst-tennis-academy-sub005/storage"
	"golang.org/x/sync/errgroup"
)

type CreateTournamentInput struct {
	Name             string                `json:"name"`
	Description      *string               `json:"description"`
	Type             models.TournamentType `json:"type"`
	NumGroups        int                   `json:"num_groups"`
	AdvancementCount int                   `json:"advancement_count"`
	PointsPerWin     int                   `json:"points_per_win"`
	MatchFormat      models.MatchFormat    `json:"match_format"`
	StartDate        time.Time             `json:"start_date"`
}

// TournamentService owns tournament CRUD and the stage advancement state
// machine. Phase transitions generate matches through the pure generators
// in the brackets package and persist them atomically: the existence check
// and the bulk insert run in one transaction, backed by the unique
// (tournament_id, match_number) constraint, so concurrent generation
// requests produce exactly one winner.
type TournamentService interface {
	CreateTournament(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error)
	GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error)
	DeleteTournament(ctx context.Context, id int, callerID int, callerRole models.UserRole) error
	UploadLogo(ctx context.Context, id int, contentType string, reader io.Reader) (*models.Tournament, error)

	// StartTournament moves a tournament out of registration into its
	// format's first playing phase and generates that phase's matches.
	StartTournament(ctx context.Context, id int) (*models.Tournament, error)

	// AdvanceToKnockout runs the group-to-knockout transition for the
	// girone_eliminazione format.
	AdvanceToKnockout(ctx context.Context, id int) (*models.Tournament, error)
}

type tournamentService struct {
	db              *sql.DB
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	groupRepo       repositories.GroupRepository
	matchRepo       repositories.MatchRepository
	uploader        storage.FileUploader
	logger          *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	groupRepo repositories.GroupRepository,
	matchRepo repositories.MatchRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:              db,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		groupRepo:       groupRepo,
		matchRepo:       matchRepo,
		uploader:        uploader,
		logger:          logger,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, ErrTournamentNameRequired
	}
	if !input.Type.Valid() {
		return nil, ErrTournamentInvalidType
	}

	t := &models.Tournament{
		Name:             input.Name,
		Description:      input.Description,
		OrganizerID:      organizerID,
		Type:             input.Type,
		Phase:            models.PhaseRegistration,
		NumGroups:        input.NumGroups,
		AdvancementCount: input.AdvancementCount,
		PointsPerWin:     input.PointsPerWin,
		MatchFormat:      input.MatchFormat,
		StartDate:        input.StartDate,
	}

	if t.MatchFormat == "" {
		t.MatchFormat = models.BestOfThree
	} else if !t.MatchFormat.Valid() {
		return nil, ErrTournamentInvalidConfig
	}
	if t.PointsPerWin == 0 {
		t.PointsPerWin = models.DefaultPointsPerWin(t.Type)
	} else if t.PointsPerWin < 0 {
		return nil, ErrTournamentInvalidConfig
	}

	if t.Type == models.TypeGironeEliminazione {
		if t.NumGroups == 0 {
			t.NumGroups = 2
		}
		if t.AdvancementCount == 0 {
			t.AdvancementCount = 2
		}
		// The pooled knockout pairing works on pool pairs (1st vs 2nd,
		// 3rd vs 4th, ...), so the advancement count must be even.
		if t.NumGroups < 2 || t.AdvancementCount < 2 || t.AdvancementCount%2 != 0 {
			return nil, ErrTournamentInvalidConfig
		}
	} else {
		t.NumGroups = 0
		t.AdvancementCount = 0
	}

	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return t, nil
}

// GetTournamentByID loads the tournament together with its participants,
// groups and matches, fetched in parallel.
func (s *tournamentService) GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		participants, err := s.participantRepo.ListByTournament(gCtx, id)
		if err != nil {
			return fmt.Errorf("failed to load participants: %w", err)
		}
		t.Participants = dereferenceParticipants(participants)
		return nil
	})
	g.Go(func() error {
		groups, err := s.groupRepo.ListByTournament(gCtx, id)
		if err != nil {
			return fmt.Errorf("failed to load groups: %w", err)
		}
		t.Groups = make([]models.Group, len(groups))
		for i, grp := range groups {
			t.Groups[i] = *grp
		}
		return nil
	})
	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gCtx, id, repositories.ListMatchesFilter{})
		if err != nil {
			return fmt.Errorf("failed to load matches: %w", err)
		}
		t.Matches = make([]models.Match, len(matches))
		for i, m := range matches {
			t.Matches[i] = *m
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.populateLogoURL(t)
	return t, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, t := range tournaments {
		s.populateLogoURL(t)
	}
	return tournaments, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, id int, callerID int, callerRole models.UserRole) error {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}
	if callerRole != models.RoleAdmin && t.OrganizerID != callerID {
		return ErrForbiddenOperation
	}
	return s.tournamentRepo.Delete(ctx, id)
}

func (s *tournamentService) UploadLogo(ctx context.Context, id int, contentType string, reader io.Reader) (*models.Tournament, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("%w: logo storage is not configured", ErrValidationFailed)
	}
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	key := fmt.Sprintf("tournaments/%d/logo", id)
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload tournament logo: %w", err)
	}
	if err := s.tournamentRepo.UpdateLogoKey(ctx, id, &result.Key); err != nil {
		return nil, err
	}
	t.LogoKey = &result.Key
	s.populateLogoURL(t)
	return t, nil
}

func (s *tournamentService) StartTournament(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if t.Phase != models.PhaseRegistration {
		return nil, ErrWrongPhase
	}

	registered, err := s.participantRepo.ListByTournament(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for tournament %d: %w", id, err)
	}

	targetPhase := models.InitialPhase(t.Type)

	err = s.inTransaction(ctx, func(tx *sql.Tx) error {
		count, err := s.matchRepo.CountByPhase(ctx, tx, id, targetPhase)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrMatchesAlreadyExist
		}

		participants, err := s.assignMissingSeeds(ctx, tx, registered)
		if err != nil {
			return err
		}

		switch t.Type {
		case models.TypeEliminazioneDiretta:
			err = s.generateKnockout(ctx, tx, t, participants)
		case models.TypeGironeEliminazione:
			err = s.generateGroupStage(ctx, tx, t, participants)
		case models.TypeCampionato:
			err = s.generateChampionship(ctx, tx, t, participants)
		default:
			err = ErrTournamentInvalidType
		}
		if err != nil {
			return err
		}

		return s.tournamentRepo.UpdatePhase(ctx, tx, id, targetPhase)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNumberConflict) {
			return nil, ErrMatchesAlreadyExist
		}
		return nil, err
	}

	s.logger.Info("tournament started",
		slog.Int("tournament_id", id),
		slog.String("type", string(t.Type)),
		slog.String("phase", string(targetPhase)))

	return s.GetTournamentByID(ctx, id)
}

// assignMissingSeeds produces the dense seeding 1..n the generators work
// on. Explicit seeds are compacted to consecutive ranks preserving their
// relative order (a field seeded {2,5} becomes {1,2}); every unseeded
// participant then takes the next free rank in registration order.
// Compaction walks ranks upward, so an update never targets a seed still
// held by a later participant.
func (s *tournamentService) assignMissingSeeds(ctx context.Context, tx *sql.Tx, registered []*models.Participant) ([]models.Participant, error) {
	participants := make([]models.Participant, len(registered))
	for i, p := range registered {
		participants[i] = *p
	}

	seeded := make([]int, 0, len(participants))
	for i := range participants {
		if participants[i].Seed != nil {
			seeded = append(seeded, i)
		}
	}
	sort.SliceStable(seeded, func(a, b int) bool {
		return *participants[seeded[a]].Seed < *participants[seeded[b]].Seed
	})

	next := 0
	for _, idx := range seeded {
		next++
		if *participants[idx].Seed == next {
			continue
		}
		seed := next
		if err := s.participantRepo.UpdateSeed(ctx, tx, participants[idx].ID, seed); err != nil {
			return nil, fmt.Errorf("failed to reseed participant %d to %d: %w", participants[idx].ID, seed, err)
		}
		participants[idx].Seed = &seed
	}
	for i := range participants {
		if participants[i].Seed != nil {
			continue
		}
		next++
		seed := next
		if err := s.participantRepo.UpdateSeed(ctx, tx, participants[i].ID, seed); err != nil {
			return nil, fmt.Errorf("failed to assign seed %d to participant %d: %w", seed, participants[i].ID, err)
		}
		participants[i].Seed = &seed
	}

	sort.SliceStable(participants, func(i, j int) bool {
		return *participants[i].Seed < *participants[j].Seed
	})
	return participants, nil
}

func (s *tournamentService) generateKnockout(ctx context.Context, tx *sql.Tx, t *models.Tournament, participants []models.Participant) error {
	generated, err := brackets.GenerateEliminationBracket(participants, 1)
	if err != nil {
		return err
	}

	inserted := make([]*models.Match, 0, len(generated))
	for i := range generated {
		m := generated[i]
		m.TournamentID = t.ID
		m.Phase = models.PhaseKnockout
		if err := s.matchRepo.Create(ctx, tx, &m); err != nil {
			return err
		}
		inserted = append(inserted, &m)
	}

	return s.propagateByeWinners(ctx, tx, inserted)
}

// propagateByeWinners fills parent slots for round-1 byes. The generator
// leaves later rounds empty; a bye is already completed, so the normal
// on-result propagation never fires for it.
func (s *tournamentService) propagateByeWinners(ctx context.Context, tx *sql.Tx, matches []*models.Match) error {
	for _, m := range matches {
		if m.Round != 1 || !m.IsBye() {
			continue
		}
		parent, slot := findParentMatch(matches, m)
		if parent == nil {
			continue
		}
		if err := s.matchRepo.UpdateSlot(ctx, tx, parent.ID, slot, *m.WinnerID); err != nil {
			return err
		}
		if slot == 1 {
			parent.P1ID = m.WinnerID
		} else {
			parent.P2ID = m.WinnerID
		}
	}
	return nil
}

func (s *tournamentService) generateGroupStage(ctx context.Context, tx *sql.Tx, t *models.Tournament, participants []models.Participant) error {
	drafts, err := brackets.AssignGroups(participants, t.NumGroups)
	if err != nil {
		return err
	}

	matchNumber := 1
	for _, draft := range drafts {
		group := &models.Group{
			TournamentID: t.ID,
			Name:         draft.Name,
			Position:     draft.Position,
		}
		if err := s.groupRepo.Create(ctx, tx, group); err != nil {
			return err
		}
		for _, p := range draft.Participants {
			if err := s.participantRepo.UpdateGroup(ctx, tx, p.ID, group.ID); err != nil {
				return err
			}
		}

		for roundIdx, round := range draft.Rounds {
			for _, pair := range round {
				p1, p2 := pair.P1, pair.P2
				m := &models.Match{
					TournamentID: t.ID,
					Phase:        models.PhaseGroupStage,
					GroupID:      &group.ID,
					Round:        roundIdx + 1,
					RoundLabel:   fmt.Sprintf("Girone %s - Giornata %d", draft.Name, roundIdx+1),
					MatchNumber:  matchNumber,
					P1ID:         &p1,
					P2ID:         &p2,
					Status:       models.MatchStatusScheduled,
				}
				if err := s.matchRepo.Create(ctx, tx, m); err != nil {
					return err
				}
				matchNumber++
			}
		}
	}
	return nil
}

func (s *tournamentService) generateChampionship(ctx context.Context, tx *sql.Tx, t *models.Tournament, participants []models.Participant) error {
	ids := make([]int, len(participants))
	for i, p := range participants {
		ids[i] = p.ID
	}
	rounds, err := brackets.RoundRobinRounds(ids)
	if err != nil {
		return err
	}

	matchNumber := 1
	for roundIdx, round := range rounds {
		for _, pair := range round {
			p1, p2 := pair.P1, pair.P2
			m := &models.Match{
				TournamentID: t.ID,
				Phase:        models.PhaseInProgress,
				Round:        roundIdx + 1,
				RoundLabel:   fmt.Sprintf("Giornata %d", roundIdx+1),
				MatchNumber:  matchNumber,
				P1ID:         &p1,
				P2ID:         &p2,
				Status:       models.MatchStatusScheduled,
			}
			if err := s.matchRepo.Create(ctx, tx, m); err != nil {
				return err
			}
			matchNumber++
		}
	}
	return nil
}

func (s *tournamentService) AdvanceToKnockout(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if t.Type != models.TypeGironeEliminazione || t.Phase != models.PhaseGroupStage {
		return nil, ErrWrongPhase
	}

	groups, err := s.groupRepo.ListByTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	participants, err := s.participantRepo.ListByTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	groupPhase := models.PhaseGroupStage
	groupMatches, err := s.matchRepo.ListByTournament(ctx, id, repositories.ListMatchesFilter{Phase: &groupPhase})
	if err != nil {
		return nil, err
	}
	for _, m := range groupMatches {
		if m.Status == models.MatchStatusScheduled {
			return nil, ErrGroupStageNotComplete
		}
	}

	pools, qualifiedCount := s.qualifierPools(t, groups, participants, groupMatches)
	if qualifiedCount < 2 {
		return nil, ErrNotEnoughQualifiers
	}

	err = s.inTransaction(ctx, func(tx *sql.Tx) error {
		count, err := s.matchRepo.CountByPhase(ctx, tx, id, models.PhaseKnockout)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrMatchesAlreadyExist
		}

		nextNumber, err := s.matchRepo.MaxMatchNumber(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.insertKnockoutFromPools(ctx, tx, t, pools, qualifiedCount, nextNumber+1); err != nil {
			return err
		}
		return s.tournamentRepo.UpdatePhase(ctx, tx, id, models.PhaseKnockout)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNumberConflict) {
			return nil, ErrMatchesAlreadyExist
		}
		return nil, err
	}

	s.logger.Info("tournament advanced to knockout",
		slog.Int("tournament_id", id),
		slog.Int("qualifiers", qualifiedCount))

	return s.GetTournamentByID(ctx, id)
}

// qualifierPools computes per-group standings and collects the top
// advancement_count participants of every group into rank pools:
// pools[0] holds the group winners in group order, pools[1] the
// runners-up, and so on.
func (s *tournamentService) qualifierPools(
	t *models.Tournament,
	groups []*models.Group,
	participants []*models.Participant,
	groupMatches []*models.Match,
) ([][]int, int) {
	pools := make([][]int, t.AdvancementCount)
	qualified := 0

	for _, group := range groups {
		var members []models.Participant
		for _, p := range participants {
			if p.GroupID != nil && *p.GroupID == group.ID {
				members = append(members, *p)
			}
		}
		var matches []models.Match
		for _, m := range groupMatches {
			if m.GroupID != nil && *m.GroupID == group.ID {
				matches = append(matches, *m)
			}
		}

		rows := brackets.ComputeStandings(members, matches, t.PointsPerWin)
		for rank := 0; rank < t.AdvancementCount && rank < len(rows); rank++ {
			pools[rank] = append(pools[rank], rows[rank].ParticipantID)
			qualified++
		}
	}
	return pools, qualified
}

// insertKnockoutFromPools pairs each group's rank-N qualifier against a
// rank-N+1 qualifier from a different group by rotating the lower pool by
// one. With very small or uneven group counts the rotation cannot always
// avoid a same-group rematch; the heuristic is kept as-is.
func (s *tournamentService) insertKnockoutFromPools(ctx context.Context, tx *sql.Tx, t *models.Tournament, pools [][]int, qualifiedCount, firstNumber int) error {
	firstRoundLabel := fmt.Sprintf("round_of_%d", qualifiedCount)
	matchNumber := firstNumber
	firstRoundCount := 0

	for poolIdx := 0; poolIdx+1 < len(pools); poolIdx += 2 {
		upper := pools[poolIdx]
		lower := pools[poolIdx+1]
		for i := range upper {
			if len(lower) == 0 {
				break
			}
			p1 := upper[i]
			p2 := lower[(i+1)%len(lower)]
			m := &models.Match{
				TournamentID: t.ID,
				Phase:        models.PhaseKnockout,
				Round:        1,
				RoundLabel:   firstRoundLabel,
				MatchNumber:  matchNumber,
				P1ID:         &p1,
				P2ID:         &p2,
				Status:       models.MatchStatusScheduled,
			}
			if err := s.matchRepo.Create(ctx, tx, m); err != nil {
				return err
			}
			matchNumber++
			firstRoundCount++
		}
	}

	// Pre-create the later empty rounds by ceil-halving the match count
	// down to a final. An odd round leaves the last match of the next
	// round with a single feeder; result recording resolves such matches
	// as byes.
	if firstRoundCount > 1 {
		var sizes []int
		for size := firstRoundCount; size > 1; {
			size = (size + 1) / 2
			sizes = append(sizes, size)
		}
		totalRounds := len(sizes) + 1
		for i, slots := range sizes {
			round := i + 2
			for p := 0; p < slots; p++ {
				m := &models.Match{
					TournamentID: t.ID,
					Phase:        models.PhaseKnockout,
					Round:        round,
					RoundLabel:   brackets.RoundName(totalRounds - round + 1),
					MatchNumber:  matchNumber,
					Status:       models.MatchStatusScheduled,
				}
				if err := s.matchRepo.Create(ctx, tx, m); err != nil {
					return err
				}
				matchNumber++
			}
		}
	}
	return nil
}

// inTransaction runs fn inside a transaction, committing on nil and
// rolling back on error or panic.
func (s *tournamentService) inTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *tournamentService) populateLogoURL(t *models.Tournament) {
	if t == nil || t.LogoKey == nil || *t.LogoKey == "" || s.uploader == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*t.LogoKey); url != "" {
		t.LogoURL = &url
	}
}

// findParentMatch locates the next-round match the winner of m advances
// to, and the slot it occupies there. Matches must be a full phase listing
// ordered by match number.
func findParentMatch(matches []*models.Match, m *models.Match) (*models.Match, int) {
	position := 0
	for _, other := range matches {
		if other.Round == m.Round {
			position++
			if other.MatchNumber == m.MatchNumber {
				break
			}
		}
	}
	if position == 0 {
		return nil, 0
	}

	parentPosition := (position + 1) / 2
	slot := 2 - position%2

	seen := 0
	for _, other := range matches {
		if other.Round == m.Round+1 {
			seen++
			if seen == parentPosition {
				return other, slot
			}
		}
	}
	return nil, 0
}

func dereferenceParticipants(slice []*models.Participant) []models.Participant {
	result := make([]models.Participant, len(slice))
	for i, ptr := range slice {
		if ptr != nil {
			result[i] = *ptr
		}
	}
	return result
}
