package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Giovo8/gst-tennis-academy-sub005/models"
	"github.com/Giovo8/gst-tennis-academy-sub005/repositories"
)

type RecordResultInput struct {
	WinnerID int               `json:"winner_id"`
	Sets     []models.SetScore `json:"sets"`
}

type MatchService interface {
	GetMatchByID(ctx context.Context, id int) (*models.Match, error)
	ListMatchesByTournament(ctx context.Context, tournamentID int, filter repositories.ListMatchesFilter) ([]*models.Match, error)

	// RecordResult validates the score against the tournament's match
	// format, stores it, pushes the winner into the next bracket slot and
	// completes the tournament when its last match is decided.
	RecordResult(ctx context.Context, matchID int, input RecordResultInput) (*models.Match, error)

	// CancelMatch marks a scheduled match as cancelled.
	CancelMatch(ctx context.Context, matchID int) (*models.Match, error)
}

type matchService struct {
	db             *sql.DB
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	logger         *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:             db,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		logger:         logger,
	}
}

func (s *matchService) GetMatchByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) ListMatchesByTournament(ctx context.Context, tournamentID int, filter repositories.ListMatchesFilter) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}

func (s *matchService) RecordResult(ctx context.Context, matchID int, input RecordResultInput) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if match.Status == models.MatchStatusCompleted {
		return nil, ErrMatchAlreadyCompleted
	}
	if match.Status == models.MatchStatusCancelled {
		return nil, ErrWrongPhase
	}
	if match.P1ID == nil || match.P2ID == nil {
		return nil, ErrMatchNotReady
	}
	if input.WinnerID != *match.P1ID && input.WinnerID != *match.P2ID {
		return nil, ErrInvalidWinner
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
	if err != nil {
		return nil, err
	}
	if err := validateSets(match, tournament.MatchFormat, input.WinnerID, input.Sets); err != nil {
		return nil, err
	}

	winnerID := input.WinnerID
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.matchRepo.UpdateResult(ctx, tx, matchID, input.Sets, models.MatchStatusCompleted, &winnerID); err != nil {
			return err
		}
		if match.Phase == models.PhaseKnockout {
			if err := s.advanceWinner(ctx, tx, match, winnerID); err != nil {
				return err
			}
		}
		return s.completeIfFinished(ctx, tx, tournament, matchID)
	})
	if err != nil {
		return nil, err
	}

	return s.matchRepo.GetByID(ctx, matchID)
}

func (s *matchService) CancelMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if match.Status != models.MatchStatusScheduled {
		return nil, ErrMatchAlreadyCompleted
	}
	if err := s.matchRepo.UpdateResult(ctx, s.db, matchID, match.Sets, models.MatchStatusCancelled, nil); err != nil {
		return nil, err
	}
	return s.matchRepo.GetByID(ctx, matchID)
}

// validateSets checks a best-of score: no drawn sets, each set credited to
// a side, the declared winner taking exactly the sets needed for the
// format and the loser fewer.
func validateSets(match *models.Match, format models.MatchFormat, winnerID int, sets []models.SetScore) error {
	setsToWin := format.SetsToWin()
	if len(sets) < setsToWin || len(sets) > 2*setsToWin-1 {
		return ErrInvalidMatchScore
	}

	winnerIsP1 := winnerID == *match.P1ID
	winnerSets, loserSets := 0, 0
	for _, set := range sets {
		if set.P1Games < 0 || set.P2Games < 0 || set.P1Games == set.P2Games {
			return ErrInvalidMatchScore
		}
		p1Won := set.P1Games > set.P2Games
		if p1Won == winnerIsP1 {
			winnerSets++
		} else {
			loserSets++
		}
	}
	if winnerSets != setsToWin || loserSets >= setsToWin {
		return ErrInvalidMatchScore
	}
	return nil
}

// advanceWinner fills the winner into the parent knockout match slot. A
// parent whose second feeder does not exist (an odd round size) completes
// immediately as a bye and the winner keeps advancing.
func (s *matchService) advanceWinner(ctx context.Context, tx *sql.Tx, match *models.Match, winnerID int) error {
	phase := models.PhaseKnockout
	matches, err := s.matchRepo.ListByTournament(ctx, match.TournamentID, repositories.ListMatchesFilter{Phase: &phase})
	if err != nil {
		return err
	}
	parent, slot := findParentMatch(matches, match)
	if parent == nil {
		return nil // the final has no parent
	}
	if err := s.matchRepo.UpdateSlot(ctx, tx, parent.ID, slot, winnerID); err != nil {
		return err
	}
	s.logger.Info("winner advanced to next round",
		slog.Int("tournament_id", match.TournamentID),
		slog.Int("match_number", match.MatchNumber),
		slog.Int("next_match_number", parent.MatchNumber),
		slog.Int("slot", slot))

	if hasSiblingFeeder(matches, match) {
		return nil
	}
	if err := s.matchRepo.UpdateResult(ctx, tx, parent.ID, nil, models.MatchStatusCompleted, &winnerID); err != nil {
		return err
	}
	return s.advanceWinner(ctx, tx, parent, winnerID)
}

// hasSiblingFeeder reports whether the match feeding the other slot of
// m's parent exists in m's round.
func hasSiblingFeeder(matches []*models.Match, m *models.Match) bool {
	position, count := 0, 0
	for _, other := range matches {
		if other.Round != m.Round {
			continue
		}
		count++
		if other.MatchNumber == m.MatchNumber {
			position = count
		}
	}
	if position%2 == 0 {
		return true // the sibling precedes m
	}
	return position < count
}

// completeIfFinished moves the tournament to completed once no playable
// match remains in its current playing phase.
func (s *matchService) completeIfFinished(ctx context.Context, tx *sql.Tx, tournament *models.Tournament, justCompletedID int) error {
	if tournament.Phase != models.PhaseKnockout && tournament.Phase != models.PhaseInProgress {
		return nil
	}
	matches, err := s.matchRepo.ListByTournament(ctx, tournament.ID, repositories.ListMatchesFilter{})
	if err != nil {
		return err
	}
	for _, m := range matches {
		if m.ID == justCompletedID {
			continue
		}
		if m.Status == models.MatchStatusScheduled {
			return nil
		}
	}
	if err := s.tournamentRepo.UpdatePhase(ctx, tx, tournament.ID, models.PhaseCompleted); err != nil {
		return err
	}
	s.logger.Info("tournament completed", slog.Int("tournament_id", tournament.ID))
	return nil
}

func (s *matchService) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
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
