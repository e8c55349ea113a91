package services

import (
	"context"
	"errors"

	"github.com/Giovo8/gst-tennis-academy-sub005/brackets"
	"github.com/Giovo8/gst-tennis-academy-sub005/models"
	"github.com/Giovo8/gst-tennis-academy-sub005/repositories"
)

// StandingsService is the read-only reporting boundary: standings are
// recomputed from completed matches on every request, never persisted.
type StandingsService interface {
	GetStandings(ctx context.Context, tournamentID int, groupID *int) ([]models.StandingRow, error)
}

type standingsService struct {
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
}

func NewStandingsService(
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
) StandingsService {
	return &standingsService{
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
	}
}

func (s *standingsService) GetStandings(ctx context.Context, tournamentID int, groupID *int) ([]models.StandingRow, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	allParticipants, err := s.participantRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	participants := make([]models.Participant, 0, len(allParticipants))
	for _, p := range allParticipants {
		if groupID != nil && (p.GroupID == nil || *p.GroupID != *groupID) {
			continue
		}
		participants = append(participants, *p)
	}

	listed, err := s.matchRepo.ListByTournament(ctx, tournamentID, repositories.ListMatchesFilter{GroupID: groupID})
	if err != nil {
		return nil, err
	}
	matches := make([]models.Match, len(listed))
	for i, m := range listed {
		matches[i] = *m
	}

	return brackets.ComputeStandings(participants, matches, tournament.PointsPerWin), nil
}
