package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Giovo8/gst-tennis-academy-sub005/models"
	"github.com/Giovo8/gst-tennis-academy-sub005/repositories"
)

type RegisterParticipantInput struct {
	UserID int  `json:"user_id"`
	Seed   *int `json:"seed,omitempty"`
}

type ParticipantService interface {
	Register(ctx context.Context, tournamentID int, input RegisterParticipantInput) (*models.Participant, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error)
}

type participantService struct {
	participantRepo repositories.ParticipantRepository
	tournamentRepo  repositories.TournamentRepository
	userRepo        repositories.UserRepository
}

func NewParticipantService(
	participantRepo repositories.ParticipantRepository,
	tournamentRepo repositories.TournamentRepository,
	userRepo repositories.UserRepository,
) ParticipantService {
	return &participantService{
		participantRepo: participantRepo,
		tournamentRepo:  tournamentRepo,
		userRepo:        userRepo,
	}
}

func (s *participantService) Register(ctx context.Context, tournamentID int, input RegisterParticipantInput) (*models.Participant, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if tournament.Phase != models.PhaseRegistration {
		return nil, ErrRegistrationNotOpen
	}

	if _, err := s.userRepo.GetByID(ctx, input.UserID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if input.Seed != nil && *input.Seed <= 0 {
		return nil, fmt.Errorf("%w: seed must be a positive integer", ErrValidationFailed)
	}

	participant := &models.Participant{
		TournamentID: tournamentID,
		UserID:       input.UserID,
		Seed:         input.Seed,
	}
	if err := s.participantRepo.Create(ctx, participant); err != nil {
		switch {
		case errors.Is(err, repositories.ErrParticipantConflict):
			return nil, ErrRegistrationConflict
		case errors.Is(err, repositories.ErrParticipantSeedConflict):
			return nil, ErrSeedTaken
		}
		return nil, fmt.Errorf("failed to register participant: %w", err)
	}
	return participant, nil
}

func (s *participantService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	participants, err := s.participantRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for tournament %d: %w", tournamentID, err)
	}
	return participants, nil
}
