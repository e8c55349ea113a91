package services

import "errors"

// Sentinel errors shared across services and the HTTP error mapping.
var (
	// Generic
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")

	// Authentication / authorization
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Entity lookups
	ErrUserNotFound        = errors.New("user not found")
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrParticipantNotFound = errors.New("participant registration not found")
	ErrGroupNotFound       = errors.New("group not found")
	ErrMatchNotFound       = errors.New("match not found")

	// Tournament configuration and registration
	ErrTournamentNameRequired  = errors.New("tournament name is required")
	ErrTournamentInvalidType   = errors.New("invalid tournament type")
	ErrTournamentInvalidConfig = errors.New("invalid tournament configuration")
	ErrTournamentNameConflict  = errors.New("tournament name already exists")
	ErrRegistrationNotOpen     = errors.New("tournament registration is not open")
	ErrRegistrationConflict    = errors.New("user is already registered for this tournament")
	ErrSeedTaken               = errors.New("seed is already taken in this tournament")

	// Stage advancement
	ErrWrongPhase            = errors.New("tournament is not in the phase that permits this operation")
	ErrMatchesAlreadyExist   = errors.New("matches for this phase have already been generated")
	ErrNotEnoughQualifiers   = errors.New("not enough qualifiers to build the knockout stage")
	ErrGroupStageNotComplete = errors.New("group stage matches are not all completed")

	// Score entry
	ErrMatchNotReady         = errors.New("match does not have both participants assigned")
	ErrMatchAlreadyCompleted = errors.New("match result has already been recorded")
	ErrInvalidMatchScore     = errors.New("recorded score is not valid for the match format")
	ErrInvalidWinner         = errors.New("winner must be one of the match participants")
)
