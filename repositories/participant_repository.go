package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Giovo8/gst-tennis-academy-sub005/models"
	"github.com/lib/pq"
)

var (
	ErrParticipantNotFound     = errors.New("participant registration not found")
	ErrParticipantConflict     = errors.New("user is already registered for this tournament")
	ErrParticipantSeedConflict = errors.New("seed is already taken in this tournament")
)

type ParticipantRepository interface {
	Create(ctx context.Context, participant *models.Participant) error
	GetByID(ctx context.Context, id int) (*models.Participant, error)
	// ListByTournament returns registrations ordered by seed (seeded first,
	// ascending), then by registration time. The order is the stable
	// fallback used everywhere seeds are assigned or standings tied.
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error)
	UpdateSeed(ctx context.Context, exec SQLExecutor, id int, seed int) error
	UpdateGroup(ctx context.Context, exec SQLExecutor, id int, groupID int) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	query := `
		INSERT INTO participants (tournament_id, user_id, seed)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, p.TournamentID, p.UserID, p.Seed).
		Scan(&p.ID, &p.CreatedAt)
	return r.handleParticipantError(err)
}

func (r *postgresParticipantRepository) GetByID(ctx context.Context, id int) (*models.Participant, error) {
	query := `
		SELECT id, tournament_id, user_id, seed, group_id, created_at
		FROM participants
		WHERE id = $1`

	p := &models.Participant{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.TournamentID,
		&p.UserID,
		&p.Seed,
		&p.GroupID,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to scan participant %d: %w", id, err)
	}
	return p, nil
}

func (r *postgresParticipantRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	query := `
		SELECT id, tournament_id, user_id, seed, group_id, created_at
		FROM participants
		WHERE tournament_id = $1
		ORDER BY seed ASC NULLS LAST, created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		var p models.Participant
		if scanErr := rows.Scan(
			&p.ID,
			&p.TournamentID,
			&p.UserID,
			&p.Seed,
			&p.GroupID,
			&p.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", scanErr)
		}
		participants = append(participants, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during participant rows iteration: %w", err)
	}
	return participants, nil
}

func (r *postgresParticipantRepository) UpdateSeed(ctx context.Context, exec SQLExecutor, id int, seed int) error {
	query := `UPDATE participants SET seed = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, seed, id)
	if err != nil {
		return r.handleParticipantError(err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) UpdateGroup(ctx context.Context, exec SQLExecutor, id int, groupID int) error {
	query := `UPDATE participants SET group_id = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, groupID, id)
	if err != nil {
		return fmt.Errorf("failed to update group for participant %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) handleParticipantError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "participants_tournament_id_user_id_key":
			return ErrParticipantConflict
		case "participants_tournament_id_seed_key":
			return ErrParticipantSeedConflict
		}
	}
	return err
}
