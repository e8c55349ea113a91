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
	ErrGroupNotFound = errors.New("group not found")
	ErrGroupConflict = errors.New("group already exists for this tournament")
)

type GroupRepository interface {
	Create(ctx context.Context, exec SQLExecutor, group *models.Group) error
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Group, error)
	GetByID(ctx context.Context, id int) (*models.Group, error)
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) Create(ctx context.Context, exec SQLExecutor, g *models.Group) error {
	query := `
		INSERT INTO groups (tournament_id, name, position)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query, g.TournamentID, g.Name, g.Position).
		Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "groups_tournament_id_name_key" {
			return ErrGroupConflict
		}
		return fmt.Errorf("failed to insert group: %w", err)
	}
	return nil
}

func (r *postgresGroupRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Group, error) {
	query := `
		SELECT id, tournament_id, name, position, created_at
		FROM groups
		WHERE tournament_id = $1
		ORDER BY position ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	for rows.Next() {
		var g models.Group
		if scanErr := rows.Scan(&g.ID, &g.TournamentID, &g.Name, &g.Position, &g.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", scanErr)
		}
		groups = append(groups, &g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during group rows iteration: %w", err)
	}
	return groups, nil
}

func (r *postgresGroupRepository) GetByID(ctx context.Context, id int) (*models.Group, error) {
	query := `
		SELECT id, tournament_id, name, position, created_at
		FROM groups
		WHERE id = $1`

	g := &models.Group{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&g.ID, &g.TournamentID, &g.Name, &g.Position, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to scan group %d: %w", id, err)
	}
	return g, nil
}
