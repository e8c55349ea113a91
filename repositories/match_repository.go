package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Giovo8/gst-tennis-academy-sub005/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound = errors.New("match not found")
	// ErrMatchNumberConflict is raised by the unique constraint on
	// (tournament_id, match_number). Two concurrent generation runs for
	// the same phase insert the same numbers, so the loser of the race
	// surfaces here.
	ErrMatchNumberConflict = errors.New("match number already exists for this tournament")
)

type ListMatchesFilter struct {
	Phase   *models.Phase
	GroupID *int
	Round   *int
	Status  *models.MatchStatus
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	GetByMatchNumber(ctx context.Context, exec SQLExecutor, tournamentID, matchNumber int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, filter ListMatchesFilter) ([]*models.Match, error)
	CountByPhase(ctx context.Context, exec SQLExecutor, tournamentID int, phase models.Phase) (int, error)
	MaxMatchNumber(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, id int, sets models.SetScores, status models.MatchStatus, winnerID *int) error
	UpdateSlot(ctx context.Context, exec SQLExecutor, id int, slot int, participantID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `
	id, tournament_id, phase, group_id, round, round_label, match_number,
	p1_participant_id, p2_participant_id, status, winner_participant_id,
	sets, scheduled_time, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		INSERT INTO matches
			(tournament_id, phase, group_id, round, round_label, match_number,
			 p1_participant_id, p2_participant_id, status, winner_participant_id,
			 sets, scheduled_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		m.TournamentID,
		m.Phase,
		m.GroupID,
		m.Round,
		m.RoundLabel,
		m.MatchNumber,
		m.P1ID,
		m.P2ID,
		m.Status,
		m.WinnerID,
		m.Sets,
		m.ScheduledTime,
	).Scan(&m.ID, &m.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "matches_tournament_id_match_number_key" {
			return ErrMatchNumberConflict
		}
		return fmt.Errorf("failed to insert match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return scanMatchRow(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) GetByMatchNumber(ctx context.Context, exec SQLExecutor, tournamentID, matchNumber int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1 AND match_number = $2`
	return scanMatchRow(exec.QueryRowContext(ctx, query, tournamentID, matchNumber))
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int, filter ListMatchesFilter) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	placeholder := 2

	if filter.Phase != nil {
		queryBuilder.WriteString(" AND phase = $" + strconv.Itoa(placeholder))
		args = append(args, *filter.Phase)
		placeholder++
	}
	if filter.GroupID != nil {
		queryBuilder.WriteString(" AND group_id = $" + strconv.Itoa(placeholder))
		args = append(args, *filter.GroupID)
		placeholder++
	}
	if filter.Round != nil {
		queryBuilder.WriteString(" AND round = $" + strconv.Itoa(placeholder))
		args = append(args, *filter.Round)
		placeholder++
	}
	if filter.Status != nil {
		queryBuilder.WriteString(" AND status = $" + strconv.Itoa(placeholder))
		args = append(args, *filter.Status)
	}

	queryBuilder.WriteString(" ORDER BY match_number ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var m models.Match
		if scanErr := rows.Scan(
			&m.ID,
			&m.TournamentID,
			&m.Phase,
			&m.GroupID,
			&m.Round,
			&m.RoundLabel,
			&m.MatchNumber,
			&m.P1ID,
			&m.P2ID,
			&m.Status,
			&m.WinnerID,
			&m.Sets,
			&m.ScheduledTime,
			&m.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) CountByPhase(ctx context.Context, exec SQLExecutor, tournamentID int, phase models.Phase) (int, error) {
	query := `SELECT COUNT(*) FROM matches WHERE tournament_id = $1 AND phase = $2`
	var count int
	if err := exec.QueryRowContext(ctx, query, tournamentID, phase).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches for tournament %d phase %s: %w", tournamentID, phase, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) MaxMatchNumber(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	query := `SELECT COALESCE(MAX(match_number), 0) FROM matches WHERE tournament_id = $1`
	var max int
	if err := exec.QueryRowContext(ctx, query, tournamentID).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to get max match number for tournament %d: %w", tournamentID, err)
	}
	return max, nil
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id int, sets models.SetScores, status models.MatchStatus, winnerID *int) error {
	query := `UPDATE matches SET sets = $1, status = $2, winner_participant_id = $3 WHERE id = $4`
	result, err := exec.ExecContext(ctx, query, sets, status, winnerID, id)
	if err != nil {
		return fmt.Errorf("failed to update result for match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateSlot(ctx context.Context, exec SQLExecutor, id int, slot int, participantID int) error {
	var query string
	switch slot {
	case 1:
		query = `UPDATE matches SET p1_participant_id = $1 WHERE id = $2`
	case 2:
		query = `UPDATE matches SET p2_participant_id = $1 WHERE id = $2`
	default:
		return fmt.Errorf("invalid match slot %d", slot)
	}
	result, err := exec.ExecContext(ctx, query, participantID, id)
	if err != nil {
		return fmt.Errorf("failed to update slot %d for match %d: %w", slot, id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func scanMatchRow(row *sql.Row) (*models.Match, error) {
	m := &models.Match{}
	err := row.Scan(
		&m.ID,
		&m.TournamentID,
		&m.Phase,
		&m.GroupID,
		&m.Round,
		&m.RoundLabel,
		&m.MatchNumber,
		&m.P1ID,
		&m.P2ID,
		&m.Status,
		&m.WinnerID,
		&m.Sets,
		&m.ScheduledTime,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}
	return m, nil
}
