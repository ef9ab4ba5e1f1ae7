package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Sport-Tournaments/sport-tournaments-backend/models"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByGroup(ctx context.Context, groupID int) ([]models.Match, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, tournament_id, group_id, round, team1_registration_id, team2_registration_id,
	score1, score2, winner_registration_id, status, match_time, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches (
			tournament_id, group_id, round, team1_registration_id, team2_registration_id,
			status, match_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	return executor.QueryRowContext(ctx, query,
		m.TournamentID, m.GroupID, m.Round, m.Team1RegistrationID, m.Team2RegistrationID,
		m.Status, m.MatchTime,
	).Scan(&m.ID, &m.CreatedAt)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1`

	m := &models.Match{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.TournamentID, &m.GroupID, &m.Round,
		&m.Team1RegistrationID, &m.Team2RegistrationID,
		&m.Score1, &m.Score2, &m.WinnerRegistrationID,
		&m.Status, &m.MatchTime, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByGroup(ctx context.Context, groupID int) ([]models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE group_id = $1 ORDER BY round ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		if scanErr := rows.Scan(
			&m.ID, &m.TournamentID, &m.GroupID, &m.Round,
			&m.Team1RegistrationID, &m.Team2RegistrationID,
			&m.Score1, &m.Score2, &m.WinnerRegistrationID,
			&m.Status, &m.MatchTime, &m.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches SET
			score1 = $1, score2 = $2, winner_registration_id = $3, status = $4
		WHERE id = $5`

	result, err := executor.ExecContext(ctx, query,
		m.Score1, m.Score2, m.WinnerRegistrationID, m.Status, m.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = $1`, tournamentID)
	return err
}
