package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Sport-Tournaments/sport-tournaments-backend/models"
)

var ErrRegistrationNotFound = errors.New("registration not found")

type RegistrationRepository interface {
	GetByID(ctx context.Context, id int) (*models.Registration, error)
	ListByTournament(ctx context.Context, tournamentID int, status *models.RegistrationStatus) ([]*models.Registration, error)
	CountByTournament(ctx context.Context, tournamentID int, status *models.RegistrationStatus) (int, error)
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

const registrationColumns = `id, tournament_id, club_name, team_name, coach_name, status, created_at`

func (r *postgresRegistrationRepository) GetByID(ctx context.Context, id int) (*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`

	reg := &models.Registration{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&reg.ID, &reg.TournamentID, &reg.ClubName, &reg.TeamName,
		&reg.CoachName, &reg.Status, &reg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) ListByTournament(ctx context.Context, tournamentID int, status *models.RegistrationStatus) ([]*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE tournament_id = $1`
	args := []interface{}{tournamentID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	registrations := make([]*models.Registration, 0)
	for rows.Next() {
		reg := &models.Registration{}
		if scanErr := rows.Scan(
			&reg.ID, &reg.TournamentID, &reg.ClubName, &reg.TeamName,
			&reg.CoachName, &reg.Status, &reg.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		registrations = append(registrations, reg)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return registrations, nil
}

func (r *postgresRegistrationRepository) CountByTournament(ctx context.Context, tournamentID int, status *models.RegistrationStatus) (int, error) {
	query := `SELECT COUNT(*) FROM registrations WHERE tournament_id = $1`
	args := []interface{}{tournamentID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
