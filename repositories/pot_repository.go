package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Sport-Tournaments/sport-tournaments-backend/models"
	"github.com/lib/pq"
)

var (
	ErrPotAssignmentNotFound = errors.New("pot assignment not found")
	ErrPotAssignmentConflict = errors.New("registration is already assigned to a pot")
)

type PotRepository interface {
	Create(ctx context.Context, pot *models.TournamentPot) error
	UpdatePotNumber(ctx context.Context, id int, potNumber int) error
	GetByTournamentAndRegistration(ctx context.Context, tournamentID, registrationID int) (*models.TournamentPot, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.TournamentPot, error)
	DeleteByTournament(ctx context.Context, tournamentID int) error
}

type postgresPotRepository struct {
	db *sql.DB
}

func NewPostgresPotRepository(db *sql.DB) PotRepository {
	return &postgresPotRepository{db: db}
}

func (r *postgresPotRepository) Create(ctx context.Context, pot *models.TournamentPot) error {
	query := `
		INSERT INTO tournament_pots (tournament_id, registration_id, pot_number)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		pot.TournamentID, pot.RegistrationID, pot.PotNumber,
	).Scan(&pot.ID, &pot.CreatedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return ErrPotAssignmentConflict
	}
	return err
}

func (r *postgresPotRepository) UpdatePotNumber(ctx context.Context, id int, potNumber int) error {
	query := `UPDATE tournament_pots SET pot_number = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, potNumber, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPotAssignmentNotFound)
}

func (r *postgresPotRepository) GetByTournamentAndRegistration(ctx context.Context, tournamentID, registrationID int) (*models.TournamentPot, error) {
	query := `
		SELECT id, tournament_id, registration_id, pot_number, created_at
		FROM tournament_pots
		WHERE tournament_id = $1 AND registration_id = $2`

	pot := &models.TournamentPot{}
	err := r.db.QueryRowContext(ctx, query, tournamentID, registrationID).Scan(
		&pot.ID, &pot.TournamentID, &pot.RegistrationID, &pot.PotNumber, &pot.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPotAssignmentNotFound
		}
		return nil, err
	}
	return pot, nil
}

// ListByTournament returns assignments ordered by pot number, then by
// creation time inside each pot.
func (r *postgresPotRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.TournamentPot, error) {
	query := `
		SELECT id, tournament_id, registration_id, pot_number, created_at
		FROM tournament_pots
		WHERE tournament_id = $1
		ORDER BY pot_number ASC, created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pots := make([]*models.TournamentPot, 0)
	for rows.Next() {
		pot := &models.TournamentPot{}
		if scanErr := rows.Scan(
			&pot.ID, &pot.TournamentID, &pot.RegistrationID, &pot.PotNumber, &pot.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		pots = append(pots, pot)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return pots, nil
}

func (r *postgresPotRepository) DeleteByTournament(ctx context.Context, tournamentID int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tournament_pots WHERE tournament_id = $1`, tournamentID)
	return err
}
