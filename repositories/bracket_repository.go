package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Sport-Tournaments/sport-tournaments-backend/models"
)

var ErrBracketNotFound = errors.New("bracket not found")

type BracketRepository interface {
	Save(ctx context.Context, exec SQLExecutor, record *models.BracketRecord) error
	GetByTournament(ctx context.Context, tournamentID int) (*models.BracketRecord, error)
	UpdateData(ctx context.Context, exec SQLExecutor, tournamentID int, dataJSON string) error
	UpdateSnapshotKey(ctx context.Context, tournamentID int, snapshotKey *string) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresBracketRepository struct {
	db *sql.DB
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

func (r *postgresBracketRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// Save upserts the tournament's generated bracket. One bracket per
// tournament: regeneration overwrites the previous structure.
func (r *postgresBracketRepository) Save(ctx context.Context, exec SQLExecutor, record *models.BracketRecord) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO brackets (tournament_id, format, data_json, seed, generated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tournament_id) DO UPDATE SET
			format = EXCLUDED.format,
			data_json = EXCLUDED.data_json,
			seed = EXCLUDED.seed,
			snapshot_key = NULL,
			generated_at = EXCLUDED.generated_at
		RETURNING id`

	return executor.QueryRowContext(ctx, query,
		record.TournamentID, record.Format, record.DataJSON, record.Seed, record.GeneratedAt,
	).Scan(&record.ID)
}

func (r *postgresBracketRepository) GetByTournament(ctx context.Context, tournamentID int) (*models.BracketRecord, error) {
	query := `
		SELECT id, tournament_id, format, data_json, seed, snapshot_key, generated_at
		FROM brackets WHERE tournament_id = $1`

	record := &models.BracketRecord{}
	err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(
		&record.ID, &record.TournamentID, &record.Format, &record.DataJSON,
		&record.Seed, &record.SnapshotKey, &record.GeneratedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, err
	}
	return record, nil
}

func (r *postgresBracketRepository) UpdateData(ctx context.Context, exec SQLExecutor, tournamentID int, dataJSON string) error {
	executor := r.getExecutor(exec)
	query := `UPDATE brackets SET data_json = $1 WHERE tournament_id = $2`
	result, err := executor.ExecContext(ctx, query, dataJSON, tournamentID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrBracketNotFound)
}

func (r *postgresBracketRepository) UpdateSnapshotKey(ctx context.Context, tournamentID int, snapshotKey *string) error {
	query := `UPDATE brackets SET snapshot_key = $1 WHERE tournament_id = $2`
	result, err := r.db.ExecContext(ctx, query, snapshotKey, tournamentID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrBracketNotFound)
}

func (r *postgresBracketRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM brackets WHERE tournament_id = $1`, tournamentID)
	return err
}
