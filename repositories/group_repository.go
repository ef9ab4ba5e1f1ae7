package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Sport-Tournaments/sport-tournaments-backend/models"
	"github.com/lib/pq"
)

var ErrGroupNotFound = errors.New("group not found")

type GroupRepository interface {
	Create(ctx context.Context, exec SQLExecutor, group *models.Group) error
	GetByID(ctx context.Context, id int) (*models.Group, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Group, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a group with its ordered team list. team_ids is a Postgres
// integer[]; ordering inside the array is the draw order and must survive
// round-trips, which pq.Array guarantees.
func (r *postgresGroupRepository) Create(ctx context.Context, exec SQLExecutor, group *models.Group) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO groups (tournament_id, letter, team_ids, display_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return executor.QueryRowContext(ctx, query,
		group.TournamentID, group.Letter, pq.Array(group.TeamIDs), group.DisplayOrder,
	).Scan(&group.ID, &group.CreatedAt)
}

func (r *postgresGroupRepository) GetByID(ctx context.Context, id int) (*models.Group, error) {
	query := `
		SELECT id, tournament_id, letter, team_ids, display_order, created_at
		FROM groups WHERE id = $1`

	g := &models.Group{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&g.ID, &g.TournamentID, &g.Letter, pq.Array(&g.TeamIDs), &g.DisplayOrder, &g.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *postgresGroupRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Group, error) {
	query := `
		SELECT id, tournament_id, letter, team_ids, display_order, created_at
		FROM groups
		WHERE tournament_id = $1
		ORDER BY display_order ASC, letter ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	for rows.Next() {
		g := &models.Group{}
		if scanErr := rows.Scan(
			&g.ID, &g.TournamentID, &g.Letter, pq.Array(&g.TeamIDs), &g.DisplayOrder, &g.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		groups = append(groups, g)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *postgresGroupRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM groups WHERE tournament_id = $1`, tournamentID)
	return err
}
