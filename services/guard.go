package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sport-Tournaments/sport-tournaments-backend/models"
	"github.com/Sport-Tournaments/sport-tournaments-backend/repositories"
)

// Actor identifies the authenticated caller of a mutating operation.
type Actor struct {
	UserID int
	Role   string
}

func (a Actor) isAdmin() bool {
	return a.Role == models.RoleAdmin
}

// authorizeTournamentOrganizer loads the tournament and verifies the actor
// is its organizer or an admin. A missing tournament is reported before any
// authorization decision. Every mutating draw/bracket operation calls this
// first.
func authorizeTournamentOrganizer(ctx context.Context, repo repositories.TournamentRepository, tournamentID int, actor Actor) (*models.Tournament, error) {
	tournament, err := repo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}

	if tournament.OrganizerID != actor.UserID && !actor.isAdmin() {
		return nil, ErrForbiddenOperation
	}
	return tournament, nil
}
