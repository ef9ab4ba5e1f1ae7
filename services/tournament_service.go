package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Sport-Tournaments/sport-tournaments-backend/models"
	"github.com/Sport-Tournaments/sport-tournaments-backend/repositories"
)

type CreateTournamentInput struct {
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	AgeGroup    *string   `json:"age_group,omitempty"`
	RegDate     time.Time `json:"reg_date"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Location    *string   `json:"location,omitempty"`
	MaxTeams    int       `json:"max_teams"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput, actor Actor) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	UpdateStatus(ctx context.Context, id int, status models.TournamentStatus, actor Actor) error
	AutoUpdateStatusesByDates(ctx context.Context) (int, error)
	StartStatusUpdateScheduler(ctx context.Context, interval time.Duration)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	logger         *slog.Logger
}

func NewTournamentService(tournamentRepo repositories.TournamentRepository, logger *slog.Logger) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		logger:         logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput, actor Actor) (*models.Tournament, error) {
	if actor.Role != models.RoleOrganizer && !actor.isAdmin() {
		return nil, ErrForbiddenOperation
	}
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if !input.RegDate.Before(input.StartDate) || !input.StartDate.Before(input.EndDate) {
		return nil, fmt.Errorf("%w: dates must satisfy reg_date < start_date < end_date", ErrValidationFailed)
	}
	if input.MaxTeams < 2 {
		return nil, fmt.Errorf("%w: max_teams must be at least 2", ErrValidationFailed)
	}

	tournament := &models.Tournament{
		Name:        input.Name,
		Description: input.Description,
		OrganizerID: actor.UserID,
		AgeGroup:    input.AgeGroup,
		RegDate:     input.RegDate,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Location:    input.Location,
		Status:      models.StatusSoon,
		MaxTeams:    input.MaxTeams,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, fmt.Errorf("%w: tournament name already in use", ErrValidationFailed)
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	return s.tournamentRepo.List(ctx, filter)
}

func (s *tournamentService) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus, actor Actor) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidationFailed, status)
	}
	if _, err := authorizeTournamentOrganizer(ctx, s.tournamentRepo, id, actor); err != nil {
		return err
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, nil, id, status); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}
	return nil
}

// AutoUpdateStatusesByDates advances every tournament whose dates have
// passed its current stage: soon becomes registration at reg_date,
// registration becomes active at start_date, active becomes completed at
// end_date. Returns how many tournaments changed.
func (s *tournamentService) AutoUpdateStatusesByDates(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	due, err := s.tournamentRepo.GetTournamentsForAutoStatusUpdate(ctx, nil, now)
	if err != nil {
		return 0, fmt.Errorf("failed to load tournaments due for status update: %w", err)
	}

	updated := 0
	for _, t := range due {
		next, ok := nextStatusForDates(t, now)
		if !ok {
			continue
		}
		if err := s.tournamentRepo.UpdateStatus(ctx, nil, t.ID, next); err != nil {
			s.logger.Error("failed to auto-update tournament status",
				slog.Int("tournament_id", t.ID),
				slog.String("to", string(next)),
				slog.Any("error", err),
			)
			continue
		}
		s.logger.Info("tournament status advanced",
			slog.Int("tournament_id", t.ID),
			slog.String("from", string(t.Status)),
			slog.String("to", string(next)),
		)
		updated++
	}
	return updated, nil
}

func nextStatusForDates(t *models.Tournament, now time.Time) (models.TournamentStatus, bool) {
	switch t.Status {
	case models.StatusSoon:
		if !t.RegDate.After(now) {
			return models.StatusRegistration, true
		}
	case models.StatusRegistration:
		if !t.StartDate.After(now) {
			return models.StatusActive, true
		}
	case models.StatusActive:
		if !t.EndDate.After(now) {
			return models.StatusCompleted, true
		}
	}
	return "", false
}

// StartStatusUpdateScheduler runs the date-driven status sweep on a ticker
// until the context is cancelled. Started from main as a goroutine.
func (s *tournamentService) StartStatusUpdateScheduler(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("tournament status scheduler started", slog.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("tournament status scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.AutoUpdateStatusesByDates(ctx); err != nil {
				s.logger.Error("tournament status sweep failed", slog.Any("error", err))
			}
		}
	}
}
