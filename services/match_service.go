package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Sport-Tournaments/sport-tournaments-backend/brackets"
	"github.com/Sport-Tournaments/sport-tournaments-backend/live"
	"github.com/Sport-Tournaments/sport-tournaments-backend/models"
	"github.com/Sport-Tournaments/sport-tournaments-backend/repositories"
)

// GroupMatchResultInput carries a group-stage result. Draws are legal in the
// group stage, unlike playoffs.
type GroupMatchResultInput struct {
	Score1 int `json:"score1"`
	Score2 int `json:"score2"`
}

type MatchService interface {
	GenerateGroupFixtures(ctx context.Context, tournamentID int, actor Actor) ([]models.Match, error)
	EnterResult(ctx context.Context, matchID int, input GroupMatchResultInput, actor Actor) (*models.Match, error)
	ListByGroup(ctx context.Context, groupID int) ([]models.Match, error)
}

type matchService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	groupRepo      repositories.GroupRepository
	matchRepo      repositories.MatchRepository
	hub            *live.Hub
	logger         *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	groupRepo repositories.GroupRepository,
	matchRepo repositories.MatchRepository,
	hub *live.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:             db,
		tournamentRepo: tournamentRepo,
		groupRepo:      groupRepo,
		matchRepo:      matchRepo,
		hub:            hub,
		logger:         logger,
	}
}

// GenerateGroupFixtures builds a single round robin inside every group of
// the tournament and persists the fixtures, replacing any existing ones.
// The tournament start date anchors the nominal match times.
func (s *matchService) GenerateGroupFixtures(ctx context.Context, tournamentID int, actor Actor) ([]models.Match, error) {
	tournament, err := authorizeTournamentOrganizer(ctx, s.tournamentRepo, tournamentID, actor)
	if err != nil {
		return nil, err
	}
	if !tournament.DrawCompleted {
		return nil, fmt.Errorf("%w: draw has not been executed yet", ErrValidationFailed)
	}

	groups, err := s.groupRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for tournament %d: %w", tournamentID, err)
	}
	if len(groups) == 0 {
		return nil, ErrGroupNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin fixture transaction: %w", err)
	}
	var txErr error
	defer func() {
		if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("fixture rollback failed", slog.Any("error", rbErr))
			}
		}
	}()

	if txErr = s.matchRepo.DeleteByTournament(ctx, tx, tournamentID); txErr != nil {
		return nil, fmt.Errorf("failed to clear previous fixtures: %w", txErr)
	}

	created := make([]models.Match, 0)
	for _, group := range groups {
		teamIDs := make([]int, len(group.TeamIDs))
		for i, id := range group.TeamIDs {
			teamIDs[i] = int(id)
		}
		if len(teamIDs) < 2 {
			continue
		}

		schedule, genErr := brackets.Generate(brackets.GenerateParams{
			Format:  brackets.FormatRoundRobin,
			TeamIDs: teamIDs,
		})
		if genErr != nil {
			txErr = fmt.Errorf("failed to schedule group %s: %w", group.Letter, genErr)
			return nil, txErr
		}

		for _, fixture := range schedule.Matches {
			if fixture.Team1ID == nil || fixture.Team2ID == nil {
				continue
			}
			round := fixture.Round
			match := &models.Match{
				TournamentID:        tournamentID,
				GroupID:             group.ID,
				Round:               &round,
				Team1RegistrationID: fixture.Team1ID,
				Team2RegistrationID: fixture.Team2ID,
				Status:              models.MatchPending,
				MatchTime:           groupMatchTime(tournament.StartDate, fixture.Round),
			}
			if txErr = s.matchRepo.Create(ctx, tx, match); txErr != nil {
				return nil, fmt.Errorf("failed to create fixture in group %s: %w", group.Letter, txErr)
			}
			created = append(created, *match)
		}
	}

	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit fixture transaction: %w", txErr)
	}

	s.logger.Info("group fixtures generated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("matches", len(created)),
	)
	return created, nil
}

// groupMatchTime spaces rounds one day apart starting from the tournament
// start date. Organizers reschedule individual matches later.
func groupMatchTime(startDate time.Time, round int) time.Time {
	if round < 1 {
		round = 1
	}
	return startDate.AddDate(0, 0, round-1)
}

// EnterResult records a group-stage score. The winner field stays nil on a
// draw; standings pick the result up from the scores.
func (s *matchService) EnterResult(ctx context.Context, matchID int, input GroupMatchResultInput, actor Actor) (*models.Match, error) {
	if input.Score1 < 0 || input.Score2 < 0 {
		return nil, ErrInvalidMatchScore
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	if _, err := authorizeTournamentOrganizer(ctx, s.tournamentRepo, match.TournamentID, actor); err != nil {
		return nil, err
	}
	if match.Team1RegistrationID == nil || match.Team2RegistrationID == nil {
		return nil, fmt.Errorf("%w: match %d has unassigned teams", ErrValidationFailed, matchID)
	}

	match.Score1 = intPtrCopy(input.Score1)
	match.Score2 = intPtrCopy(input.Score2)
	match.Status = models.MatchCompleted
	switch {
	case input.Score1 > input.Score2:
		match.WinnerRegistrationID = match.Team1RegistrationID
	case input.Score2 > input.Score1:
		match.WinnerRegistrationID = match.Team2RegistrationID
	default:
		match.WinnerRegistrationID = nil
	}

	if err := s.matchRepo.UpdateResult(ctx, nil, match); err != nil {
		return nil, fmt.Errorf("failed to update match %d result: %w", matchID, err)
	}

	s.hub.BroadcastToRoom(live.TournamentRoom(match.TournamentID), live.Event{
		Type:    live.EventMatchResult,
		Payload: match,
	})
	return match, nil
}

func (s *matchService) ListByGroup(ctx context.Context, groupID int) ([]models.Match, error) {
	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return s.matchRepo.ListByGroup(ctx, groupID)
}
