package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Sport-Tournaments/sport-tournaments-backend/brackets"
	"github.com/Sport-Tournaments/sport-tournaments-backend/live"
	"github.com/Sport-Tournaments/sport-tournaments-backend/models"
	"github.com/Sport-Tournaments/sport-tournaments-backend/repositories"
	"github.com/Sport-Tournaments/sport-tournaments-backend/storage"
)

// GenerateBracketInput selects the format and its knobs for bracket
// generation. A zero Seed means the team order is taken as is.
type GenerateBracketInput struct {
	Format            brackets.Format `json:"format"`
	GroupCount        int             `json:"group_count,omitempty"`
	AdvancingPerGroup int             `json:"advancing_per_group,omitempty"`
	Legs              int             `json:"legs,omitempty"`
	ThirdPlaceMatch   bool            `json:"third_place_match,omitempty"`
	Seed              string          `json:"seed,omitempty"`
}

// BracketView is the aggregate returned to spectators: the structure plus
// the draw context it was generated from.
type BracketView struct {
	Tournament    *models.Tournament    `json:"tournament"`
	Groups        []*models.Group       `json:"groups"`
	Bracket       *brackets.BracketData `json:"bracket,omitempty"`
	SnapshotURL   *string               `json:"snapshot_url,omitempty"`
	DrawCompleted bool                  `json:"draw_completed"`
}

// GroupStandingsView pairs a group with its computed table.
type GroupStandingsView struct {
	GroupID   int                      `json:"group_id"`
	Letter    string                   `json:"letter"`
	Standings []brackets.GroupStanding `json:"standings"`
}

// MatchResultInput carries a playoff match result. ManualWinnerID resolves
// drawn knockout matches (penalties and the like).
type MatchResultInput struct {
	Score1         int  `json:"score1"`
	Score2         int  `json:"score2"`
	ManualWinnerID *int `json:"manual_winner_id,omitempty"`
}

type BracketService interface {
	GenerateBracket(ctx context.Context, tournamentID int, input GenerateBracketInput, actor Actor) (*brackets.BracketData, error)
	GetBracket(ctx context.Context, tournamentID int) (*BracketView, error)
	UpdateBracketMatch(ctx context.Context, tournamentID int, matchID string, input MatchResultInput, actor Actor) (*brackets.BracketData, error)
	GetGroupStandings(ctx context.Context, tournamentID int) ([]GroupStandingsView, error)
	SeedKnockoutFromGroups(ctx context.Context, tournamentID int, actor Actor) (*brackets.BracketData, error)
	DeleteBracket(ctx context.Context, tournamentID int, actor Actor) error
}

type bracketService struct {
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	groupRepo        repositories.GroupRepository
	matchRepo        repositories.MatchRepository
	bracketRepo      repositories.BracketRepository
	snapshots        *storage.SnapshotStore
	hub              *live.Hub
	logger           *slog.Logger
}

func NewBracketService(
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	groupRepo repositories.GroupRepository,
	matchRepo repositories.MatchRepository,
	bracketRepo repositories.BracketRepository,
	snapshots *storage.SnapshotStore,
	hub *live.Hub,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		groupRepo:        groupRepo,
		matchRepo:        matchRepo,
		bracketRepo:      bracketRepo,
		snapshots:        snapshots,
		hub:              hub,
		logger:           logger,
	}
}

// GenerateBracket builds the structure for the requested format from the
// tournament's approved registrations and persists it, replacing any
// previous bracket. The team order is seeded-shuffle deterministic when a
// seed is given.
func (s *bracketService) GenerateBracket(ctx context.Context, tournamentID int, input GenerateBracketInput, actor Actor) (*brackets.BracketData, error) {
	if _, err := authorizeTournamentOrganizer(ctx, s.tournamentRepo, tournamentID, actor); err != nil {
		return nil, err
	}

	approved := models.RegistrationApproved
	registrations, err := s.registrationRepo.ListByTournament(ctx, tournamentID, &approved)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved registrations: %w", err)
	}
	if len(registrations) == 0 {
		return nil, ErrNoApprovedRegistrations
	}

	teamIDs := make([]int, len(registrations))
	for i, reg := range registrations {
		teamIDs[i] = reg.ID
	}

	seed := input.Seed
	if seed == "" {
		seed = strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	teamIDs = brackets.SeededShuffle(teamIDs, seed)

	data, err := brackets.Generate(brackets.GenerateParams{
		Format:            input.Format,
		TeamIDs:           teamIDs,
		GroupCount:        input.GroupCount,
		AdvancingPerGroup: input.AdvancingPerGroup,
		Legs:              input.Legs,
		ThirdPlaceMatch:   input.ThirdPlaceMatch,
		Seed:              seed,
	})
	if err != nil {
		if errors.Is(err, brackets.ErrNotEnoughTeams) {
			return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
		return nil, err
	}

	if err := s.persistBracket(ctx, tournamentID, data); err != nil {
		return nil, err
	}

	s.logger.Info("bracket generated",
		slog.Int("tournament_id", tournamentID),
		slog.String("format", string(input.Format)),
		slog.Int("teams", len(teamIDs)),
	)
	s.hub.BroadcastToRoom(live.TournamentRoom(tournamentID), live.Event{
		Type:    live.EventBracketUpdated,
		Payload: data,
	})
	return data, nil
}

// persistBracket saves the structure and refreshes the public snapshot. A
// snapshot failure is logged but does not fail the operation; the database
// copy is authoritative.
func (s *bracketService) persistBracket(ctx context.Context, tournamentID int, data *brackets.BracketData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal bracket data: %w", err)
	}

	record := &models.BracketRecord{
		TournamentID: tournamentID,
		Format:       string(data.Format),
		DataJSON:     string(raw),
		GeneratedAt:  data.GeneratedAt,
	}
	if data.Seed != "" {
		record.Seed = &data.Seed
	}
	if err := s.bracketRepo.Save(ctx, nil, record); err != nil {
		return fmt.Errorf("failed to save bracket for tournament %d: %w", tournamentID, err)
	}

	s.refreshSnapshot(ctx, tournamentID, string(raw))
	return nil
}

func (s *bracketService) refreshSnapshot(ctx context.Context, tournamentID int, dataJSON string) {
	if s.snapshots == nil {
		return
	}
	key, _, err := s.snapshots.PutBracket(ctx, tournamentID, dataJSON)
	if err != nil {
		s.logger.Warn("bracket snapshot upload failed",
			slog.Int("tournament_id", tournamentID),
			slog.Any("error", err),
		)
		return
	}
	if err := s.bracketRepo.UpdateSnapshotKey(ctx, tournamentID, &key); err != nil {
		s.logger.Warn("failed to record bracket snapshot key",
			slog.Int("tournament_id", tournamentID),
			slog.Any("error", err),
		)
	}
}

// GetBracket loads the tournament, its groups and its bracket concurrently.
// A missing bracket is not an error at this level: the view then carries
// only the draw state.
func (s *bracketService) GetBracket(ctx context.Context, tournamentID int) (*BracketView, error) {
	var (
		tournament *models.Tournament
		groups     []*models.Group
		record     *models.BracketRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.tournamentRepo.GetByID(gctx, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		tournament = t
		return nil
	})
	g.Go(func() error {
		gs, err := s.groupRepo.ListByTournament(gctx, tournamentID)
		if err != nil {
			return err
		}
		groups = gs
		return nil
	})
	g.Go(func() error {
		rec, err := s.bracketRepo.GetByTournament(gctx, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrBracketNotFound) {
				return nil
			}
			return err
		}
		record = rec
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := &BracketView{
		Tournament:    tournament,
		Groups:        groups,
		DrawCompleted: tournament.DrawCompleted,
	}
	if record != nil {
		data := &brackets.BracketData{}
		if err := json.Unmarshal([]byte(record.DataJSON), data); err != nil {
			return nil, fmt.Errorf("failed to decode stored bracket for tournament %d: %w", tournamentID, err)
		}
		view.Bracket = data
		if s.snapshots != nil && record.SnapshotKey != nil {
			url := s.snapshots.PublicURL(*record.SnapshotKey)
			if url != "" {
				view.SnapshotURL = &url
			}
		}
	}
	return view, nil
}

// UpdateBracketMatch records a playoff result and advances the winner (and
// routes the loser in double elimination) through the structure's links.
func (s *bracketService) UpdateBracketMatch(ctx context.Context, tournamentID int, matchID string, input MatchResultInput, actor Actor) (*brackets.BracketData, error) {
	if _, err := authorizeTournamentOrganizer(ctx, s.tournamentRepo, tournamentID, actor); err != nil {
		return nil, err
	}
	if input.Score1 < 0 || input.Score2 < 0 {
		return nil, ErrInvalidMatchScore
	}

	record, err := s.bracketRepo.GetByTournament(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, ErrBracketNotFound
		}
		return nil, err
	}

	data := &brackets.BracketData{}
	if err := json.Unmarshal([]byte(record.DataJSON), data); err != nil {
		return nil, fmt.Errorf("failed to decode stored bracket for tournament %d: %w", tournamentID, err)
	}

	match := data.FindMatch(matchID)
	if match == nil {
		return nil, ErrMatchNotFound
	}
	if match.Team1ID == nil || match.Team2ID == nil {
		return nil, fmt.Errorf("%w: match %s is not ready for a result", ErrValidationFailed, matchID)
	}

	winnerID, loserID, err := resolveWinner(match, input)
	if err != nil {
		return nil, err
	}

	match.Score1 = intPtrCopy(input.Score1)
	match.Score2 = intPtrCopy(input.Score2)
	match.ManualWinnerID = input.ManualWinnerID
	match.WinnerID = intPtrCopy(winnerID)
	match.LoserID = intPtrCopy(loserID)
	match.Status = brackets.MatchCompleted

	if match.NextMatchID != nil {
		placeTeam(data.FindMatch(*match.NextMatchID), winnerID)
	}
	if match.LoserNextMatchID != nil {
		placeTeam(data.FindMatch(*match.LoserNextMatchID), loserID)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bracket data: %w", err)
	}
	if err := s.bracketRepo.UpdateData(ctx, nil, tournamentID, string(raw)); err != nil {
		return nil, err
	}
	s.refreshSnapshot(ctx, tournamentID, string(raw))

	s.hub.BroadcastToRoom(live.TournamentRoom(tournamentID), live.Event{
		Type:    live.EventMatchResult,
		Payload: match,
	})
	return data, nil
}

// resolveWinner picks the winner from the scores. A drawn score needs a
// manual winner that is one of the two participants.
func resolveWinner(match *brackets.Match, input MatchResultInput) (winnerID, loserID int, err error) {
	team1, team2 := *match.Team1ID, *match.Team2ID
	switch {
	case input.Score1 > input.Score2:
		return team1, team2, nil
	case input.Score2 > input.Score1:
		return team2, team1, nil
	}

	if input.ManualWinnerID == nil {
		return 0, 0, ErrWinnerRequired
	}
	switch *input.ManualWinnerID {
	case team1:
		return team1, team2, nil
	case team2:
		return team2, team1, nil
	}
	return 0, 0, fmt.Errorf("%w: winner %d is not a participant", ErrValidationFailed, *input.ManualWinnerID)
}

// placeTeam drops the team into the first empty slot of the target match.
// Re-entering a result overwrites the previously advanced team.
func placeTeam(target *brackets.Match, teamID int) {
	if target == nil {
		return
	}
	if target.Team1ID == nil || *target.Team1ID == teamID {
		target.Team1ID = intPtrCopy(teamID)
		return
	}
	if target.Team2ID == nil || *target.Team2ID == teamID {
		target.Team2ID = intPtrCopy(teamID)
	}
}

// GetGroupStandings computes the ranked table of every group from its
// completed matches.
func (s *bracketService) GetGroupStandings(ctx context.Context, tournamentID int) ([]GroupStandingsView, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	groups, err := s.groupRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for tournament %d: %w", tournamentID, err)
	}

	views := make([]GroupStandingsView, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	for i, group := range groups {
		i, group := i, group
		g.Go(func() error {
			matches, err := s.matchRepo.ListByGroup(gctx, group.ID)
			if err != nil {
				return fmt.Errorf("failed to list matches for group %s: %w", group.Letter, err)
			}
			teamIDs := make([]int, len(group.TeamIDs))
			for j, id := range group.TeamIDs {
				teamIDs[j] = int(id)
			}
			views[i] = GroupStandingsView{
				GroupID:   group.ID,
				Letter:    group.Letter,
				Standings: brackets.CalculateGroupStandings(teamIDs, matches),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

// SeedKnockoutFromGroups writes the current group qualifiers into the first
// knockout round of the stored bracket.
func (s *bracketService) SeedKnockoutFromGroups(ctx context.Context, tournamentID int, actor Actor) (*brackets.BracketData, error) {
	if _, err := authorizeTournamentOrganizer(ctx, s.tournamentRepo, tournamentID, actor); err != nil {
		return nil, err
	}

	record, err := s.bracketRepo.GetByTournament(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, ErrBracketNotFound
		}
		return nil, err
	}

	data := &brackets.BracketData{}
	if err := json.Unmarshal([]byte(record.DataJSON), data); err != nil {
		return nil, fmt.Errorf("failed to decode stored bracket for tournament %d: %w", tournamentID, err)
	}

	views, err := s.GetGroupStandings(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	groupStandings := make([][]brackets.GroupStanding, len(views))
	for i, v := range views {
		groupStandings[i] = v.Standings
	}

	advancing := advancingPerGroup(data, len(groupStandings))
	if err := brackets.SeedKnockoutFirstRound(data, groupStandings, advancing); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bracket data: %w", err)
	}
	if err := s.bracketRepo.UpdateData(ctx, nil, tournamentID, string(raw)); err != nil {
		return nil, err
	}
	s.refreshSnapshot(ctx, tournamentID, string(raw))

	s.hub.BroadcastToRoom(live.TournamentRoom(tournamentID), live.Event{
		Type:    live.EventBracketUpdated,
		Payload: data,
	})
	return data, nil
}

// advancingPerGroup derives how many teams qualify per group from the size
// of the first knockout round: slots divided by groups.
func advancingPerGroup(data *brackets.BracketData, groupCount int) int {
	if groupCount == 0 {
		return 2
	}
	for _, r := range data.Rounds {
		if r.Lane == brackets.LaneLosers || r.Lane == brackets.LaneGrandFinal {
			continue
		}
		if len(r.Matches) > 0 {
			if advancing := len(r.Matches) * 2 / groupCount; advancing > 0 {
				return advancing
			}
			break
		}
	}
	return 2
}

func (s *bracketService) DeleteBracket(ctx context.Context, tournamentID int, actor Actor) error {
	if _, err := authorizeTournamentOrganizer(ctx, s.tournamentRepo, tournamentID, actor); err != nil {
		return err
	}
	if err := s.bracketRepo.DeleteByTournament(ctx, nil, tournamentID); err != nil {
		return fmt.Errorf("failed to delete bracket for tournament %d: %w", tournamentID, err)
	}
	if s.snapshots != nil {
		if err := s.snapshots.DeleteBracket(ctx, tournamentID); err != nil {
			s.logger.Warn("bracket snapshot delete failed",
				slog.Int("tournament_id", tournamentID),
				slog.Any("error", err),
			)
		}
	}
	return nil
}

func intPtrCopy(v int) *int {
	return &v
}
