package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Sport-Tournaments/sport-tournaments-backend/brackets"
	"github.com/Sport-Tournaments/sport-tournaments-backend/live"
	"github.com/Sport-Tournaments/sport-tournaments-backend/models"
	"github.com/Sport-Tournaments/sport-tournaments-backend/repositories"
)

// PotAssignmentInput is one entry of a bulk pot assignment.
type PotAssignmentInput struct {
	RegistrationID int `json:"registration_id"`
	PotNumber      int `json:"pot_number"`
}

// BulkAssignResult reports the outcome of one bulk entry. Entries fail
// independently: a bad registration does not roll back earlier ones.
type BulkAssignResult struct {
	RegistrationID int                   `json:"registration_id"`
	Assignment     *models.TournamentPot `json:"assignment,omitempty"`
	Error          string                `json:"error,omitempty"`
}

// PotDistributionReport is the result of validating pot completeness.
type PotDistributionReport struct {
	Valid         bool        `json:"valid"`
	TotalAssigned int         `json:"total_assigned"`
	CountsPerPot  map[int]int `json:"counts_per_pot"`
}

type DrawService interface {
	AssignTeamToPot(ctx context.Context, tournamentID, registrationID, potNumber int, actor Actor) (*models.TournamentPot, error)
	BulkAssignPots(ctx context.Context, tournamentID int, inputs []PotAssignmentInput, actor Actor) ([]BulkAssignResult, error)
	GetPotAssignments(ctx context.Context, tournamentID int) (map[int][]*models.TournamentPot, error)
	ValidatePotDistribution(ctx context.Context, tournamentID int, expectedPerPot *int) (*PotDistributionReport, error)
	ExecutePotDraw(ctx context.Context, tournamentID, numberOfGroups int, actor Actor) ([]*models.Group, error)
	ExecuteRandomDraw(ctx context.Context, tournamentID, numberOfGroups int, seed string, actor Actor) ([]*models.Group, error)
	ReassignGroups(ctx context.Context, tournamentID int, inputs []GroupAssignmentInput, actor Actor) ([]*models.Group, error)
	ClearPotAssignments(ctx context.Context, tournamentID int, actor Actor) error
}

// GroupAssignmentInput is the desired composition of one group when an
// organizer manually rebalances a completed draw.
type GroupAssignmentInput struct {
	Letter  string  `json:"letter"`
	TeamIDs []int64 `json:"team_ids"`
}

type drawService struct {
	db               *sql.DB
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	groupRepo        repositories.GroupRepository
	potRepo          repositories.PotRepository
	hub              *live.Hub
	logger           *slog.Logger
}

func NewDrawService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	groupRepo repositories.GroupRepository,
	potRepo repositories.PotRepository,
	hub *live.Hub,
	logger *slog.Logger,
) DrawService {
	return &drawService{
		db:               db,
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		groupRepo:        groupRepo,
		potRepo:          potRepo,
		hub:              hub,
		logger:           logger,
	}
}

func (s *drawService) AssignTeamToPot(ctx context.Context, tournamentID, registrationID, potNumber int, actor Actor) (*models.TournamentPot, error) {
	if potNumber < models.MinPotNumber || potNumber > models.MaxPotNumber {
		return nil, ErrInvalidPotNumber
	}

	if _, err := authorizeTournamentOrganizer(ctx, s.tournamentRepo, tournamentID, actor); err != nil {
		return nil, err
	}

	registration, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to load registration %d: %w", registrationID, err)
	}
	if registration.TournamentID != tournamentID {
		return nil, ErrRegistrationNotInTourney
	}
	if registration.Status != models.RegistrationApproved {
		return nil, ErrRegistrationNotApproved
	}

	existing, err := s.potRepo.GetByTournamentAndRegistration(ctx, tournamentID, registrationID)
	if err != nil && !errors.Is(err, repositories.ErrPotAssignmentNotFound) {
		return nil, fmt.Errorf("failed to check existing pot assignment: %w", err)
	}
	if existing != nil {
		if err := s.potRepo.UpdatePotNumber(ctx, existing.ID, potNumber); err != nil {
			return nil, fmt.Errorf("failed to move registration %d to pot %d: %w", registrationID, potNumber, err)
		}
		existing.PotNumber = potNumber
		return existing, nil
	}

	pot := &models.TournamentPot{
		TournamentID:   tournamentID,
		RegistrationID: registrationID,
		PotNumber:      potNumber,
	}
	if err := s.potRepo.Create(ctx, pot); err != nil {
		return nil, fmt.Errorf("failed to assign registration %d to pot %d: %w", registrationID, potNumber, err)
	}
	return pot, nil
}

// BulkAssignPots authorizes once and applies the entries in order. There is
// no transaction boundary across the batch.
func (s *drawService) BulkAssignPots(ctx context.Context, tournamentID int, inputs []PotAssignmentInput, actor Actor) ([]BulkAssignResult, error) {
	if _, err := authorizeTournamentOrganizer(ctx, s.tournamentRepo, tournamentID, actor); err != nil {
		return nil, err
	}

	results := make([]BulkAssignResult, 0, len(inputs))
	for _, input := range inputs {
		result := BulkAssignResult{RegistrationID: input.RegistrationID}
		assignment, err := s.assignPotChecked(ctx, tournamentID, input.RegistrationID, input.PotNumber)
		if err != nil {
			result.Error = err.Error()
		} else {
			result.Assignment = assignment
		}
		results = append(results, result)
	}
	return results, nil
}

// assignPotChecked is AssignTeamToPot minus the authorization, for use
// inside an already authorized batch.
func (s *drawService) assignPotChecked(ctx context.Context, tournamentID, registrationID, potNumber int) (*models.TournamentPot, error) {
	if potNumber < models.MinPotNumber || potNumber > models.MaxPotNumber {
		return nil, ErrInvalidPotNumber
	}

	registration, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	if registration.TournamentID != tournamentID {
		return nil, ErrRegistrationNotInTourney
	}
	if registration.Status != models.RegistrationApproved {
		return nil, ErrRegistrationNotApproved
	}

	existing, err := s.potRepo.GetByTournamentAndRegistration(ctx, tournamentID, registrationID)
	if err != nil && !errors.Is(err, repositories.ErrPotAssignmentNotFound) {
		return nil, err
	}
	if existing != nil {
		if err := s.potRepo.UpdatePotNumber(ctx, existing.ID, potNumber); err != nil {
			return nil, err
		}
		existing.PotNumber = potNumber
		return existing, nil
	}

	pot := &models.TournamentPot{
		TournamentID:   tournamentID,
		RegistrationID: registrationID,
		PotNumber:      potNumber,
	}
	if err := s.potRepo.Create(ctx, pot); err != nil {
		return nil, err
	}
	return pot, nil
}

// GetPotAssignments returns assignments grouped by pot number. All four
// keys are present even when a pot is empty; registrations are attached for
// display.
func (s *drawService) GetPotAssignments(ctx context.Context, tournamentID int) (map[int][]*models.TournamentPot, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	pots, err := s.potRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pot assignments for tournament %d: %w", tournamentID, err)
	}

	registrations, err := s.registrationRepo.ListByTournament(ctx, tournamentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for tournament %d: %w", tournamentID, err)
	}
	registrationsByID := make(map[int]*models.Registration, len(registrations))
	for _, reg := range registrations {
		registrationsByID[reg.ID] = reg
	}

	grouped := make(map[int][]*models.TournamentPot, models.MaxPotNumber)
	for potNumber := models.MinPotNumber; potNumber <= models.MaxPotNumber; potNumber++ {
		grouped[potNumber] = []*models.TournamentPot{}
	}
	for _, pot := range pots {
		pot.Registration = registrationsByID[pot.RegistrationID]
		grouped[pot.PotNumber] = append(grouped[pot.PotNumber], pot)
	}
	return grouped, nil
}

// ValidatePotDistribution counts assignments per pot. When expectedPerPot is
// given, any non-empty pot holding a different count marks the distribution
// invalid; otherwise the report only carries the totals.
func (s *drawService) ValidatePotDistribution(ctx context.Context, tournamentID int, expectedPerPot *int) (*PotDistributionReport, error) {
	pots, err := s.potRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pot assignments for tournament %d: %w", tournamentID, err)
	}

	report := &PotDistributionReport{
		Valid:        true,
		CountsPerPot: make(map[int]int, models.MaxPotNumber),
	}
	for potNumber := models.MinPotNumber; potNumber <= models.MaxPotNumber; potNumber++ {
		report.CountsPerPot[potNumber] = 0
	}
	for _, pot := range pots {
		report.CountsPerPot[pot.PotNumber]++
		report.TotalAssigned++
	}

	if expectedPerPot != nil {
		for _, count := range report.CountsPerPot {
			if count != 0 && count != *expectedPerPot {
				report.Valid = false
				break
			}
		}
	}
	return report, nil
}

// ExecutePotDraw distributes all potted teams into numberOfGroups groups
// with a snake draft across pots 1..4, shuffling each pot with a seed
// derived from the tournament and pot number so a redraw reproduces the
// same result. Groups and the draw flag commit in one transaction.
func (s *drawService) ExecutePotDraw(ctx context.Context, tournamentID, numberOfGroups int, actor Actor) ([]*models.Group, error) {
	tournament, err := authorizeTournamentOrganizer(ctx, s.tournamentRepo, tournamentID, actor)
	if err != nil {
		return nil, err
	}
	if tournament.DrawCompleted {
		return nil, ErrDrawAlreadyCompleted
	}

	approved := models.RegistrationApproved
	totalTeams, err := s.registrationRepo.CountByTournament(ctx, tournamentID, &approved)
	if err != nil {
		return nil, fmt.Errorf("failed to count approved registrations: %w", err)
	}
	if totalTeams == 0 {
		return nil, ErrNoApprovedRegistrations
	}
	if numberOfGroups < 2 || numberOfGroups > totalTeams {
		return nil, ErrInvalidGroupCount
	}

	pots, err := s.potRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pot assignments: %w", err)
	}
	if len(pots) != totalTeams {
		return nil, ErrPotCountMismatch
	}

	// Pot queues in assignment order; fixed-size array indexed by pot
	// number so distribution does not depend on map iteration order.
	var potQueues [models.MaxPotNumber + 1][]int
	for _, pot := range pots {
		potQueues[pot.PotNumber] = append(potQueues[pot.PotNumber], pot.RegistrationID)
	}
	for potNumber := models.MinPotNumber; potNumber <= models.MaxPotNumber; potNumber++ {
		if len(potQueues[potNumber]) == 0 {
			continue
		}
		seed := strconv.Itoa(tournamentID) + strconv.Itoa(potNumber)
		potQueues[potNumber] = brackets.SeededShuffle(potQueues[potNumber], seed)
	}

	groupTeams := snakeDistribute(potQueues, numberOfGroups)

	drawSeed := strconv.Itoa(tournamentID)
	groups, err := s.persistDraw(ctx, tournamentID, groupTeams, &drawSeed)
	if err != nil {
		return nil, err
	}

	s.logger.Info("pot draw executed",
		slog.Int("tournament_id", tournamentID),
		slog.Int("groups", numberOfGroups),
		slog.Int("teams", totalTeams),
	)
	s.hub.BroadcastToRoom(live.TournamentRoom(tournamentID), live.Event{
		Type:    live.EventDrawExecuted,
		Payload: groups,
	})
	return groups, nil
}

// snakeDistribute drains pot 1 through pot 4 in order, placing each team
// into the current target group and bouncing the group pointer at both
// ends. Pointer and direction persist across pot boundaries, so when every
// pot holds a multiple of numberOfGroups teams each group receives the same
// number from every tier; group sizes stay within one of each other even
// for uneven pots.
func snakeDistribute(potQueues [models.MaxPotNumber + 1][]int, numberOfGroups int) [][]int64 {
	groupTeams := make([][]int64, numberOfGroups)
	for i := range groupTeams {
		groupTeams[i] = []int64{}
	}

	groupIdx, direction := 0, 1
	for potNumber := models.MinPotNumber; potNumber <= models.MaxPotNumber; potNumber++ {
		for _, teamID := range potQueues[potNumber] {
			groupTeams[groupIdx] = append(groupTeams[groupIdx], int64(teamID))

			next := groupIdx + direction
			if next < 0 || next >= numberOfGroups {
				direction = -direction
			} else {
				groupIdx = next
			}
		}
	}
	return groupTeams
}

// ExecuteRandomDraw shuffles all approved registrations with the given (or
// generated) seed and deals them into groups cyclically.
func (s *drawService) ExecuteRandomDraw(ctx context.Context, tournamentID, numberOfGroups int, seed string, actor Actor) ([]*models.Group, error) {
	tournament, err := authorizeTournamentOrganizer(ctx, s.tournamentRepo, tournamentID, actor)
	if err != nil {
		return nil, err
	}
	if tournament.DrawCompleted {
		return nil, ErrDrawAlreadyCompleted
	}

	approved := models.RegistrationApproved
	registrations, err := s.registrationRepo.ListByTournament(ctx, tournamentID, &approved)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved registrations: %w", err)
	}
	totalTeams := len(registrations)
	if totalTeams == 0 {
		return nil, ErrNoApprovedRegistrations
	}
	if numberOfGroups <= 0 {
		numberOfGroups = (totalTeams + 3) / 4
		// Small fields default below the minimum; two groups is the
		// smallest draw that makes sense.
		if numberOfGroups < 2 {
			numberOfGroups = 2
		}
	}
	if numberOfGroups < 2 || numberOfGroups > totalTeams {
		return nil, ErrInvalidGroupCount
	}

	if seed == "" {
		seed = strconv.FormatInt(time.Now().UnixNano(), 10)
	}

	teamIDs := make([]int, totalTeams)
	for i, reg := range registrations {
		teamIDs[i] = reg.ID
	}
	shuffled := brackets.SeededShuffle(teamIDs, seed)

	groupTeams := make([][]int64, numberOfGroups)
	for i := range groupTeams {
		groupTeams[i] = []int64{}
	}
	for i, teamID := range shuffled {
		groupTeams[i%numberOfGroups] = append(groupTeams[i%numberOfGroups], int64(teamID))
	}

	groups, err := s.persistDraw(ctx, tournamentID, groupTeams, &seed)
	if err != nil {
		return nil, err
	}

	s.logger.Info("random draw executed",
		slog.Int("tournament_id", tournamentID),
		slog.Int("groups", numberOfGroups),
		slog.String("seed", seed),
	)
	s.hub.BroadcastToRoom(live.TournamentRoom(tournamentID), live.Event{
		Type:    live.EventDrawExecuted,
		Payload: groups,
	})
	return groups, nil
}

// persistDraw replaces the tournament's groups with the given distribution
// and marks the draw completed, all inside one transaction so two
// concurrent draws cannot both commit.
func (s *drawService) persistDraw(ctx context.Context, tournamentID int, groupTeams [][]int64, drawSeed *string) ([]*models.Group, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin draw transaction: %w", err)
	}
	var txErr error
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("draw rollback failed", slog.Any("error", rbErr))
			}
		}
	}()

	if txErr = s.groupRepo.DeleteByTournament(ctx, tx, tournamentID); txErr != nil {
		return nil, fmt.Errorf("failed to clear previous groups: %w", txErr)
	}

	groups := make([]*models.Group, 0, len(groupTeams))
	for i, teamIDs := range groupTeams {
		group := &models.Group{
			TournamentID: tournamentID,
			Letter:       groupLetter(i),
			TeamIDs:      teamIDs,
			DisplayOrder: i,
		}
		if txErr = s.groupRepo.Create(ctx, tx, group); txErr != nil {
			return nil, fmt.Errorf("failed to create group %s: %w", group.Letter, txErr)
		}
		groups = append(groups, group)
	}

	if txErr = s.tournamentRepo.SetDrawCompleted(ctx, tx, tournamentID, true, drawSeed); txErr != nil {
		return nil, fmt.Errorf("failed to mark draw completed: %w", txErr)
	}

	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit draw transaction: %w", txErr)
	}
	return groups, nil
}

// ReassignGroups replaces the composition of a completed draw with the
// organizer's manual layout. The team set must stay exactly the set the
// draw produced; letters must match existing groups. Groups are rebuilt
// wholesale in one transaction.
func (s *drawService) ReassignGroups(ctx context.Context, tournamentID int, inputs []GroupAssignmentInput, actor Actor) ([]*models.Group, error) {
	tournament, err := authorizeTournamentOrganizer(ctx, s.tournamentRepo, tournamentID, actor)
	if err != nil {
		return nil, err
	}
	if !tournament.DrawCompleted {
		return nil, fmt.Errorf("%w: draw has not been executed yet", ErrValidationFailed)
	}

	current, err := s.groupRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for tournament %d: %w", tournamentID, err)
	}

	knownLetters := make(map[string]int, len(current))
	drawnTeams := make(map[int64]bool)
	for _, g := range current {
		knownLetters[g.Letter] = g.DisplayOrder
		for _, id := range g.TeamIDs {
			drawnTeams[id] = true
		}
	}

	seen := make(map[int64]bool, len(drawnTeams))
	groupTeams := make([][]int64, len(inputs))
	for i, input := range inputs {
		if _, ok := knownLetters[input.Letter]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidGroupLetter, input.Letter)
		}
		for _, id := range input.TeamIDs {
			if !drawnTeams[id] {
				return nil, fmt.Errorf("%w: registration %d", ErrTeamNotInGroup, id)
			}
			if seen[id] {
				return nil, fmt.Errorf("%w: registration %d appears twice", ErrValidationFailed, id)
			}
			seen[id] = true
		}
		groupTeams[i] = input.TeamIDs
	}
	if len(seen) != len(drawnTeams) {
		return nil, fmt.Errorf("%w: reassignment must place every drawn team", ErrValidationFailed)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin reassignment transaction: %w", err)
	}
	var txErr error
	defer func() {
		if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("reassignment rollback failed", slog.Any("error", rbErr))
			}
		}
	}()

	if txErr = s.groupRepo.DeleteByTournament(ctx, tx, tournamentID); txErr != nil {
		return nil, fmt.Errorf("failed to clear previous groups: %w", txErr)
	}

	groups := make([]*models.Group, 0, len(inputs))
	for i, input := range inputs {
		group := &models.Group{
			TournamentID: tournamentID,
			Letter:       input.Letter,
			TeamIDs:      groupTeams[i],
			DisplayOrder: knownLetters[input.Letter],
		}
		if txErr = s.groupRepo.Create(ctx, tx, group); txErr != nil {
			return nil, fmt.Errorf("failed to create group %s: %w", group.Letter, txErr)
		}
		groups = append(groups, group)
	}

	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit reassignment transaction: %w", txErr)
	}

	s.hub.BroadcastToRoom(live.TournamentRoom(tournamentID), live.Event{
		Type:    live.EventDrawExecuted,
		Payload: groups,
	})
	return groups, nil
}

func (s *drawService) ClearPotAssignments(ctx context.Context, tournamentID int, actor Actor) error {
	if _, err := authorizeTournamentOrganizer(ctx, s.tournamentRepo, tournamentID, actor); err != nil {
		return err
	}
	if err := s.potRepo.DeleteByTournament(ctx, tournamentID); err != nil {
		return fmt.Errorf("failed to clear pot assignments for tournament %d: %w", tournamentID, err)
	}
	return nil
}

// groupLetter turns a zero-based group index into its letter, continuing
// AA, AB, ... past Z.
func groupLetter(index int) string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	if index < len(alphabet) {
		return string(alphabet[index])
	}
	return string(alphabet[index/len(alphabet)-1]) + string(alphabet[index%len(alphabet)])
}
