package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sport-Tournaments/sport-tournaments-backend/brackets"
	"github.com/Sport-Tournaments/sport-tournaments-backend/live"
	"github.com/Sport-Tournaments/sport-tournaments-backend/models"
)

func newBracketServiceForTest(
	tournaments *fakeTournamentRepo,
	registrations *fakeRegistrationRepo,
	groups *fakeGroupRepo,
	matches *fakeMatchRepo,
	records *fakeBracketRepo,
) *bracketService {
	return &bracketService{
		tournamentRepo:   tournaments,
		registrationRepo: registrations,
		groupRepo:        groups,
		matchRepo:        matches,
		bracketRepo:      records,
		hub:              live.NewHub(),
		logger:           testLogger(),
	}
}

func storedBracketRecord(t *testing.T, tournamentID int, data *brackets.BracketData) *models.BracketRecord {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return &models.BracketRecord{
		ID:           tournamentID,
		TournamentID: tournamentID,
		Format:       string(data.Format),
		DataJSON:     string(raw),
		GeneratedAt:  data.GeneratedAt,
	}
}

func TestResolveWinner(t *testing.T) {
	match := &brackets.Match{Team1ID: intPtrCopy(10), Team2ID: intPtrCopy(20)}

	winner, loser, err := resolveWinner(match, MatchResultInput{Score1: 3, Score2: 1})
	require.NoError(t, err)
	assert.Equal(t, 10, winner)
	assert.Equal(t, 20, loser)

	winner, loser, err = resolveWinner(match, MatchResultInput{Score1: 0, Score2: 2})
	require.NoError(t, err)
	assert.Equal(t, 20, winner)
	assert.Equal(t, 10, loser)

	_, _, err = resolveWinner(match, MatchResultInput{Score1: 1, Score2: 1})
	assert.ErrorIs(t, err, ErrWinnerRequired)

	winner, loser, err = resolveWinner(match, MatchResultInput{Score1: 1, Score2: 1, ManualWinnerID: intPtrCopy(20)})
	require.NoError(t, err)
	assert.Equal(t, 20, winner)
	assert.Equal(t, 10, loser)

	_, _, err = resolveWinner(match, MatchResultInput{Score1: 1, Score2: 1, ManualWinnerID: intPtrCopy(99)})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestPlaceTeam(t *testing.T) {
	target := &brackets.Match{}

	placeTeam(target, 10)
	require.NotNil(t, target.Team1ID)
	assert.Equal(t, 10, *target.Team1ID)

	placeTeam(target, 20)
	require.NotNil(t, target.Team2ID)
	assert.Equal(t, 20, *target.Team2ID)

	// Re-entering the same advancement overwrites in place.
	placeTeam(target, 10)
	assert.Equal(t, 10, *target.Team1ID)
	assert.Equal(t, 20, *target.Team2ID)

	placeTeam(nil, 10)
}

func TestAdvancingPerGroup(t *testing.T) {
	single, err := brackets.Generate(brackets.GenerateParams{
		Format:    brackets.FormatSingleElimination,
		TeamCount: 8,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, advancingPerGroup(single, 4))
	assert.Equal(t, 4, advancingPerGroup(single, 2))
	assert.Equal(t, 2, advancingPerGroup(single, 0))

	// Losers lanes are not knockout entry rounds.
	double, err := brackets.Generate(brackets.GenerateParams{
		Format:    brackets.FormatDoubleElimination,
		TeamCount: 8,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, advancingPerGroup(double, 4))
}

func TestGenerateBracketPersistsAndReturnsStructure(t *testing.T) {
	tournaments := newFakeTournamentRepo(drawTestTournament())
	registrations := newFakeRegistrationRepo(
		approvedRegistration(1, 1),
		approvedRegistration(2, 1),
		approvedRegistration(3, 1),
		approvedRegistration(4, 1),
	)
	records := newFakeBracketRepo()
	svc := newBracketServiceForTest(tournaments, registrations, newFakeGroupRepo(), newFakeMatchRepo(), records)

	data, err := svc.GenerateBracket(context.Background(), 1, GenerateBracketInput{
		Format: brackets.FormatSingleElimination,
		Seed:   "42",
	}, organizerActor)
	require.NoError(t, err)
	require.Len(t, data.Rounds, 2)
	assert.Equal(t, "42", data.Seed)

	stored, err := records.GetByTournament(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, string(brackets.FormatSingleElimination), stored.Format)
	require.NotNil(t, stored.Seed)
	assert.Equal(t, "42", *stored.Seed)
	assert.JSONEq(t, mustMarshal(t, data), stored.DataJSON)
}

func mustMarshal(t *testing.T, v interface{}) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}

func TestGenerateBracketValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("no approved registrations", func(t *testing.T) {
		svc := newBracketServiceForTest(newFakeTournamentRepo(drawTestTournament()), newFakeRegistrationRepo(), newFakeGroupRepo(), newFakeMatchRepo(), newFakeBracketRepo())

		_, err := svc.GenerateBracket(ctx, 1, GenerateBracketInput{Format: brackets.FormatSingleElimination}, organizerActor)
		assert.ErrorIs(t, err, ErrNoApprovedRegistrations)
	})

	t.Run("single team cannot form a bracket", func(t *testing.T) {
		svc := newBracketServiceForTest(newFakeTournamentRepo(drawTestTournament()), newFakeRegistrationRepo(approvedRegistration(1, 1)), newFakeGroupRepo(), newFakeMatchRepo(), newFakeBracketRepo())

		_, err := svc.GenerateBracket(ctx, 1, GenerateBracketInput{Format: brackets.FormatSingleElimination}, organizerActor)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("forbidden for strangers", func(t *testing.T) {
		svc := newBracketServiceForTest(newFakeTournamentRepo(drawTestTournament()), newFakeRegistrationRepo(), newFakeGroupRepo(), newFakeMatchRepo(), newFakeBracketRepo())

		_, err := svc.GenerateBracket(ctx, 1, GenerateBracketInput{Format: brackets.FormatSingleElimination}, Actor{UserID: 5, Role: models.RoleOrganizer})
		assert.ErrorIs(t, err, ErrForbiddenOperation)
	})
}

func TestGetBracket(t *testing.T) {
	data, err := brackets.Generate(brackets.GenerateParams{
		Format:  brackets.FormatSingleElimination,
		TeamIDs: []int{1, 2, 3, 4},
	})
	require.NoError(t, err)

	tournament := drawTestTournament()
	tournament.DrawCompleted = true
	groups := newFakeGroupRepo(
		&models.Group{ID: 1, TournamentID: 1, Letter: "A", TeamIDs: []int64{1, 2, 3, 4}},
	)
	records := newFakeBracketRepo(storedBracketRecord(t, 1, data))
	svc := newBracketServiceForTest(newFakeTournamentRepo(tournament), newFakeRegistrationRepo(), groups, newFakeMatchRepo(), records)

	view, err := svc.GetBracket(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, view.DrawCompleted)
	require.NotNil(t, view.Tournament)
	require.Len(t, view.Groups, 1)
	require.NotNil(t, view.Bracket)
	assert.Len(t, view.Bracket.Rounds, 2)
	assert.Nil(t, view.SnapshotURL)
}

func TestGetBracketWithoutStoredBracket(t *testing.T) {
	svc := newBracketServiceForTest(newFakeTournamentRepo(drawTestTournament()), newFakeRegistrationRepo(), newFakeGroupRepo(), newFakeMatchRepo(), newFakeBracketRepo())

	view, err := svc.GetBracket(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, view.Bracket)
	assert.False(t, view.DrawCompleted)
}

func TestGetBracketUnknownTournament(t *testing.T) {
	svc := newBracketServiceForTest(newFakeTournamentRepo(), newFakeRegistrationRepo(), newFakeGroupRepo(), newFakeMatchRepo(), newFakeBracketRepo())

	_, err := svc.GetBracket(context.Background(), 42)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestUpdateBracketMatchAdvancesWinner(t *testing.T) {
	data, err := brackets.Generate(brackets.GenerateParams{
		Format:  brackets.FormatSingleElimination,
		TeamIDs: []int{1, 2, 3, 4},
	})
	require.NoError(t, err)

	records := newFakeBracketRepo(storedBracketRecord(t, 1, data))
	svc := newBracketServiceForTest(newFakeTournamentRepo(drawTestTournament()), newFakeRegistrationRepo(), newFakeGroupRepo(), newFakeMatchRepo(), records)

	updated, err := svc.UpdateBracketMatch(context.Background(), 1, "R1M1", MatchResultInput{Score1: 2, Score2: 1}, organizerActor)
	require.NoError(t, err)

	match := updated.FindMatch("R1M1")
	require.NotNil(t, match)
	assert.Equal(t, brackets.MatchCompleted, match.Status)
	require.NotNil(t, match.WinnerID)
	assert.Equal(t, 1, *match.WinnerID)
	require.NotNil(t, match.LoserID)
	assert.Equal(t, 2, *match.LoserID)

	final := updated.FindMatch("R2M1")
	require.NotNil(t, final)
	require.NotNil(t, final.Team1ID)
	assert.Equal(t, 1, *final.Team1ID)

	// The persisted copy carries the result too.
	stored, err := records.GetByTournament(context.Background(), 1)
	require.NoError(t, err)
	persisted := &brackets.BracketData{}
	require.NoError(t, json.Unmarshal([]byte(stored.DataJSON), persisted))
	assert.NotNil(t, persisted.FindMatch("R1M1").WinnerID)
}

func TestUpdateBracketMatchDrawNeedsManualWinner(t *testing.T) {
	data, err := brackets.Generate(brackets.GenerateParams{
		Format:  brackets.FormatSingleElimination,
		TeamIDs: []int{1, 2, 3, 4},
	})
	require.NoError(t, err)

	records := newFakeBracketRepo(storedBracketRecord(t, 1, data))
	svc := newBracketServiceForTest(newFakeTournamentRepo(drawTestTournament()), newFakeRegistrationRepo(), newFakeGroupRepo(), newFakeMatchRepo(), records)
	ctx := context.Background()

	_, err = svc.UpdateBracketMatch(ctx, 1, "R1M1", MatchResultInput{Score1: 1, Score2: 1}, organizerActor)
	assert.ErrorIs(t, err, ErrWinnerRequired)

	updated, err := svc.UpdateBracketMatch(ctx, 1, "R1M1", MatchResultInput{Score1: 1, Score2: 1, ManualWinnerID: intPtrCopy(2)}, organizerActor)
	require.NoError(t, err)
	assert.Equal(t, 2, *updated.FindMatch("R1M1").WinnerID)
}

func TestUpdateBracketMatchValidation(t *testing.T) {
	data, err := brackets.Generate(brackets.GenerateParams{
		Format:  brackets.FormatSingleElimination,
		TeamIDs: []int{1, 2, 3, 4},
	})
	require.NoError(t, err)

	records := newFakeBracketRepo(storedBracketRecord(t, 1, data))
	svc := newBracketServiceForTest(newFakeTournamentRepo(drawTestTournament()), newFakeRegistrationRepo(), newFakeGroupRepo(), newFakeMatchRepo(), records)
	ctx := context.Background()

	_, err = svc.UpdateBracketMatch(ctx, 1, "R1M1", MatchResultInput{Score1: -1, Score2: 0}, organizerActor)
	assert.ErrorIs(t, err, ErrInvalidMatchScore)

	_, err = svc.UpdateBracketMatch(ctx, 1, "R9M9", MatchResultInput{Score1: 1, Score2: 0}, organizerActor)
	assert.ErrorIs(t, err, ErrMatchNotFound)

	// The final has no teams until the semi-finals finish.
	_, err = svc.UpdateBracketMatch(ctx, 1, "R2M1", MatchResultInput{Score1: 1, Score2: 0}, organizerActor)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestGetGroupStandings(t *testing.T) {
	tournament := drawTestTournament()
	groups := newFakeGroupRepo(
		&models.Group{ID: 1, TournamentID: 1, Letter: "A", TeamIDs: []int64{1, 2}, DisplayOrder: 0},
		&models.Group{ID: 2, TournamentID: 1, Letter: "B", TeamIDs: []int64{3, 4}, DisplayOrder: 1},
	)
	matches := newFakeMatchRepo(&models.Match{
		ID:                  1,
		TournamentID:        1,
		GroupID:             1,
		Team1RegistrationID: intPtrCopy(2),
		Team2RegistrationID: intPtrCopy(1),
		Score1:              intPtrCopy(3),
		Score2:              intPtrCopy(0),
		Status:              models.MatchCompleted,
	})
	svc := newBracketServiceForTest(newFakeTournamentRepo(tournament), newFakeRegistrationRepo(), groups, matches, newFakeBracketRepo())

	views, err := svc.GetGroupStandings(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, "A", views[0].Letter)
	require.Len(t, views[0].Standings, 2)
	assert.Equal(t, 2, views[0].Standings[0].RegistrationID)
	assert.Equal(t, 3, views[0].Standings[0].Points)

	assert.Equal(t, "B", views[1].Letter)
	assert.Equal(t, 0, views[1].Standings[0].Points)
}

func TestSeedKnockoutFromGroups(t *testing.T) {
	shape, err := brackets.Generate(brackets.GenerateParams{
		Format:    brackets.FormatSingleElimination,
		TeamCount: 4,
	})
	require.NoError(t, err)

	tournament := drawTestTournament()
	tournament.DrawCompleted = true
	groups := newFakeGroupRepo(
		&models.Group{ID: 1, TournamentID: 1, Letter: "A", TeamIDs: []int64{1, 2}, DisplayOrder: 0},
		&models.Group{ID: 2, TournamentID: 1, Letter: "B", TeamIDs: []int64{3, 4}, DisplayOrder: 1},
	)
	// Team 2 wins group A; group B stays unplayed so registration order
	// ranks it.
	matches := newFakeMatchRepo(&models.Match{
		ID:                  1,
		TournamentID:        1,
		GroupID:             1,
		Team1RegistrationID: intPtrCopy(2),
		Team2RegistrationID: intPtrCopy(1),
		Score1:              intPtrCopy(2),
		Score2:              intPtrCopy(0),
		Status:              models.MatchCompleted,
	})
	records := newFakeBracketRepo(storedBracketRecord(t, 1, shape))
	svc := newBracketServiceForTest(newFakeTournamentRepo(tournament), newFakeRegistrationRepo(), groups, matches, records)

	data, err := svc.SeedKnockoutFromGroups(context.Background(), 1, organizerActor)
	require.NoError(t, err)

	firstRound := data.Rounds[0].Matches
	require.Len(t, firstRound, 2)
	// Interleaved crossing: winner A meets runner-up B and vice versa.
	assert.Equal(t, 2, *firstRound[0].Team1ID)
	assert.Equal(t, 4, *firstRound[0].Team2ID)
	assert.Equal(t, 1, *firstRound[1].Team1ID)
	assert.Equal(t, 3, *firstRound[1].Team2ID)
}

func TestSeedKnockoutFromGroupsWithoutBracket(t *testing.T) {
	svc := newBracketServiceForTest(newFakeTournamentRepo(drawTestTournament()), newFakeRegistrationRepo(), newFakeGroupRepo(), newFakeMatchRepo(), newFakeBracketRepo())

	_, err := svc.SeedKnockoutFromGroups(context.Background(), 1, organizerActor)
	assert.ErrorIs(t, err, ErrBracketNotFound)
}

func TestDeleteBracket(t *testing.T) {
	data, err := brackets.Generate(brackets.GenerateParams{
		Format:    brackets.FormatSingleElimination,
		TeamCount: 4,
	})
	require.NoError(t, err)

	records := newFakeBracketRepo(storedBracketRecord(t, 1, data))
	svc := newBracketServiceForTest(newFakeTournamentRepo(drawTestTournament()), newFakeRegistrationRepo(), newFakeGroupRepo(), newFakeMatchRepo(), records)

	require.NoError(t, svc.DeleteBracket(context.Background(), 1, organizerActor))

	_, err = records.GetByTournament(context.Background(), 1)
	assert.Error(t, err)
}
