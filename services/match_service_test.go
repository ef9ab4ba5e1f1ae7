package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sport-Tournaments/sport-tournaments-backend/live"
	"github.com/Sport-Tournaments/sport-tournaments-backend/models"
)

func newMatchServiceForTest(
	tournaments *fakeTournamentRepo,
	groups *fakeGroupRepo,
	matches *fakeMatchRepo,
) *matchService {
	return &matchService{
		tournamentRepo: tournaments,
		groupRepo:      groups,
		matchRepo:      matches,
		hub:            live.NewHub(),
		logger:         testLogger(),
	}
}

func pendingGroupMatch(id, team1, team2 int) *models.Match {
	return &models.Match{
		ID:                  id,
		TournamentID:        1,
		GroupID:             1,
		Team1RegistrationID: intPtrCopy(team1),
		Team2RegistrationID: intPtrCopy(team2),
		Status:              models.MatchPending,
	}
}

func TestEnterResultRecordsWinner(t *testing.T) {
	matches := newFakeMatchRepo(pendingGroupMatch(1, 100, 101))
	svc := newMatchServiceForTest(newFakeTournamentRepo(drawTestTournament()), newFakeGroupRepo(), matches)

	match, err := svc.EnterResult(context.Background(), 1, GroupMatchResultInput{Score1: 2, Score2: 1}, organizerActor)
	require.NoError(t, err)
	assert.Equal(t, models.MatchCompleted, match.Status)
	require.NotNil(t, match.WinnerRegistrationID)
	assert.Equal(t, 100, *match.WinnerRegistrationID)

	stored, err := matches.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.MatchCompleted, stored.Status)
}

func TestEnterResultDrawLeavesWinnerEmpty(t *testing.T) {
	matches := newFakeMatchRepo(pendingGroupMatch(1, 100, 101))
	svc := newMatchServiceForTest(newFakeTournamentRepo(drawTestTournament()), newFakeGroupRepo(), matches)

	match, err := svc.EnterResult(context.Background(), 1, GroupMatchResultInput{Score1: 1, Score2: 1}, organizerActor)
	require.NoError(t, err)
	assert.Equal(t, models.MatchCompleted, match.Status)
	assert.Nil(t, match.WinnerRegistrationID)
}

func TestEnterResultValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("negative score", func(t *testing.T) {
		svc := newMatchServiceForTest(newFakeTournamentRepo(drawTestTournament()), newFakeGroupRepo(), newFakeMatchRepo())

		_, err := svc.EnterResult(ctx, 1, GroupMatchResultInput{Score1: -1, Score2: 0}, organizerActor)
		assert.ErrorIs(t, err, ErrInvalidMatchScore)
	})

	t.Run("unknown match", func(t *testing.T) {
		svc := newMatchServiceForTest(newFakeTournamentRepo(drawTestTournament()), newFakeGroupRepo(), newFakeMatchRepo())

		_, err := svc.EnterResult(ctx, 99, GroupMatchResultInput{Score1: 1, Score2: 0}, organizerActor)
		assert.ErrorIs(t, err, ErrMatchNotFound)
	})

	t.Run("forbidden for other organizers", func(t *testing.T) {
		matches := newFakeMatchRepo(pendingGroupMatch(1, 100, 101))
		svc := newMatchServiceForTest(newFakeTournamentRepo(drawTestTournament()), newFakeGroupRepo(), matches)

		_, err := svc.EnterResult(ctx, 1, GroupMatchResultInput{Score1: 1, Score2: 0}, Actor{UserID: 55, Role: models.RoleOrganizer})
		assert.ErrorIs(t, err, ErrForbiddenOperation)
	})

	t.Run("unassigned teams", func(t *testing.T) {
		match := pendingGroupMatch(1, 100, 101)
		match.Team2RegistrationID = nil
		svc := newMatchServiceForTest(newFakeTournamentRepo(drawTestTournament()), newFakeGroupRepo(), newFakeMatchRepo(match))

		_, err := svc.EnterResult(ctx, 1, GroupMatchResultInput{Score1: 1, Score2: 0}, organizerActor)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})
}

func TestGenerateGroupFixturesRequiresCompletedDraw(t *testing.T) {
	svc := newMatchServiceForTest(newFakeTournamentRepo(drawTestTournament()), newFakeGroupRepo(), newFakeMatchRepo())

	_, err := svc.GenerateGroupFixtures(context.Background(), 1, organizerActor)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestGenerateGroupFixturesRequiresGroups(t *testing.T) {
	tournament := drawTestTournament()
	tournament.DrawCompleted = true
	svc := newMatchServiceForTest(newFakeTournamentRepo(tournament), newFakeGroupRepo(), newFakeMatchRepo())

	_, err := svc.GenerateGroupFixtures(context.Background(), 1, organizerActor)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestGroupMatchTime(t *testing.T) {
	start := time.Date(2026, time.June, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, start, groupMatchTime(start, 1))
	assert.Equal(t, start.AddDate(0, 0, 2), groupMatchTime(start, 3))
	// Round numbers below 1 clamp to the start date.
	assert.Equal(t, start, groupMatchTime(start, 0))
}

func TestListByGroup(t *testing.T) {
	groups := newFakeGroupRepo(&models.Group{ID: 1, TournamentID: 1, Letter: "A"})
	matches := newFakeMatchRepo(pendingGroupMatch(1, 100, 101), pendingGroupMatch(2, 102, 103))
	svc := newMatchServiceForTest(newFakeTournamentRepo(), groups, matches)

	listed, err := svc.ListByGroup(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	_, err = svc.ListByGroup(context.Background(), 9)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}
