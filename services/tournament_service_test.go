package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sport-Tournaments/sport-tournaments-backend/models"
)

func newTournamentServiceForTest(tournaments *fakeTournamentRepo) *tournamentService {
	return &tournamentService{
		tournamentRepo: tournaments,
		logger:         testLogger(),
	}
}

func validCreateInput() CreateTournamentInput {
	now := time.Now()
	return CreateTournamentInput{
		Name:      "Summer Cup",
		RegDate:   now.Add(24 * time.Hour),
		StartDate: now.Add(7 * 24 * time.Hour),
		EndDate:   now.Add(9 * 24 * time.Hour),
		MaxTeams:  16,
	}
}

func TestCreateTournament(t *testing.T) {
	tournaments := newFakeTournamentRepo()
	svc := newTournamentServiceForTest(tournaments)

	created, err := svc.Create(context.Background(), validCreateInput(), organizerActor)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, organizerActor.UserID, created.OrganizerID)
	assert.Equal(t, models.StatusSoon, created.Status)
}

func TestCreateTournamentValidation(t *testing.T) {
	svc := newTournamentServiceForTest(newFakeTournamentRepo())
	ctx := context.Background()

	t.Run("requires organizer role", func(t *testing.T) {
		_, err := svc.Create(ctx, validCreateInput(), Actor{UserID: 1, Role: "spectator"})
		assert.ErrorIs(t, err, ErrForbiddenOperation)
	})

	t.Run("requires a name", func(t *testing.T) {
		input := validCreateInput()
		input.Name = ""
		_, err := svc.Create(ctx, input, organizerActor)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("dates must be ordered", func(t *testing.T) {
		input := validCreateInput()
		input.StartDate = input.EndDate.Add(time.Hour)
		_, err := svc.Create(ctx, input, organizerActor)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("needs at least two teams", func(t *testing.T) {
		input := validCreateInput()
		input.MaxTeams = 1
		_, err := svc.Create(ctx, input, organizerActor)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})
}

func TestUpdateStatus(t *testing.T) {
	tournaments := newFakeTournamentRepo(drawTestTournament())
	svc := newTournamentServiceForTest(tournaments)
	ctx := context.Background()

	require.NoError(t, svc.UpdateStatus(ctx, 1, models.StatusActive, organizerActor))
	stored, err := tournaments.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, stored.Status)

	err = svc.UpdateStatus(ctx, 1, models.TournamentStatus("paused"), organizerActor)
	assert.ErrorIs(t, err, ErrValidationFailed)

	err = svc.UpdateStatus(ctx, 1, models.StatusCanceled, Actor{UserID: 55, Role: models.RoleOrganizer})
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	err = svc.UpdateStatus(ctx, 9, models.StatusCanceled, organizerActor)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestNextStatusForDates(t *testing.T) {
	now := time.Now().UTC()

	soon := &models.Tournament{Status: models.StatusSoon, RegDate: now.Add(-time.Hour)}
	next, ok := nextStatusForDates(soon, now)
	require.True(t, ok)
	assert.Equal(t, models.StatusRegistration, next)

	registering := &models.Tournament{Status: models.StatusRegistration, StartDate: now.Add(-time.Hour)}
	next, ok = nextStatusForDates(registering, now)
	require.True(t, ok)
	assert.Equal(t, models.StatusActive, next)

	active := &models.Tournament{Status: models.StatusActive, EndDate: now.Add(-time.Hour)}
	next, ok = nextStatusForDates(active, now)
	require.True(t, ok)
	assert.Equal(t, models.StatusCompleted, next)

	// Not due yet or in a terminal state: no transition.
	_, ok = nextStatusForDates(&models.Tournament{Status: models.StatusSoon, RegDate: now.Add(time.Hour)}, now)
	assert.False(t, ok)
	_, ok = nextStatusForDates(&models.Tournament{Status: models.StatusCompleted}, now)
	assert.False(t, ok)
	_, ok = nextStatusForDates(&models.Tournament{Status: models.StatusCanceled}, now)
	assert.False(t, ok)
}

func TestAutoUpdateStatusesByDates(t *testing.T) {
	now := time.Now().UTC()
	dueSoon := &models.Tournament{ID: 1, Status: models.StatusSoon, RegDate: now.Add(-time.Hour), StartDate: now.Add(24 * time.Hour), EndDate: now.Add(48 * time.Hour)}
	dueActive := &models.Tournament{ID: 2, Status: models.StatusActive, EndDate: now.Add(-time.Hour)}
	notDue := &models.Tournament{ID: 3, Status: models.StatusRegistration, StartDate: now.Add(24 * time.Hour)}

	tournaments := newFakeTournamentRepo(dueSoon, dueActive, notDue)
	svc := newTournamentServiceForTest(tournaments)

	updated, err := svc.AutoUpdateStatusesByDates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	assert.Equal(t, models.StatusRegistration, dueSoon.Status)
	assert.Equal(t, models.StatusCompleted, dueActive.Status)
	assert.Equal(t, models.StatusRegistration, notDue.Status)
}

func TestGetByIDUnknownTournament(t *testing.T) {
	svc := newTournamentServiceForTest(newFakeTournamentRepo())

	_, err := svc.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
