package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Sport-Tournaments/sport-tournaments-backend/models"
	"github.com/Sport-Tournaments/sport-tournaments-backend/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubTxDriver backs a *sql.DB whose transactions begin and commit without a
// database. The fake repositories ignore the executor they are handed, so
// services that wrap their writes in a transaction can run end to end.
type stubTxDriver struct{}

func (stubTxDriver) Open(string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("statements are not supported") }
func (stubConn) Close() error                        { return nil }
func (stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

func init() {
	sql.Register("stubtx", stubTxDriver{})
}

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("stubtx", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
	statusCalls []models.TournamentStatus
}

func newFakeTournamentRepo(tournaments ...*models.Tournament) *fakeTournamentRepo {
	repo := &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament)}
	for _, t := range tournaments {
		repo.tournaments[t.ID] = t
	}
	return repo
}

func (r *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	t.ID = len(r.tournaments) + 1
	t.CreatedAt = time.Now()
	r.tournaments[t.ID] = t
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	out := make([]models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	r.statusCalls = append(r.statusCalls, status)
	return nil
}

func (r *fakeTournamentRepo) SetDrawCompleted(ctx context.Context, exec repositories.SQLExecutor, id int, completed bool, drawSeed *string) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.DrawCompleted = completed
	t.DrawSeed = drawSeed
	return nil
}

func (r *fakeTournamentRepo) GetTournamentsForAutoStatusUpdate(ctx context.Context, exec repositories.SQLExecutor, currentTime time.Time) ([]*models.Tournament, error) {
	var due []*models.Tournament
	for _, t := range r.tournaments {
		switch t.Status {
		case models.StatusSoon:
			if !t.RegDate.After(currentTime) {
				due = append(due, t)
			}
		case models.StatusRegistration:
			if !t.StartDate.After(currentTime) {
				due = append(due, t)
			}
		case models.StatusActive:
			if !t.EndDate.After(currentTime) {
				due = append(due, t)
			}
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })
	return due, nil
}

type fakeRegistrationRepo struct {
	registrations map[int]*models.Registration
}

func newFakeRegistrationRepo(registrations ...*models.Registration) *fakeRegistrationRepo {
	repo := &fakeRegistrationRepo{registrations: make(map[int]*models.Registration)}
	for _, reg := range registrations {
		repo.registrations[reg.ID] = reg
	}
	return repo
}

func (r *fakeRegistrationRepo) GetByID(ctx context.Context, id int) (*models.Registration, error) {
	reg, ok := r.registrations[id]
	if !ok {
		return nil, repositories.ErrRegistrationNotFound
	}
	return reg, nil
}

func (r *fakeRegistrationRepo) ListByTournament(ctx context.Context, tournamentID int, status *models.RegistrationStatus) ([]*models.Registration, error) {
	var out []*models.Registration
	for _, reg := range r.registrations {
		if reg.TournamentID != tournamentID {
			continue
		}
		if status != nil && reg.Status != *status {
			continue
		}
		out = append(out, reg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRegistrationRepo) CountByTournament(ctx context.Context, tournamentID int, status *models.RegistrationStatus) (int, error) {
	regs, _ := r.ListByTournament(ctx, tournamentID, status)
	return len(regs), nil
}

type fakeGroupRepo struct {
	groups map[int]*models.Group
	nextID int
}

func newFakeGroupRepo(groups ...*models.Group) *fakeGroupRepo {
	repo := &fakeGroupRepo{groups: make(map[int]*models.Group), nextID: 1}
	for _, g := range groups {
		repo.groups[g.ID] = g
		if g.ID >= repo.nextID {
			repo.nextID = g.ID + 1
		}
	}
	return repo
}

func (r *fakeGroupRepo) Create(ctx context.Context, exec repositories.SQLExecutor, group *models.Group) error {
	group.ID = r.nextID
	r.nextID++
	group.CreatedAt = time.Now()
	r.groups[group.ID] = group
	return nil
}

func (r *fakeGroupRepo) GetByID(ctx context.Context, id int) (*models.Group, error) {
	g, ok := r.groups[id]
	if !ok {
		return nil, repositories.ErrGroupNotFound
	}
	return g, nil
}

func (r *fakeGroupRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Group, error) {
	var out []*models.Group
	for _, g := range r.groups {
		if g.TournamentID == tournamentID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

func (r *fakeGroupRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	for id, g := range r.groups {
		if g.TournamentID == tournamentID {
			delete(r.groups, id)
		}
	}
	return nil
}

type fakePotRepo struct {
	pots   map[int]*models.TournamentPot
	nextID int
}

func newFakePotRepo(pots ...*models.TournamentPot) *fakePotRepo {
	repo := &fakePotRepo{pots: make(map[int]*models.TournamentPot), nextID: 1}
	for _, p := range pots {
		if p.ID == 0 {
			p.ID = repo.nextID
		}
		repo.pots[p.ID] = p
		if p.ID >= repo.nextID {
			repo.nextID = p.ID + 1
		}
	}
	return repo
}

func (r *fakePotRepo) Create(ctx context.Context, pot *models.TournamentPot) error {
	for _, existing := range r.pots {
		if existing.TournamentID == pot.TournamentID && existing.RegistrationID == pot.RegistrationID {
			return repositories.ErrPotAssignmentConflict
		}
	}
	pot.ID = r.nextID
	r.nextID++
	pot.CreatedAt = time.Now()
	r.pots[pot.ID] = pot
	return nil
}

func (r *fakePotRepo) UpdatePotNumber(ctx context.Context, id int, potNumber int) error {
	p, ok := r.pots[id]
	if !ok {
		return repositories.ErrPotAssignmentNotFound
	}
	p.PotNumber = potNumber
	return nil
}

func (r *fakePotRepo) GetByTournamentAndRegistration(ctx context.Context, tournamentID, registrationID int) (*models.TournamentPot, error) {
	for _, p := range r.pots {
		if p.TournamentID == tournamentID && p.RegistrationID == registrationID {
			return p, nil
		}
	}
	return nil, repositories.ErrPotAssignmentNotFound
}

func (r *fakePotRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.TournamentPot, error) {
	var out []*models.TournamentPot
	for _, p := range r.pots {
		if p.TournamentID == tournamentID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PotNumber != out[j].PotNumber {
			return out[i].PotNumber < out[j].PotNumber
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakePotRepo) DeleteByTournament(ctx context.Context, tournamentID int) error {
	for id, p := range r.pots {
		if p.TournamentID == tournamentID {
			delete(r.pots, id)
		}
	}
	return nil
}

type fakeMatchRepo struct {
	matches map[int]*models.Match
	nextID  int
}

func newFakeMatchRepo(matches ...*models.Match) *fakeMatchRepo {
	repo := &fakeMatchRepo{matches: make(map[int]*models.Match), nextID: 1}
	for _, m := range matches {
		repo.matches[m.ID] = m
		if m.ID >= repo.nextID {
			repo.nextID = m.ID + 1
		}
	}
	return repo
}

func (r *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	m.ID = r.nextID
	r.nextID++
	m.CreatedAt = time.Now()
	r.matches[m.ID] = m
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return m, nil
}

func (r *fakeMatchRepo) ListByGroup(ctx context.Context, groupID int) ([]models.Match, error) {
	var out []models.Match
	for _, m := range r.matches {
		if m.GroupID == groupID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMatchRepo) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	stored, ok := r.matches[m.ID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	*stored = *m
	return nil
}

func (r *fakeMatchRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	for id, m := range r.matches {
		if m.TournamentID == tournamentID {
			delete(r.matches, id)
		}
	}
	return nil
}

type fakeBracketRepo struct {
	records map[int]*models.BracketRecord
}

func newFakeBracketRepo(records ...*models.BracketRecord) *fakeBracketRepo {
	repo := &fakeBracketRepo{records: make(map[int]*models.BracketRecord)}
	for _, rec := range records {
		repo.records[rec.TournamentID] = rec
	}
	return repo
}

func (r *fakeBracketRepo) Save(ctx context.Context, exec repositories.SQLExecutor, record *models.BracketRecord) error {
	record.ID = record.TournamentID
	r.records[record.TournamentID] = record
	return nil
}

func (r *fakeBracketRepo) GetByTournament(ctx context.Context, tournamentID int) (*models.BracketRecord, error) {
	rec, ok := r.records[tournamentID]
	if !ok {
		return nil, repositories.ErrBracketNotFound
	}
	return rec, nil
}

func (r *fakeBracketRepo) UpdateData(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, dataJSON string) error {
	rec, ok := r.records[tournamentID]
	if !ok {
		return repositories.ErrBracketNotFound
	}
	rec.DataJSON = dataJSON
	return nil
}

func (r *fakeBracketRepo) UpdateSnapshotKey(ctx context.Context, tournamentID int, snapshotKey *string) error {
	rec, ok := r.records[tournamentID]
	if !ok {
		return repositories.ErrBracketNotFound
	}
	rec.SnapshotKey = snapshotKey
	return nil
}

func (r *fakeBracketRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	delete(r.records, tournamentID)
	return nil
}
