package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Giovo8/gst-tennis-academy-sub005/models"
	"github.com/Giovo8/gst-tennis-academy-sub005/repositories"
	"github.com/stretchr/testify/require"
)

// stubDriver backs the *sql.DB handed to services under test. All data
// access goes through the fake repositories, so the driver only has to
// hand out no-op transactions.
type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (stubConn) Close() error                        { return nil }
func (stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

var registerStubDriver sync.Once

func newStubDB(t *testing.T) *sql.DB {
	t.Helper()
	registerStubDriver.Do(func() { sql.Register("stubtx", stubDriver{}) })
	db, err := sql.Open("stubtx", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func phaseFilter(p models.Phase) repositories.ListMatchesFilter {
	return repositories.ListMatchesFilter{Phase: &p}
}

type fakeUserRepo struct {
	nextID int
	users  map[int]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	r.nextID++
	user.ID = r.nextID
	c := *user
	r.users[user.ID] = &c
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

type fakeTournamentRepo struct {
	nextID      int
	tournaments map[int]*models.Tournament
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament)}
}

func (r *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	for _, existing := range r.tournaments {
		if existing.Name == t.Name {
			return repositories.ErrTournamentNameConflict
		}
	}
	r.nextID++
	t.ID = r.nextID
	t.CreatedAt = time.Now()
	c := *t
	r.tournaments[t.ID] = &c
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	c := *t
	return &c, nil
}

func (r *fakeTournamentRepo) List(_ context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error) {
	var out []*models.Tournament
	for _, t := range r.tournaments {
		if filter.Type != nil && t.Type != *filter.Type {
			continue
		}
		if filter.Phase != nil && t.Phase != *filter.Phase {
			continue
		}
		if filter.OrganizerID != nil && t.OrganizerID != *filter.OrganizerID {
			continue
		}
		c := *t
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTournamentRepo) UpdatePhase(_ context.Context, _ repositories.SQLExecutor, id int, phase models.Phase) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Phase = phase
	return nil
}

func (r *fakeTournamentRepo) UpdateLogoKey(_ context.Context, id int, logoKey *string) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.LogoKey = logoKey
	return nil
}

func (r *fakeTournamentRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

type fakeParticipantRepo struct {
	nextID       int
	participants map[int]*models.Participant
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{participants: make(map[int]*models.Participant)}
}

func (r *fakeParticipantRepo) Create(_ context.Context, p *models.Participant) error {
	for _, existing := range r.participants {
		if existing.TournamentID != p.TournamentID {
			continue
		}
		if existing.UserID == p.UserID {
			return repositories.ErrParticipantConflict
		}
		if existing.Seed != nil && p.Seed != nil && *existing.Seed == *p.Seed {
			return repositories.ErrParticipantSeedConflict
		}
	}
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now()
	c := *p
	r.participants[p.ID] = &c
	return nil
}

func (r *fakeParticipantRepo) GetByID(_ context.Context, id int) (*models.Participant, error) {
	p, ok := r.participants[id]
	if !ok {
		return nil, repositories.ErrParticipantNotFound
	}
	c := *p
	return &c, nil
}

func (r *fakeParticipantRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.Participant, error) {
	var out []*models.Participant
	for _, p := range r.participants {
		if p.TournamentID == tournamentID {
			c := *p
			out = append(out, &c)
		}
	}
	// Seeded first in seed order, then registration order.
	sort.Slice(out, func(i, j int) bool {
		si, sj := out[i].Seed, out[j].Seed
		switch {
		case si != nil && sj != nil:
			return *si < *sj
		case si != nil:
			return true
		case sj != nil:
			return false
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeParticipantRepo) UpdateSeed(_ context.Context, _ repositories.SQLExecutor, id int, seed int) error {
	p, ok := r.participants[id]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	s := seed
	p.Seed = &s
	return nil
}

func (r *fakeParticipantRepo) UpdateGroup(_ context.Context, _ repositories.SQLExecutor, id int, groupID int) error {
	p, ok := r.participants[id]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	g := groupID
	p.GroupID = &g
	return nil
}

type fakeGroupRepo struct {
	nextID int
	groups map[int]*models.Group
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: make(map[int]*models.Group)}
}

func (r *fakeGroupRepo) Create(_ context.Context, _ repositories.SQLExecutor, g *models.Group) error {
	for _, existing := range r.groups {
		if existing.TournamentID == g.TournamentID && existing.Name == g.Name {
			return repositories.ErrGroupConflict
		}
	}
	r.nextID++
	g.ID = r.nextID
	g.CreatedAt = time.Now()
	c := *g
	r.groups[g.ID] = &c
	return nil
}

func (r *fakeGroupRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.Group, error) {
	var out []*models.Group
	for _, g := range r.groups {
		if g.TournamentID == tournamentID {
			c := *g
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeGroupRepo) GetByID(_ context.Context, id int) (*models.Group, error) {
	g, ok := r.groups[id]
	if !ok {
		return nil, repositories.ErrGroupNotFound
	}
	c := *g
	return &c, nil
}

type fakeMatchRepo struct {
	nextID  int
	matches map[int]*models.Match
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]*models.Match)}
}

func (r *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	for _, existing := range r.matches {
		if existing.TournamentID == m.TournamentID && existing.MatchNumber == m.MatchNumber {
			return repositories.ErrMatchNumberConflict
		}
	}
	r.nextID++
	m.ID = r.nextID
	m.CreatedAt = time.Now()
	c := *m
	r.matches[m.ID] = &c
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	c := *m
	return &c, nil
}

func (r *fakeMatchRepo) GetByMatchNumber(_ context.Context, _ repositories.SQLExecutor, tournamentID, matchNumber int) (*models.Match, error) {
	for _, m := range r.matches {
		if m.TournamentID == tournamentID && m.MatchNumber == matchNumber {
			c := *m
			return &c, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) ListByTournament(_ context.Context, tournamentID int, filter repositories.ListMatchesFilter) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.matches {
		if m.TournamentID != tournamentID {
			continue
		}
		if filter.Phase != nil && m.Phase != *filter.Phase {
			continue
		}
		if filter.GroupID != nil && (m.GroupID == nil || *m.GroupID != *filter.GroupID) {
			continue
		}
		if filter.Round != nil && m.Round != *filter.Round {
			continue
		}
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		c := *m
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MatchNumber < out[j].MatchNumber })
	return out, nil
}

func (r *fakeMatchRepo) CountByPhase(_ context.Context, _ repositories.SQLExecutor, tournamentID int, phase models.Phase) (int, error) {
	count := 0
	for _, m := range r.matches {
		if m.TournamentID == tournamentID && m.Phase == phase {
			count++
		}
	}
	return count, nil
}

func (r *fakeMatchRepo) MaxMatchNumber(_ context.Context, _ repositories.SQLExecutor, tournamentID int) (int, error) {
	max := 0
	for _, m := range r.matches {
		if m.TournamentID == tournamentID && m.MatchNumber > max {
			max = m.MatchNumber
		}
	}
	return max, nil
}

func (r *fakeMatchRepo) UpdateResult(_ context.Context, _ repositories.SQLExecutor, id int, sets models.SetScores, status models.MatchStatus, winnerID *int) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Sets = sets
	m.Status = status
	m.WinnerID = winnerID
	return nil
}

func (r *fakeMatchRepo) UpdateSlot(_ context.Context, _ repositories.SQLExecutor, id int, slot int, participantID int) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	pid := participantID
	switch slot {
	case 1:
		m.P1ID = &pid
	case 2:
		m.P2ID = &pid
	default:
		return errors.New("invalid slot")
	}
	return nil
}
