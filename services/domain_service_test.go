package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Harsha29-kns/scorecraft-backend/models"
	"github.com/Harsha29-kns/scorecraft-backend/realtime"
	"github.com/Harsha29-kns/scorecraft-backend/repositories"
)

// Заглушка database/sql-драйвера: сервису нужен *sql.DB только ради
// BeginTx/Commit/Rollback, вся работа с данными идёт через фейковые
// репозитории.
type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (stubConn) Close() error                        { return nil }
func (stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

func init() {
	sql.Register("txstub", stubDriver{})
}

func newStubDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("txstub", "")
	if err != nil {
		t.Fatalf("open stub db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubSettingsRepo struct {
	repositories.SettingsRepository
	settings models.RegistrationSettings
}

func (r *stubSettingsRepo) Get(context.Context, repositories.SQLExecutor) (*models.RegistrationSettings, error) {
	cp := r.settings
	return &cp, nil
}

// raceTeamRepo моделирует гонку двух заявок одной команды: GetByID отдаёт
// снимок до любой записи, поэтому быстрый отказ по team.DomainID проходят
// обе заявки и арбитром остаётся условное присвоение.
type raceTeamRepo struct {
	repositories.TeamRepository

	mu       sync.Mutex
	team     models.Team
	assigned *int
	setCalls int
}

func (r *raceTeamRepo) GetByID(context.Context, int) (*models.Team, error) {
	cp := r.team
	cp.DomainID = nil
	return &cp, nil
}

func (r *raceTeamRepo) SetDomainIfUnset(_ context.Context, _ repositories.SQLExecutor, _, domainID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setCalls++
	if r.assigned != nil {
		return repositories.ErrTeamDomainAlreadySet
	}
	id := domainID
	r.assigned = &id
	return nil
}

func (r *raceTeamRepo) GetWithDetails(context.Context, int) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := r.team
	cp.DomainID = r.assigned
	return &cp, nil
}

type slotDomainRepo struct {
	repositories.DomainRepository

	mu    sync.Mutex
	slots map[int]int
}

func (r *slotDomainRepo) ClaimSlot(_ context.Context, _ repositories.SQLExecutor, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	left, ok := r.slots[id]
	if !ok {
		return repositories.ErrDomainNotFound
	}
	if left <= 0 {
		return repositories.ErrDomainFull
	}
	r.slots[id] = left - 1
	return nil
}

func (r *slotDomainRepo) List(context.Context) ([]*models.Domain, error) {
	return []*models.Domain{}, nil
}

func newSelectFixture(t *testing.T, slots map[int]int) (DomainService, *raceTeamRepo) {
	t.Helper()
	open := time.Now().Add(-time.Hour)
	teamRepo := &raceTeamRepo{team: models.Team{ID: 1, Name: "Night Owls"}}
	svc := NewDomainService(
		newStubDB(t),
		&slotDomainRepo{slots: slots},
		teamRepo,
		&stubSettingsRepo{settings: models.RegistrationSettings{DomainOpenTime: &open}},
		realtime.NewHub(),
		discardLogger(),
	)
	return svc, teamRepo
}

func TestSelectDomainDoubleSubmitAssignsOnce(t *testing.T) {
	svc, teamRepo := newSelectFixture(t, map[int]int{7: 5})

	team, err := svc.SelectDomain(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("first selection: %v", err)
	}
	if team.DomainID == nil || *team.DomainID != 7 {
		t.Fatalf("first selection did not assign domain 7: %+v", team.DomainID)
	}

	// Повторная заявка той же команды, прочитавшая состояние до первой
	// записи, должна получить отказ, а не второе присвоение.
	if _, err := svc.SelectDomain(context.Background(), 1, 7); !errors.Is(err, ErrDomainAlreadyChosen) {
		t.Fatalf("want ErrDomainAlreadyChosen, got %v", err)
	}
	if teamRepo.setCalls != 2 {
		t.Fatalf("want 2 assignment attempts, got %d", teamRepo.setCalls)
	}
	if teamRepo.assigned == nil || *teamRepo.assigned != 7 {
		t.Fatalf("stored domain changed: %+v", teamRepo.assigned)
	}
}

func TestSelectDomainConcurrentSubmitsExactlyOneWins(t *testing.T) {
	svc, teamRepo := newSelectFixture(t, map[int]int{7: 5, 8: 5})

	results := make(chan error, 2)
	for _, domainID := range []int{7, 8} {
		go func(id int) {
			_, err := svc.SelectDomain(context.Background(), 1, id)
			results <- err
		}(domainID)
	}

	var won, refused int
	for i := 0; i < 2; i++ {
		switch err := <-results; {
		case err == nil:
			won++
		case errors.Is(err, ErrDomainAlreadyChosen):
			refused++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 || refused != 1 {
		t.Fatalf("want exactly one winner, got %d wins and %d refusals", won, refused)
	}
	if teamRepo.assigned == nil {
		t.Fatal("no domain stored after concurrent submits")
	}
}

func TestSelectDomainFullDomainIsRejected(t *testing.T) {
	svc, _ := newSelectFixture(t, map[int]int{7: 0})

	if _, err := svc.SelectDomain(context.Background(), 1, 7); !errors.Is(err, ErrDomainFull) {
		t.Fatalf("want ErrDomainFull, got %v", err)
	}
}
