package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/Harsha29-kns/scorecraft-backend/models"
	"github.com/Harsha29-kns/scorecraft-backend/realtime"
	"github.com/Harsha29-kns/scorecraft-backend/repositories"
)

type statementTeamRepo struct {
	repositories.TeamRepository

	mu        sync.Mutex
	team      models.Team
	statement *string
}

func (r *statementTeamRepo) SetProblemStatement(_ context.Context, teamID int, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if teamID != r.team.ID {
		return repositories.ErrTeamNotFound
	}
	if r.statement != nil {
		return repositories.ErrTeamStatementAlreadySet
	}
	r.statement = &text
	return nil
}

func (r *statementTeamRepo) GetWithDetails(context.Context, int) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := r.team
	cp.ProblemStatement = r.statement
	return &cp, nil
}

func newStatementService(repo *statementTeamRepo) TeamService {
	return NewTeamService(repo, nil, nil, realtime.NewHub(), discardLogger())
}

func TestSubmitProblemStatementOnce(t *testing.T) {
	repo := &statementTeamRepo{team: models.Team{ID: 3, Name: "Night Owls"}}
	svc := newStatementService(repo)

	team, err := svc.SubmitProblemStatement(context.Background(), 3, "  Smart irrigation for village farms  ")
	if err != nil {
		t.Fatalf("first submission: %v", err)
	}
	if team.ProblemStatement == nil || *team.ProblemStatement != "Smart irrigation for village farms" {
		t.Fatalf("statement not stored trimmed: %+v", team.ProblemStatement)
	}

	if _, err := svc.SubmitProblemStatement(context.Background(), 3, "Another idea"); !errors.Is(err, ErrStatementAlreadySet) {
		t.Fatalf("want ErrStatementAlreadySet, got %v", err)
	}
	if *repo.statement != "Smart irrigation for village farms" {
		t.Fatalf("stored statement changed: %q", *repo.statement)
	}
}

func TestSubmitProblemStatementValidation(t *testing.T) {
	repo := &statementTeamRepo{team: models.Team{ID: 3, Name: "Night Owls"}}
	svc := newStatementService(repo)

	if _, err := svc.SubmitProblemStatement(context.Background(), 3, "   "); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("blank statement: want ErrValidationFailed, got %v", err)
	}

	long := strings.Repeat("x", models.MaxProblemStatementLen+1)
	if _, err := svc.SubmitProblemStatement(context.Background(), 3, long); !errors.Is(err, ErrStatementTooLong) {
		t.Fatalf("long statement: want ErrStatementTooLong, got %v", err)
	}

	if _, err := svc.SubmitProblemStatement(context.Background(), 99, "Valid statement"); !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("unknown team: want ErrTeamNotFound, got %v", err)
	}
	if repo.statement != nil {
		t.Fatalf("invalid submissions must not store anything, got %q", *repo.statement)
	}
}
