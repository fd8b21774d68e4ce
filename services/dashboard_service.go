package services

import (
	"context"
	"fmt"

	"github.com/Harsha29-kns/scorecraft-backend/models"
	"github.com/Harsha29-kns/scorecraft-backend/repositories"
	"golang.org/x/sync/errgroup"
)

// Dashboard — агрегированное состояние для админ-панели.
type Dashboard struct {
	Teams      []*models.Team             `json:"teams"`
	Domains    []*models.Domain           `json:"domains"`
	OpenIssues []*models.Issue            `json:"open_issues"`
	Status     *models.RegistrationStatus `json:"status"`
}

type DashboardService interface {
	// Load собирает команды, домены, открытые обращения и снапшот
	// регистрации параллельно.
	Load(ctx context.Context) (*Dashboard, error)
}

type dashboardService struct {
	teamService         TeamService
	domainRepo          repositories.DomainRepository
	issueRepo           repositories.IssueRepository
	registrationService RegistrationService
}

func NewDashboardService(
	teamService TeamService,
	domainRepo repositories.DomainRepository,
	issueRepo repositories.IssueRepository,
	registrationService RegistrationService,
) DashboardService {
	return &dashboardService{
		teamService:         teamService,
		domainRepo:          domainRepo,
		issueRepo:           issueRepo,
		registrationService: registrationService,
	}
}

func (s *dashboardService) Load(ctx context.Context) (*Dashboard, error) {
	dashboard := &Dashboard{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		teams, err := s.teamService.List(gCtx)
		if err != nil {
			return fmt.Errorf("dashboard: %w", err)
		}
		dashboard.Teams = teams
		return nil
	})

	g.Go(func() error {
		domains, err := s.domainRepo.List(gCtx)
		if err != nil {
			return fmt.Errorf("dashboard: failed to list domains: %w", err)
		}
		dashboard.Domains = domains
		return nil
	})

	g.Go(func() error {
		issues, err := s.issueRepo.ListOpen(gCtx)
		if err != nil {
			return fmt.Errorf("dashboard: failed to list open issues: %w", err)
		}
		dashboard.OpenIssues = issues
		return nil
	})

	g.Go(func() error {
		status, err := s.registrationService.Snapshot(gCtx)
		if err != nil {
			return fmt.Errorf("dashboard: %w", err)
		}
		dashboard.Status = status
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dashboard, nil
}
