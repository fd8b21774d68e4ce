package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Harsha29-kns/scorecraft-backend/models"
	"github.com/Harsha29-kns/scorecraft-backend/realtime"
	"github.com/Harsha29-kns/scorecraft-backend/repositories"
)

type DomainService interface {
	List(ctx context.Context) ([]*models.Domain, error)
	Create(ctx context.Context, domain *models.Domain) error
	Update(ctx context.Context, domain *models.Domain) error
	Delete(ctx context.Context, id int) error

	// SelectDomain — заявка команды на домен. Разрешение конфликтов на
	// стороне сервера: при нескольких одновременных заявках на последний
	// слот ровно одна завершится успехом, остальные получат ErrDomainFull.
	// Победителю в комнату команды уходит подтверждение с обновлённым
	// состоянием команды, всем клиентам — обновлённый список доменов.
	SelectDomain(ctx context.Context, teamID, domainID int) (*models.Team, error)

	// Reassign — административное переназначение домена команды.
	// Обычный клиентский путь не позволяет менять подтверждённый выбор.
	Reassign(ctx context.Context, teamID, domainID int) (*models.Team, error)
}

type domainService struct {
	db           *sql.DB
	domainRepo   repositories.DomainRepository
	teamRepo     repositories.TeamRepository
	settingsRepo repositories.SettingsRepository
	hub          *realtime.Hub
	logger       *slog.Logger
}

func NewDomainService(
	db *sql.DB,
	domainRepo repositories.DomainRepository,
	teamRepo repositories.TeamRepository,
	settingsRepo repositories.SettingsRepository,
	hub *realtime.Hub,
	logger *slog.Logger,
) DomainService {
	return &domainService{
		db:           db,
		domainRepo:   domainRepo,
		teamRepo:     teamRepo,
		settingsRepo: settingsRepo,
		hub:          hub,
		logger:       logger,
	}
}

func (s *domainService) List(ctx context.Context) ([]*models.Domain, error) {
	domains, err := s.domainRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	return domains, nil
}

func validateDomain(domain *models.Domain) error {
	if strings.TrimSpace(domain.Name) == "" {
		return ErrValidationFailed
	}
	if domain.Slots < 0 {
		return ErrValidationFailed
	}
	return nil
}

func (s *domainService) Create(ctx context.Context, domain *models.Domain) error {
	if err := validateDomain(domain); err != nil {
		return err
	}
	if err := s.domainRepo.Create(ctx, domain); err != nil {
		if errors.Is(err, repositories.ErrDomainNameConflict) {
			return ErrDomainNameConflict
		}
		return fmt.Errorf("failed to create domain: %w", err)
	}
	s.broadcastDomains(ctx)
	return nil
}

func (s *domainService) Update(ctx context.Context, domain *models.Domain) error {
	if err := validateDomain(domain); err != nil {
		return err
	}
	if err := s.domainRepo.Update(ctx, domain); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDomainNotFound):
			return ErrDomainNotFound
		case errors.Is(err, repositories.ErrDomainNameConflict):
			return ErrDomainNameConflict
		}
		return fmt.Errorf("failed to update domain: %w", err)
	}
	s.broadcastDomains(ctx)
	return nil
}

func (s *domainService) Delete(ctx context.Context, id int) error {
	if err := s.domainRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrDomainNotFound) {
			return ErrDomainNotFound
		}
		return fmt.Errorf("failed to delete domain: %w", err)
	}
	s.broadcastDomains(ctx)
	return nil
}

func (s *domainService) broadcastDomains(ctx context.Context) {
	domains, err := s.domainRepo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list domains for broadcast", slog.Any("error", err))
		return
	}
	s.hub.BroadcastEvent(realtime.EventDomainData, domains)
}

func (s *domainService) SelectDomain(ctx context.Context, teamID, domainID int) (*models.Team, error) {
	settings, err := s.settingsRepo.Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load registration settings: %w", err)
	}
	if !settings.DomainWindowOpen(time.Now()) {
		return nil, ErrDomainSelectionClosed
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	if team.DomainID != nil {
		return nil, ErrDomainAlreadyChosen
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin selection transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.domainRepo.ClaimSlot(ctx, tx, domainID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDomainFull):
			return nil, ErrDomainFull
		case errors.Is(err, repositories.ErrDomainNotFound):
			return nil, ErrDomainNotFound
		}
		return nil, fmt.Errorf("failed to claim domain slot: %w", err)
	}

	// Проверка team.DomainID выше — только быстрый отказ: она читает вне
	// транзакции и две конкурентные заявки одной команды могут пройти её
	// обе. Решает условие в самом UPDATE; откат транзакции вернёт
	// захваченный слот проигравшей заявки.
	if err := s.teamRepo.SetDomainIfUnset(ctx, tx, teamID, domainID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamDomainAlreadySet):
			return nil, ErrDomainAlreadyChosen
		case errors.Is(err, repositories.ErrTeamNotFound):
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to assign domain to team: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit domain selection: %w", err)
	}

	s.logger.Info("domain selected",
		slog.Int("team_id", teamID),
		slog.Int("domain_id", domainID),
	)

	// Подтверждение уходит победителю, обновлённые слоты — всем.
	detailed, err := s.teamRepo.GetWithDetails(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload team %d after selection: %w", teamID, err)
	}
	s.hub.BroadcastToRoom(roomForTeam(detailed.Name), realtime.EventTeam, detailed)
	s.broadcastDomains(ctx)

	return detailed, nil
}

func (s *domainService) Reassign(ctx context.Context, teamID, domainID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin reassign transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.domainRepo.ClaimSlot(ctx, tx, domainID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDomainFull):
			return nil, ErrDomainFull
		case errors.Is(err, repositories.ErrDomainNotFound):
			return nil, ErrDomainNotFound
		}
		return nil, fmt.Errorf("failed to claim domain slot: %w", err)
	}

	if team.DomainID != nil {
		if err := s.domainRepo.ReleaseSlot(ctx, tx, *team.DomainID); err != nil && !errors.Is(err, repositories.ErrDomainNotFound) {
			return nil, fmt.Errorf("failed to release previous domain slot: %w", err)
		}
	}

	if err := s.teamRepo.SetDomain(ctx, tx, teamID, domainID); err != nil {
		return nil, fmt.Errorf("failed to assign domain to team: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit domain reassignment: %w", err)
	}

	detailed, err := s.teamRepo.GetWithDetails(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload team %d after reassignment: %w", teamID, err)
	}
	s.hub.BroadcastToRoom(roomForTeam(detailed.Name), realtime.EventTeam, detailed)
	s.broadcastDomains(ctx)

	return detailed, nil
}

// roomForTeam — имя комнаты хаба для команды.
func roomForTeam(teamName string) string {
	return "team_" + teamName
}
