package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Harsha29-kns/scorecraft-backend/models"
	"github.com/Harsha29-kns/scorecraft-backend/realtime"
	"github.com/Harsha29-kns/scorecraft-backend/repositories"
	"github.com/Harsha29-kns/scorecraft-backend/utils"
)

// MaxSquadMembers — максимум участников помимо лидера.
const MaxSquadMembers = 4

type MemberInput struct {
	Name               string `json:"name"`
	RegistrationNumber string `json:"registration_number"`
	HostelBlock        string `json:"hostel_block"`
	Room               string `json:"room"`
}

type RegisterTeamInput struct {
	TeamName        string        `json:"team_name"`
	LeadName        string        `json:"lead_name"`
	LeadEmail       string        `json:"lead_email"`
	Lead            MemberInput   `json:"lead"`
	Members         []MemberInput `json:"members"`
	PaymentUPI      string        `json:"payment_upi"`
	PaymentTxnID    string        `json:"payment_txn_id"`
	PaymentProofKey string        `json:"payment_proof_key"`
}

// DomainWindow — состояние окна выбора доменов, payload события domainStat.
type DomainWindow struct {
	Open     bool       `json:"open"`
	OpenTime *time.Time `json:"openTime,omitempty"`
	Version  int64      `json:"version"`
}

type RegistrationService interface {
	// Snapshot собирает авторитетный снапшот состояния регистрации.
	Snapshot(ctx context.Context) (*models.RegistrationStatus, error)

	// RegisterTeam регистрирует команду. Проверка лимита и вставка выполняются
	// в одной транзакции, поэтому две конкурирующие регистрации на последнее
	// место не могут пройти обе.
	RegisterTeam(ctx context.Context, input RegisterTeamInput) (*models.Team, error)

	SetLimit(ctx context.Context, limit int) error
	SetOpenTime(ctx context.Context, openTime time.Time) error
	ForceOpen(ctx context.Context) error
	ForceClose(ctx context.Context) error

	DomainWindow(ctx context.Context) (*DomainWindow, error)
	SetDomainOpenTime(ctx context.Context, openTime time.Time) error
	OpenDomainsNow(ctx context.Context) error
	CloseDomains(ctx context.Context) error

	// CheckWindowTransitions вызывается планировщиком: когда запланированное
	// время открытия пройдено, рассылает свежий авторитетный снапшот, чтобы
	// клиенты не переключались в "открыто" по своим локальным часам.
	CheckWindowTransitions(ctx context.Context) error
}

type registrationService struct {
	db           *sql.DB
	settingsRepo repositories.SettingsRepository
	teamRepo     repositories.TeamRepository
	hub          *realtime.Hub
	logger       *slog.Logger

	mu                  sync.Mutex
	regOpenAnnounced    bool
	domainOpenAnnounced bool
}

func NewRegistrationService(
	db *sql.DB,
	settingsRepo repositories.SettingsRepository,
	teamRepo repositories.TeamRepository,
	hub *realtime.Hub,
	logger *slog.Logger,
) RegistrationService {
	return &registrationService{
		db:           db,
		settingsRepo: settingsRepo,
		teamRepo:     teamRepo,
		hub:          hub,
		logger:       logger,
	}
}

func buildStatus(settings *models.RegistrationSettings, count int) *models.RegistrationStatus {
	return &models.RegistrationStatus{
		Version:  settings.Version,
		Count:    count,
		Limit:    settings.Limit,
		IsClosed: settings.ForceClosed || count >= settings.Limit,
		OpenTime: settings.OpenTime,
	}
}

func (s *registrationService) Snapshot(ctx context.Context) (*models.RegistrationStatus, error) {
	settings, err := s.settingsRepo.Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load registration settings: %w", err)
	}
	count, err := s.teamRepo.Count(ctx, nil)
	if err != nil {
		return nil, err
	}
	return buildStatus(settings, count), nil
}

func (s *registrationService) broadcastStatus(ctx context.Context) {
	status, err := s.Snapshot(ctx)
	if err != nil {
		s.logger.Error("failed to build registration snapshot for broadcast", slog.Any("error", err))
		return
	}
	s.hub.BroadcastEvent(realtime.EventRegistrationStatus, status)
}

func (s *registrationService) broadcastDomainWindow(ctx context.Context) {
	window, err := s.DomainWindow(ctx)
	if err != nil {
		s.logger.Error("failed to build domain window for broadcast", slog.Any("error", err))
		return
	}
	s.hub.BroadcastEvent(realtime.EventDomainStat, window)
}

func validateMember(m MemberInput) error {
	if strings.TrimSpace(m.Name) == "" ||
		strings.TrimSpace(m.RegistrationNumber) == "" ||
		strings.TrimSpace(m.HostelBlock) == "" {
		return ErrMemberFieldsRequired
	}
	if m.HostelBlock != models.DayScholar && strings.TrimSpace(m.Room) == "" {
		return ErrRoomRequired
	}
	return nil
}

func validateRegisterInput(input RegisterTeamInput) error {
	if strings.TrimSpace(input.TeamName) == "" {
		return ErrTeamNameRequired
	}
	if strings.TrimSpace(input.LeadName) == "" {
		return ErrLeadNameRequired
	}
	if strings.TrimSpace(input.LeadEmail) == "" {
		return ErrLeadEmailRequired
	}
	if err := validateMember(input.Lead); err != nil {
		return err
	}
	if len(input.Members) > MaxSquadMembers {
		return ErrTooManyMembers
	}
	for _, m := range input.Members {
		if err := validateMember(m); err != nil {
			return err
		}
	}
	if strings.TrimSpace(input.PaymentUPI) == "" ||
		strings.TrimSpace(input.PaymentTxnID) == "" ||
		strings.TrimSpace(input.PaymentProofKey) == "" {
		return ErrPaymentProofRequired
	}
	return nil
}

func memberToModel(m MemberInput, isLead bool) models.TeamMember {
	member := models.TeamMember{
		Name:               strings.TrimSpace(m.Name),
		RegistrationNumber: strings.TrimSpace(m.RegistrationNumber),
		HostelBlock:        m.HostelBlock,
		IsLead:             isLead,
	}
	if room := strings.TrimSpace(m.Room); room != "" {
		member.Room = &room
	}
	return member
}

func (s *registrationService) RegisterTeam(ctx context.Context, input RegisterTeamInput) (*models.Team, error) {
	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin registration transaction: %w", err)
	}
	defer tx.Rollback()

	// BumpVersion первым действием берёт блокировку строки настроек:
	// конкурирующие регистрации сериализуются на ней, и проверка лимита
	// ниже не может устареть к моменту вставки.
	settings, err := s.settingsRepo.BumpVersion(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to lock registration settings: %w", err)
	}

	now := time.Now()
	if settings.OpenTime != nil && now.Before(*settings.OpenTime) {
		return nil, ErrRegistrationNotOpen
	}
	if settings.ForceClosed {
		return nil, ErrRegistrationClosed
	}

	count, err := s.teamRepo.Count(ctx, tx)
	if err != nil {
		return nil, err
	}
	if count >= settings.Limit {
		return nil, ErrRegistrationFull
	}

	proofKey := input.PaymentProofKey
	team := &models.Team{
		Name:            strings.TrimSpace(input.TeamName),
		LeadName:        strings.TrimSpace(input.LeadName),
		LeadEmail:       strings.TrimSpace(input.LeadEmail),
		Passcode:        utils.GeneratePasscode(),
		PaymentUPI:      strings.TrimSpace(input.PaymentUPI),
		PaymentTxnID:    strings.TrimSpace(input.PaymentTxnID),
		PaymentProofKey: &proofKey,
	}
	team.Members = append(team.Members, memberToModel(input.Lead, true))
	for _, m := range input.Members {
		team.Members = append(team.Members, memberToModel(m, false))
	}

	if err := s.teamRepo.Create(ctx, tx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit registration: %w", err)
	}

	s.logger.Info("team registered",
		slog.Int("team_id", team.ID),
		slog.String("team_name", team.Name),
		slog.Int("count", count+1),
		slog.Int("limit", settings.Limit),
	)

	s.broadcastStatus(ctx)
	return team, nil
}

func (s *registrationService) SetLimit(ctx context.Context, limit int) error {
	if limit <= 0 {
		return ErrInvalidLimit
	}
	if _, err := s.settingsRepo.SetLimit(ctx, limit); err != nil {
		return fmt.Errorf("failed to set registration limit: %w", err)
	}
	s.broadcastStatus(ctx)
	return nil
}

func (s *registrationService) SetOpenTime(ctx context.Context, openTime time.Time) error {
	if openTime.Before(time.Now()) {
		return ErrOpenTimeInPast
	}
	if _, err := s.settingsRepo.SetOpenTime(ctx, &openTime); err != nil {
		return fmt.Errorf("failed to set registration open time: %w", err)
	}
	s.mu.Lock()
	s.regOpenAnnounced = false
	s.mu.Unlock()
	s.broadcastStatus(ctx)
	return nil
}

func (s *registrationService) ForceOpen(ctx context.Context) error {
	if _, err := s.settingsRepo.SetForceClosed(ctx, false); err != nil {
		return fmt.Errorf("failed to force open registration: %w", err)
	}
	// Снимаем и таймер: "открыть сейчас" не должно ждать расписания.
	if _, err := s.settingsRepo.SetOpenTime(ctx, nil); err != nil {
		return fmt.Errorf("failed to clear registration open time: %w", err)
	}
	s.broadcastStatus(ctx)
	return nil
}

func (s *registrationService) ForceClose(ctx context.Context) error {
	if _, err := s.settingsRepo.SetForceClosed(ctx, true); err != nil {
		return fmt.Errorf("failed to force close registration: %w", err)
	}
	s.broadcastStatus(ctx)
	return nil
}

func (s *registrationService) DomainWindow(ctx context.Context) (*DomainWindow, error) {
	settings, err := s.settingsRepo.Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load registration settings: %w", err)
	}
	return &DomainWindow{
		Open:     settings.DomainWindowOpen(time.Now()),
		OpenTime: settings.DomainOpenTime,
		Version:  settings.Version,
	}, nil
}

func (s *registrationService) SetDomainOpenTime(ctx context.Context, openTime time.Time) error {
	if openTime.Before(time.Now()) {
		return ErrOpenTimeInPast
	}
	if _, err := s.settingsRepo.SetDomainOpenTime(ctx, &openTime); err != nil {
		return fmt.Errorf("failed to set domain open time: %w", err)
	}
	s.mu.Lock()
	s.domainOpenAnnounced = false
	s.mu.Unlock()
	s.broadcastDomainWindow(ctx)
	return nil
}

func (s *registrationService) OpenDomainsNow(ctx context.Context) error {
	now := time.Now()
	if _, err := s.settingsRepo.SetDomainOpenTime(ctx, &now); err != nil {
		return fmt.Errorf("failed to open domain selection: %w", err)
	}
	s.broadcastDomainWindow(ctx)
	return nil
}

func (s *registrationService) CloseDomains(ctx context.Context) error {
	if _, err := s.settingsRepo.SetDomainsClosed(ctx, true); err != nil {
		return fmt.Errorf("failed to close domain selection: %w", err)
	}
	s.broadcastDomainWindow(ctx)
	return nil
}

func (s *registrationService) CheckWindowTransitions(ctx context.Context) error {
	settings, err := s.settingsRepo.Get(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to load registration settings: %w", err)
	}
	now := time.Now()

	s.mu.Lock()
	announceReg := settings.OpenTime != nil && !now.Before(*settings.OpenTime) && !s.regOpenAnnounced
	if announceReg {
		s.regOpenAnnounced = true
	}
	announceDomains := settings.DomainOpenTime != nil && !now.Before(*settings.DomainOpenTime) &&
		!settings.DomainsClosed && !s.domainOpenAnnounced
	if announceDomains {
		s.domainOpenAnnounced = true
	}
	s.mu.Unlock()

	if announceReg {
		s.logger.Info("registration window opened by schedule", slog.Time("open_time", *settings.OpenTime))
		s.broadcastStatus(ctx)
	}
	if announceDomains {
		s.logger.Info("domain selection opened by schedule", slog.Time("open_time", *settings.DomainOpenTime))
		s.broadcastDomainWindow(ctx)
	}
	return nil
}
