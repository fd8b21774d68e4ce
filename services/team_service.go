package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Harsha29-kns/scorecraft-backend/models"
	"github.com/Harsha29-kns/scorecraft-backend/realtime"
	"github.com/Harsha29-kns/scorecraft-backend/repositories"
	"github.com/Harsha29-kns/scorecraft-backend/storage"
	"github.com/Harsha29-kns/scorecraft-backend/utils"
)

type TeamService interface {
	// GetByPasscode — вход команды в панель по коду доступа.
	GetByPasscode(ctx context.Context, passcode string) (*models.Team, error)
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)

	// VerifyPayment отмечает оплату команды проверенной и уведомляет
	// команду в её комнате.
	VerifyPayment(ctx context.Context, teamID int) (*models.Team, error)
	AssignSector(ctx context.Context, teamID int, sector string) (*models.Team, error)

	// AttachPhoto загружает фото команды в объектное хранилище.
	AttachPhoto(ctx context.Context, teamID int, contentType string, r io.Reader) (*models.Team, error)
	// UploadPaymentProof загружает скриншот оплаты до регистрации и
	// возвращает ключ объекта для формы регистрации.
	UploadPaymentProof(ctx context.Context, contentType string, r io.Reader) (*storage.UploadResult, error)

	// SubmitProblemStatement принимает постановку задачи команды.
	// Принимается ровно один раз; повторная отправка отклоняется.
	SubmitProblemStatement(ctx context.Context, teamID int, text string) (*models.Team, error)

	SubmitIssue(ctx context.Context, teamID int, text string) (*models.Team, error)
	ResolveIssue(ctx context.Context, issueID int) error
	ListOpenIssues(ctx context.Context) ([]*models.Issue, error)
}

type teamService struct {
	teamRepo  repositories.TeamRepository
	issueRepo repositories.IssueRepository
	uploader  storage.FileUploader
	hub       *realtime.Hub
	logger    *slog.Logger
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	issueRepo repositories.IssueRepository,
	uploader storage.FileUploader,
	hub *realtime.Hub,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		teamRepo:  teamRepo,
		issueRepo: issueRepo,
		uploader:  uploader,
		hub:       hub,
		logger:    logger,
	}
}

// fillURLs превращает ключи хранилища в публичные URL для ответа клиенту.
func (s *teamService) fillURLs(team *models.Team) {
	if team.PaymentProofKey != nil {
		url := s.uploader.GetPublicURL(*team.PaymentProofKey)
		team.PaymentProofURL = &url
	}
	if team.PhotoKey != nil {
		url := s.uploader.GetPublicURL(*team.PhotoKey)
		team.PhotoURL = &url
	}
}

func (s *teamService) GetByPasscode(ctx context.Context, passcode string) (*models.Team, error) {
	passcode = strings.ToUpper(strings.TrimSpace(passcode))
	if passcode == "" {
		return nil, ErrTeamNotFound
	}
	team, err := s.teamRepo.GetByPasscode(ctx, passcode)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team by passcode: %w", err)
	}
	return s.detailed(ctx, team.ID)
}

func (s *teamService) detailed(ctx context.Context, teamID int) (*models.Team, error) {
	team, err := s.teamRepo.GetWithDetails(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}
	s.fillURLs(team)
	return team, nil
}

func (s *teamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	return s.detailed(ctx, id)
}

func (s *teamService) List(ctx context.Context) ([]*models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	for _, team := range teams {
		s.fillURLs(team)
	}
	return teams, nil
}

func (s *teamService) VerifyPayment(ctx context.Context, teamID int) (*models.Team, error) {
	if err := s.teamRepo.SetVerified(ctx, teamID, true); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to verify team %d: %w", teamID, err)
	}
	team, err := s.detailed(ctx, teamID)
	if err != nil {
		return nil, err
	}
	s.hub.BroadcastToRoom(roomForTeam(team.Name), realtime.EventTeam, team)
	return team, nil
}

func (s *teamService) AssignSector(ctx context.Context, teamID int, sector string) (*models.Team, error) {
	sector = strings.TrimSpace(sector)
	if sector == "" {
		return nil, ErrValidationFailed
	}
	if err := s.teamRepo.SetSector(ctx, teamID, sector); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to assign sector to team %d: %w", teamID, err)
	}
	team, err := s.detailed(ctx, teamID)
	if err != nil {
		return nil, err
	}
	s.hub.BroadcastToRoom(roomForTeam(team.Name), realtime.EventTeam, team)
	return team, nil
}

func (s *teamService) AttachPhoto(ctx context.Context, teamID int, contentType string, r io.Reader) (*models.Team, error) {
	key := utils.GenerateUploadKey("team-photos", extForContentType(contentType))
	if _, err := s.uploader.Upload(ctx, key, contentType, r); err != nil {
		return nil, fmt.Errorf("failed to upload team photo: %w", err)
	}
	if err := s.teamRepo.SetPhotoKey(ctx, teamID, key); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to save team photo key: %w", err)
	}
	return s.detailed(ctx, teamID)
}

func (s *teamService) UploadPaymentProof(ctx context.Context, contentType string, r io.Reader) (*storage.UploadResult, error) {
	key := utils.GenerateUploadKey("payment-proofs", extForContentType(contentType))
	result, err := s.uploader.Upload(ctx, key, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("failed to upload payment proof: %w", err)
	}
	return result, nil
}

func extForContentType(contentType string) string {
	switch contentType {
	case "image/png":
		return "png"
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	default:
		return ""
	}
}

func (s *teamService) SubmitProblemStatement(ctx context.Context, teamID int, text string) (*models.Team, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrValidationFailed
	}
	if len([]rune(text)) > models.MaxProblemStatementLen {
		return nil, ErrStatementTooLong
	}

	if err := s.teamRepo.SetProblemStatement(ctx, teamID, text); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamStatementAlreadySet):
			return nil, ErrStatementAlreadySet
		case errors.Is(err, repositories.ErrTeamNotFound):
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to save problem statement: %w", err)
	}

	team, err := s.detailed(ctx, teamID)
	if err != nil {
		return nil, err
	}
	s.hub.BroadcastToRoom(roomForTeam(team.Name), realtime.EventTeam, team)
	s.logger.Info("problem statement submitted", slog.Int("team_id", teamID))
	return team, nil
}

func (s *teamService) SubmitIssue(ctx context.Context, teamID int, text string) (*models.Team, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrValidationFailed
	}
	issue := &models.Issue{TeamID: teamID, Text: text}
	if err := s.issueRepo.Create(ctx, issue); err != nil {
		if errors.Is(err, repositories.ErrIssueTeamInvalid) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}
	s.logger.Info("support issue submitted", slog.Int("team_id", teamID), slog.Int("issue_id", issue.ID))
	return s.detailed(ctx, teamID)
}

func (s *teamService) ResolveIssue(ctx context.Context, issueID int) error {
	if err := s.issueRepo.Resolve(ctx, issueID); err != nil {
		if errors.Is(err, repositories.ErrIssueNotFound) {
			return ErrIssueNotFound
		}
		return fmt.Errorf("failed to resolve issue %d: %w", issueID, err)
	}
	return nil
}

func (s *teamService) ListOpenIssues(ctx context.Context) ([]*models.Issue, error) {
	issues, err := s.issueRepo.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list open issues: %w", err)
	}
	return issues, nil
}
