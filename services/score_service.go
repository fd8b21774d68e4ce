package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Harsha29-kns/scorecraft-backend/models"
	"github.com/Harsha29-kns/scorecraft-backend/realtime"
	"github.com/Harsha29-kns/scorecraft-backend/repositories"
)

// LeaderboardSize — сколько команд рассылается в событии leaderboard.
const LeaderboardSize = 10

type ReviewInput struct {
	Implementation int `json:"implementation"`
	Innovation     int `json:"innovation"`
	UserExperience int `json:"user_experience"`
	Impact         int `json:"impact"`
	Presentation   int `json:"presentation"`
	Completion     int `json:"completion"`
}

type ScoreService interface {
	// SetGameScore обновляет игровой счёт команды, кэш в Redis и рассылает
	// обновлённый топ всем клиентам.
	SetGameScore(ctx context.Context, teamID, score int) error
	SubmitReview(ctx context.Context, teamID, round int, input ReviewInput) (*models.Review, error)
	Leaderboard(ctx context.Context) ([]repositories.LeaderboardEntry, error)
	// AttendanceMark отмечает участника на сессии переклички.
	AttendanceMark(ctx context.Context, memberID, session int, present bool) (*models.Attendance, error)
}

type scoreService struct {
	teamRepo       repositories.TeamRepository
	reviewRepo     repositories.ReviewRepository
	attendanceRepo repositories.AttendanceRepository
	leaderboard    repositories.LeaderboardRepository
	hub            *realtime.Hub
	logger         *slog.Logger
}

func NewScoreService(
	teamRepo repositories.TeamRepository,
	reviewRepo repositories.ReviewRepository,
	attendanceRepo repositories.AttendanceRepository,
	leaderboard repositories.LeaderboardRepository,
	hub *realtime.Hub,
	logger *slog.Logger,
) ScoreService {
	return &scoreService{
		teamRepo:       teamRepo,
		reviewRepo:     reviewRepo,
		attendanceRepo: attendanceRepo,
		leaderboard:    leaderboard,
		hub:            hub,
		logger:         logger,
	}
}

func (s *scoreService) SetGameScore(ctx context.Context, teamID, score int) error {
	if score < 0 {
		return ErrValidationFailed
	}
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to get team %d: %w", teamID, err)
	}

	if err := s.teamRepo.SetGameScore(ctx, teamID, score); err != nil {
		return fmt.Errorf("failed to set game score: %w", err)
	}

	// Кэш — best effort: при сбое Redis счёт в Postgres уже сохранён.
	if err := s.leaderboard.SetScore(ctx, teamID, team.Name, score); err != nil {
		s.logger.Error("failed to update leaderboard cache", slog.Any("error", err))
		return nil
	}

	top, err := s.leaderboard.Top(ctx, LeaderboardSize)
	if err != nil {
		s.logger.Error("failed to read leaderboard for broadcast", slog.Any("error", err))
		return nil
	}
	s.hub.BroadcastEvent(realtime.EventLeaderboard, top)
	return nil
}

func validateReview(input ReviewInput) error {
	switch {
	case input.Implementation < 0 || input.Implementation > models.MaxImplementation,
		input.Innovation < 0 || input.Innovation > models.MaxInnovation,
		input.UserExperience < 0 || input.UserExperience > models.MaxUserExperience,
		input.Impact < 0 || input.Impact > models.MaxImpact,
		input.Presentation < 0 || input.Presentation > models.MaxPresentation,
		input.Completion < 0 || input.Completion > models.MaxCompletion:
		return ErrInvalidReviewMarks
	}
	return nil
}

func (s *scoreService) SubmitReview(ctx context.Context, teamID, round int, input ReviewInput) (*models.Review, error) {
	if round < 1 || round > models.ReviewRounds {
		return nil, ErrValidationFailed
	}
	if err := validateReview(input); err != nil {
		return nil, err
	}

	review := &models.Review{
		TeamID:         teamID,
		Round:          round,
		Implementation: input.Implementation,
		Innovation:     input.Innovation,
		UserExperience: input.UserExperience,
		Impact:         input.Impact,
		Presentation:   input.Presentation,
		Completion:     input.Completion,
		Total: input.Implementation + input.Innovation + input.UserExperience +
			input.Impact + input.Presentation + input.Completion,
	}

	if err := s.reviewRepo.Upsert(ctx, review); err != nil {
		if errors.Is(err, repositories.ErrReviewTeamInvalid) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to save review: %w", err)
	}

	s.logger.Info("review submitted",
		slog.Int("team_id", teamID),
		slog.Int("round", round),
		slog.Int("total", review.Total),
	)
	return review, nil
}

func (s *scoreService) Leaderboard(ctx context.Context) ([]repositories.LeaderboardEntry, error) {
	return s.leaderboard.Top(ctx, LeaderboardSize)
}

func (s *scoreService) AttendanceMark(ctx context.Context, memberID, session int, present bool) (*models.Attendance, error) {
	if session < 1 || session > models.AttendanceSessions {
		return nil, ErrInvalidSession
	}
	att := &models.Attendance{MemberID: memberID, Session: session, Present: present}
	if err := s.attendanceRepo.Mark(ctx, att); err != nil {
		if errors.Is(err, repositories.ErrAttendanceMemberInvalid) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to mark attendance: %w", err)
	}
	return att, nil
}
