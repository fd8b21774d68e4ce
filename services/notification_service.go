package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Harsha29-kns/scorecraft-backend/models"
	"github.com/Harsha29-kns/scorecraft-backend/realtime"
	"github.com/Harsha29-kns/scorecraft-backend/repositories"
)

// reminderHistorySize — сколько объявлений отдаётся при подключении.
const reminderHistorySize = 20

// LoadData — стартовый пакет для только что подключившегося клиента.
type LoadData struct {
	Reminders []*models.Reminder           `json:"reminders"`
	PPT       *models.PresentationTemplate `json:"ppt,omitempty"`
}

type NotificationService interface {
	// SendReminder сохраняет объявление и рассылает его всем клиентам.
	SendReminder(ctx context.Context, message string) (*models.Reminder, error)
	// PostUpdate — рассылка события eventupdates. Последний текст
	// запоминается и отдаётся по интенту prevevent.
	PostUpdate(text string)
	// LastUpdate возвращает последний разосланный текст eventupdates
	// и false, если обновлений ещё не было.
	LastUpdate() (string, bool)
	// SendPresentationTemplate сохраняет шаблон презентации и рассылает
	// его всем подключённым командам.
	SendPresentationTemplate(ctx context.Context, fileName, url string) (*models.PresentationTemplate, error)
	// Load возвращает историю объявлений и текущий шаблон презентации
	// для поздно подключившихся.
	Load(ctx context.Context) (*LoadData, error)
}

type notificationService struct {
	reminderRepo     repositories.ReminderRepository
	presentationRepo repositories.PresentationRepository
	hub              *realtime.Hub
	logger           *slog.Logger

	mu         sync.Mutex
	lastUpdate string
	hasUpdate  bool
}

func NewNotificationService(
	reminderRepo repositories.ReminderRepository,
	presentationRepo repositories.PresentationRepository,
	hub *realtime.Hub,
	logger *slog.Logger,
) NotificationService {
	return &notificationService{
		reminderRepo:     reminderRepo,
		presentationRepo: presentationRepo,
		hub:              hub,
		logger:           logger,
	}
}

func (s *notificationService) SendReminder(ctx context.Context, message string) (*models.Reminder, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrValidationFailed
	}

	reminder := &models.Reminder{Message: message}
	if err := s.reminderRepo.Create(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to save reminder: %w", err)
	}

	s.hub.BroadcastEvent(realtime.EventReminder, reminder)
	s.logger.Info("reminder broadcast", slog.Int("reminder_id", reminder.ID))
	return reminder, nil
}

func (s *notificationService) PostUpdate(text string) {
	s.mu.Lock()
	s.lastUpdate = text
	s.hasUpdate = true
	s.mu.Unlock()

	s.hub.BroadcastEvent(realtime.EventUpdates, text)
}

func (s *notificationService) LastUpdate() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUpdate, s.hasUpdate
}

func (s *notificationService) SendPresentationTemplate(ctx context.Context, fileName, url string) (*models.PresentationTemplate, error) {
	fileName = strings.TrimSpace(fileName)
	url = strings.TrimSpace(url)
	if fileName == "" || url == "" {
		return nil, ErrValidationFailed
	}

	tpl := &models.PresentationTemplate{
		FileName: fileName,
		URL:      url,
		SentAt:   time.Now(),
	}
	if err := s.presentationRepo.Set(ctx, tpl); err != nil {
		return nil, fmt.Errorf("failed to store presentation template: %w", err)
	}

	s.hub.BroadcastEvent(realtime.EventReceivePPT, tpl)
	s.logger.Info("presentation template broadcast", slog.String("file_name", fileName))
	return tpl, nil
}

func (s *notificationService) Load(ctx context.Context) (*LoadData, error) {
	reminders, err := s.reminderRepo.ListRecent(ctx, reminderHistorySize)
	if err != nil {
		return nil, fmt.Errorf("failed to load reminders: %w", err)
	}

	// Шаблон — best effort: без Redis стартовый пакет всё равно уходит.
	tpl, err := s.presentationRepo.Get(ctx)
	if err != nil {
		s.logger.Error("failed to load presentation template", slog.Any("error", err))
		tpl = nil
	}

	return &LoadData{Reminders: reminders, PPT: tpl}, nil
}
