package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Harsha29-kns/scorecraft-backend/models"
	"github.com/Harsha29-kns/scorecraft-backend/realtime"
	"github.com/Harsha29-kns/scorecraft-backend/repositories"
)

type memReminderRepo struct {
	repositories.ReminderRepository
	reminders []*models.Reminder
}

func (r *memReminderRepo) ListRecent(context.Context, int) ([]*models.Reminder, error) {
	return r.reminders, nil
}

type memPresentationRepo struct {
	tpl *models.PresentationTemplate
}

func (r *memPresentationRepo) Set(_ context.Context, tpl *models.PresentationTemplate) error {
	r.tpl = tpl
	return nil
}

func (r *memPresentationRepo) Get(context.Context) (*models.PresentationTemplate, error) {
	return r.tpl, nil
}

func notificationFixture() (NotificationService, *memPresentationRepo, *realtime.Client) {
	hub := realtime.NewHub()
	go hub.Run()

	client := &realtime.Client{Hub: hub, Send: make(chan []byte, 8), ID: "observer"}
	hub.Register <- client
	time.Sleep(10 * time.Millisecond)

	pptRepo := &memPresentationRepo{}
	svc := NewNotificationService(&memReminderRepo{}, pptRepo, hub, discardLogger())
	return svc, pptRepo, client
}

func receiveMessage(t *testing.T, c *realtime.Client) realtime.Message {
	t.Helper()
	select {
	case raw := <-c.Send:
		var msg realtime.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("decode message: %v", err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return realtime.Message{}
	}
}

func TestSendPresentationTemplateStoresAndBroadcasts(t *testing.T) {
	svc, pptRepo, client := notificationFixture()

	tpl, err := svc.SendPresentationTemplate(context.Background(), "pitch-template.pptx", "https://cdn.example.com/pitch-template.pptx")
	if err != nil {
		t.Fatalf("send template: %v", err)
	}
	if pptRepo.tpl == nil || pptRepo.tpl.FileName != "pitch-template.pptx" {
		t.Fatalf("template not stored: %+v", pptRepo.tpl)
	}

	msg := receiveMessage(t, client)
	if msg.Type != realtime.EventReceivePPT {
		t.Fatalf("want %q event, got %q", realtime.EventReceivePPT, msg.Type)
	}

	// Поздно подключившийся клиент получает шаблон в стартовом пакете.
	data, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if data.PPT == nil || data.PPT.URL != tpl.URL {
		t.Fatalf("load data misses template: %+v", data.PPT)
	}
}

func TestSendPresentationTemplateValidation(t *testing.T) {
	svc, pptRepo, _ := notificationFixture()

	if _, err := svc.SendPresentationTemplate(context.Background(), "", "https://cdn.example.com/x.pptx"); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("blank file name: want ErrValidationFailed, got %v", err)
	}
	if _, err := svc.SendPresentationTemplate(context.Background(), "x.pptx", "  "); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("blank url: want ErrValidationFailed, got %v", err)
	}
	if pptRepo.tpl != nil {
		t.Fatalf("invalid template stored: %+v", pptRepo.tpl)
	}
}

func TestLastUpdateReplaysForLateClients(t *testing.T) {
	svc, _, client := notificationFixture()

	if _, ok := svc.LastUpdate(); ok {
		t.Fatal("fresh service must not report an update")
	}

	svc.PostUpdate("<p>Lunch is served in block B</p>")
	if msg := receiveMessage(t, client); msg.Type != realtime.EventUpdates {
		t.Fatalf("want %q event, got %q", realtime.EventUpdates, msg.Type)
	}

	text, ok := svc.LastUpdate()
	if !ok || text != "<p>Lunch is served in block B</p>" {
		t.Fatalf("unexpected last update: %q, %v", text, ok)
	}
}
