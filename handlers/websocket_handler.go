package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/Harsha29-kns/scorecraft-backend/models"
	"github.com/Harsha29-kns/scorecraft-backend/realtime"
	"github.com/Harsha29-kns/scorecraft-backend/services"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене здесь должна быть проверка Origin,
		// чтобы разрешать подключения только с доверенных доменов.
		return true
	},
}

// intentTimeout ограничивает работу одного интента с БД.
const intentTimeout = 10 * time.Second

type WebSocketHandler struct {
	hub                 *realtime.Hub
	authService         services.AuthService
	registrationService services.RegistrationService
	domainService       services.DomainService
	notificationService services.NotificationService
}

func NewWebSocketHandler(
	hub *realtime.Hub,
	authService services.AuthService,
	registrationService services.RegistrationService,
	domainService services.DomainService,
	notificationService services.NotificationService,
) *WebSocketHandler {
	h := &WebSocketHandler{
		hub:                 hub,
		authService:         authService,
		registrationService: registrationService,
		domainService:       domainService,
		notificationService: notificationService,
	}
	h.registerIntents()
	return h
}

// ServeWs апгрейдит соединение. Админ-панель подключается с ?token=...,
// обычные клиенты — без токена.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	var role models.UserRole
	if token := r.URL.Query().Get("token"); token != "" {
		claims, err := h.authService.ParseToken(token)
		if err == nil {
			if roleStr, ok := claims["role"].(string); ok {
				role = models.UserRole(roleStr)
			}
		}
		// Невалидный токен не мешает подключиться обычным клиентом.
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := &realtime.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		ID:   uuid.NewString(),
		Role: role,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()

	// Сразу после подключения клиенту уходит актуальное состояние:
	// снапшот регистрации, окно доменов и история объявлений.
	h.pushInitialState(client)
}

func (h *WebSocketHandler) pushInitialState(client *realtime.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), intentTimeout)
	defer cancel()

	if status, err := h.registrationService.Snapshot(ctx); err == nil {
		h.hub.SendEvent(client, realtime.EventRegistrationStatus, status)
	} else {
		log.Printf("Failed to load registration snapshot for client %s: %v", client.ID, err)
	}

	if window, err := h.registrationService.DomainWindow(ctx); err == nil {
		h.hub.SendEvent(client, realtime.EventDomainStat, window)
	}

	if data, err := h.notificationService.Load(ctx); err == nil {
		h.hub.SendEvent(client, realtime.EventLoadData, data)
	}
}

func (h *WebSocketHandler) registerIntents() {
	h.hub.Handle(realtime.IntentCheck, h.onCheck)
	h.hub.Handle(realtime.IntentDomainData, h.onDomainData)
	h.hub.Handle(realtime.IntentDomainStat, h.onDomainStat)
	h.hub.Handle(realtime.IntentSelectDomain, h.onSelectDomain)
	h.hub.Handle(realtime.IntentGetData, h.onGetData)
	h.hub.Handle(realtime.IntentPrevEvents, h.onPrevEvents)
	h.hub.Handle(realtime.IntentJoin, h.onJoin)

	h.hub.HandleAdmin(realtime.IntentSetDomainTime, h.onSetDomainTime)
	h.hub.HandleAdmin(realtime.IntentOpenDomains, h.onOpenDomains)
	h.hub.HandleAdmin(realtime.IntentCloseDomains, h.onCloseDomains)
	h.hub.HandleAdmin(realtime.IntentSendReminder, h.onSendReminder)
	h.hub.HandleAdmin(realtime.IntentSetRegistrationCap, h.onSetRegistrationCap)
	h.hub.HandleAdmin(realtime.IntentSetRegistrationTime, h.onSetRegistrationTime)
	h.hub.HandleAdmin(realtime.IntentOpenRegistrations, h.onOpenRegistrations)
	h.hub.HandleAdmin(realtime.IntentCloseRegistrations, h.onCloseRegistrations)
}

func intentContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), intentTimeout)
}

// onCheck отвечает запросившему клиенту свежим снапшотом регистрации.
func (h *WebSocketHandler) onCheck(c *realtime.Client, _ json.RawMessage) {
	ctx, cancel := intentContext()
	defer cancel()

	status, err := h.registrationService.Snapshot(ctx)
	if err != nil {
		log.Printf("check intent failed for client %s: %v", c.ID, err)
		return
	}
	h.hub.SendEvent(c, realtime.EventRegistrationStatus, status)
}

func (h *WebSocketHandler) onDomainData(c *realtime.Client, _ json.RawMessage) {
	ctx, cancel := intentContext()
	defer cancel()

	domains, err := h.domainService.List(ctx)
	if err != nil {
		log.Printf("domain data intent failed for client %s: %v", c.ID, err)
		return
	}
	h.hub.SendEvent(c, realtime.EventDomainData, domains)
}

func (h *WebSocketHandler) onDomainStat(c *realtime.Client, _ json.RawMessage) {
	ctx, cancel := intentContext()
	defer cancel()

	window, err := h.registrationService.DomainWindow(ctx)
	if err != nil {
		log.Printf("domain window intent failed for client %s: %v", c.ID, err)
		return
	}
	h.hub.SendEvent(c, realtime.EventDomainStat, window)
}

// onSelectDomain — заявка команды на домен. Конфликт за последний слот
// разрешается в БД; проигравшему уходит domainSelected с payload "fulled".
func (h *WebSocketHandler) onSelectDomain(c *realtime.Client, payload json.RawMessage) {
	var input struct {
		TeamID   int `json:"team_id"`
		DomainID int `json:"domain_id"`
	}
	if err := json.Unmarshal(payload, &input); err != nil {
		log.Printf("Client %s sent malformed domain selection: %v", c.ID, err)
		return
	}

	ctx, cancel := intentContext()
	defer cancel()

	team, err := h.domainService.SelectDomain(ctx, input.TeamID, input.DomainID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDomainFull):
			h.hub.SendEvent(c, realtime.EventDomainSelected, realtime.SelectionRejectedFull)
		case errors.Is(err, services.ErrDomainAlreadyChosen),
			errors.Is(err, services.ErrDomainSelectionClosed),
			errors.Is(err, services.ErrTeamNotFound),
			errors.Is(err, services.ErrDomainNotFound):
			h.hub.SendEvent(c, realtime.EventDomainSelected, jsonResponse{"error": err.Error()})
		default:
			log.Printf("domain selection failed for client %s: %v", c.ID, err)
		}
		return
	}

	// Подтверждение запросившему; команда получит событие team в комнате,
	// остальные клиенты — свежий domaindata.
	h.hub.SendEvent(c, realtime.EventDomainSelected, team)
}

func (h *WebSocketHandler) onGetData(c *realtime.Client, _ json.RawMessage) {
	ctx, cancel := intentContext()
	defer cancel()

	data, err := h.notificationService.Load(ctx)
	if err != nil {
		log.Printf("load data intent failed for client %s: %v", c.ID, err)
		return
	}
	h.hub.SendEvent(c, realtime.EventLoadData, data)
}

// onPrevEvents повторяет запросившему клиенту последнее событие
// eventupdates, разосланное до его подключения.
func (h *WebSocketHandler) onPrevEvents(c *realtime.Client, _ json.RawMessage) {
	if text, ok := h.notificationService.LastUpdate(); ok {
		h.hub.SendEvent(c, realtime.EventUpdates, text)
	}
}

// onJoin привязывает соединение к комнате своей команды.
func (h *WebSocketHandler) onJoin(c *realtime.Client, payload json.RawMessage) {
	var teamName string
	if err := json.Unmarshal(payload, &teamName); err != nil || teamName == "" {
		log.Printf("Client %s sent malformed join payload", c.ID)
		return
	}

	// Та же схема имен комнат, что и в рассылках сервисов.
	h.hub.JoinRoom(c, "team_"+teamName)
}

func (h *WebSocketHandler) onSetDomainTime(c *realtime.Client, payload json.RawMessage) {
	var input struct {
		OpenTime time.Time `json:"open_time"`
	}
	if err := json.Unmarshal(payload, &input); err != nil || input.OpenTime.IsZero() {
		log.Printf("Client %s sent malformed domain time payload", c.ID)
		return
	}

	ctx, cancel := intentContext()
	defer cancel()

	if err := h.registrationService.SetDomainOpenTime(ctx, input.OpenTime); err != nil {
		log.Printf("set domain time failed for client %s: %v", c.ID, err)
	}
}

func (h *WebSocketHandler) onOpenDomains(c *realtime.Client, _ json.RawMessage) {
	ctx, cancel := intentContext()
	defer cancel()

	if err := h.registrationService.OpenDomainsNow(ctx); err != nil {
		log.Printf("open domains failed for client %s: %v", c.ID, err)
	}
}

func (h *WebSocketHandler) onCloseDomains(c *realtime.Client, _ json.RawMessage) {
	ctx, cancel := intentContext()
	defer cancel()

	if err := h.registrationService.CloseDomains(ctx); err != nil {
		log.Printf("close domains failed for client %s: %v", c.ID, err)
	}
}

func (h *WebSocketHandler) onSendReminder(c *realtime.Client, payload json.RawMessage) {
	var message string
	if err := json.Unmarshal(payload, &message); err != nil || message == "" {
		log.Printf("Client %s sent malformed reminder payload", c.ID)
		return
	}

	ctx, cancel := intentContext()
	defer cancel()

	if _, err := h.notificationService.SendReminder(ctx, message); err != nil {
		log.Printf("send reminder failed for client %s: %v", c.ID, err)
	}
}

func (h *WebSocketHandler) onSetRegistrationCap(c *realtime.Client, payload json.RawMessage) {
	var input struct {
		Limit int `json:"limit"`
	}
	if err := json.Unmarshal(payload, &input); err != nil {
		log.Printf("Client %s sent malformed limit payload", c.ID)
		return
	}

	ctx, cancel := intentContext()
	defer cancel()

	if err := h.registrationService.SetLimit(ctx, input.Limit); err != nil {
		log.Printf("set limit failed for client %s: %v", c.ID, err)
	}
}

func (h *WebSocketHandler) onSetRegistrationTime(c *realtime.Client, payload json.RawMessage) {
	var input struct {
		OpenTime time.Time `json:"open_time"`
	}
	if err := json.Unmarshal(payload, &input); err != nil || input.OpenTime.IsZero() {
		log.Printf("Client %s sent malformed registration time payload", c.ID)
		return
	}

	ctx, cancel := intentContext()
	defer cancel()

	if err := h.registrationService.SetOpenTime(ctx, input.OpenTime); err != nil {
		log.Printf("set registration time failed for client %s: %v", c.ID, err)
	}
}

func (h *WebSocketHandler) onOpenRegistrations(c *realtime.Client, _ json.RawMessage) {
	ctx, cancel := intentContext()
	defer cancel()

	if err := h.registrationService.ForceOpen(ctx); err != nil {
		log.Printf("open registrations failed for client %s: %v", c.ID, err)
	}
}

func (h *WebSocketHandler) onCloseRegistrations(c *realtime.Client, _ json.RawMessage) {
	ctx, cancel := intentContext()
	defer cancel()

	if err := h.registrationService.ForceClose(ctx); err != nil {
		log.Printf("close registrations failed for client %s: %v", c.ID, err)
	}
}
