package handlers

import (
	"errors"
	"net/http"

	"github.com/Harsha29-kns/scorecraft-backend/services"
)

type DashboardHandler struct {
	dashboardService    services.DashboardService
	notificationService services.NotificationService
}

func NewDashboardHandler(
	dashboardService services.DashboardService,
	notificationService services.NotificationService,
) *DashboardHandler {
	return &DashboardHandler{
		dashboardService:    dashboardService,
		notificationService: notificationService,
	}
}

func (h *DashboardHandler) Load(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.dashboardService.Load(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, dashboard, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DashboardHandler) SendReminder(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Message string `json:"message"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Message == "" {
		badRequestResponse(w, r, errors.New("message is required"))
		return
	}

	reminder, err := h.notificationService.SendReminder(r.Context(), input.Message)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, reminder, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DashboardHandler) PostUpdate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Text string `json:"text"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Text == "" {
		badRequestResponse(w, r, errors.New("text is required"))
		return
	}

	h.notificationService.PostUpdate(input.Text)
	w.WriteHeader(http.StatusAccepted)
}

// SendPresentationTemplate рассылает командам шаблон презентации.
func (h *DashboardHandler) SendPresentationTemplate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		FileName string `json:"file_name"`
		URL      string `json:"url"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.FileName == "" || input.URL == "" {
		badRequestResponse(w, r, errors.New("file_name and url are required"))
		return
	}

	tpl, err := h.notificationService.SendPresentationTemplate(r.Context(), input.FileName, input.URL)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, tpl, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
