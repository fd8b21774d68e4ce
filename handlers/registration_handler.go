package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/Harsha29-kns/scorecraft-backend/services"
)

type RegistrationHandler struct {
	registrationService services.RegistrationService
}

func NewRegistrationHandler(registrationService services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService}
}

// Status отдаёт актуальный снапшот окна регистрации. Тот же снапшот
// рассылается по websocket событием check.
func (h *RegistrationHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.registrationService.Snapshot(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, status, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterTeamInput

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.registrationService.RegisterTeam(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	// Код доступа отдаётся один раз, в ответе на регистрацию.
	response := jsonResponse{
		"team":     team,
		"passcode": team.Passcode,
	}

	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RegistrationHandler) SetLimit(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Limit int `json:"limit"`
	}

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.registrationService.SetLimit(r.Context(), input.Limit); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *RegistrationHandler) SetOpenTime(w http.ResponseWriter, r *http.Request) {
	var input struct {
		OpenTime time.Time `json:"open_time"`
	}

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.OpenTime.IsZero() {
		badRequestResponse(w, r, errors.New("open_time is required"))
		return
	}

	if err := h.registrationService.SetOpenTime(r.Context(), input.OpenTime); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *RegistrationHandler) ForceOpen(w http.ResponseWriter, r *http.Request) {
	if err := h.registrationService.ForceOpen(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RegistrationHandler) ForceClose(w http.ResponseWriter, r *http.Request) {
	if err := h.registrationService.ForceClose(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RegistrationHandler) DomainWindow(w http.ResponseWriter, r *http.Request) {
	window, err := h.registrationService.DomainWindow(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, window, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RegistrationHandler) SetDomainOpenTime(w http.ResponseWriter, r *http.Request) {
	var input struct {
		OpenTime time.Time `json:"open_time"`
	}

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.OpenTime.IsZero() {
		badRequestResponse(w, r, errors.New("open_time is required"))
		return
	}

	if err := h.registrationService.SetDomainOpenTime(r.Context(), input.OpenTime); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *RegistrationHandler) OpenDomains(w http.ResponseWriter, r *http.Request) {
	if err := h.registrationService.OpenDomainsNow(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RegistrationHandler) CloseDomains(w http.ResponseWriter, r *http.Request) {
	if err := h.registrationService.CloseDomains(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
