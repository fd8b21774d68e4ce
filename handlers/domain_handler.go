package handlers

import (
	"net/http"

	"github.com/Harsha29-kns/scorecraft-backend/models"
	"github.com/Harsha29-kns/scorecraft-backend/services"
)

type DomainHandler struct {
	domainService services.DomainService
}

func NewDomainHandler(domainService services.DomainService) *DomainHandler {
	return &DomainHandler{domainService: domainService}
}

func (h *DomainHandler) List(w http.ResponseWriter, r *http.Request) {
	domains, err := h.domainService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"domains": domains}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DomainHandler) Create(w http.ResponseWriter, r *http.Request) {
	var domain models.Domain

	if err := readJSON(w, r, &domain); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.domainService.Create(r.Context(), &domain); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, domain, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DomainHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "domainID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var domain models.Domain
	if err := readJSON(w, r, &domain); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	domain.ID = id

	if err := h.domainService.Update(r.Context(), &domain); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, domain, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DomainHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "domainID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.domainService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Select — HTTP-путь выбора домена. Основной путь — websocket-интент
// domainSelected, этот маршрут оставлен для клиентов без websocket.
func (h *DomainHandler) Select(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TeamID   int `json:"team_id"`
		DomainID int `json:"domain_id"`
	}

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.domainService.SelectDomain(r.Context(), input.TeamID, input.DomainID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, team, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Reassign — административное переназначение домена команды.
func (h *DomainHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	teamID, err := idParam(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		DomainID int `json:"domain_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.domainService.Reassign(r.Context(), teamID, input.DomainID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, team, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
