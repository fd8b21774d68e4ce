package handlers

import (
	"net/http"

	"github.com/Harsha29-kns/scorecraft-backend/services"
)

type ScoreHandler struct {
	scoreService services.ScoreService
}

func NewScoreHandler(scoreService services.ScoreService) *ScoreHandler {
	return &ScoreHandler{scoreService: scoreService}
}

func (h *ScoreHandler) SetGameScore(w http.ResponseWriter, r *http.Request) {
	teamID, err := idParam(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Score int `json:"score"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.scoreService.SetGameScore(r.Context(), teamID, input.Score); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ScoreHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	teamID, err := idParam(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := idParam(r, "round")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ReviewInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	review, err := h.scoreService.SubmitReview(r.Context(), teamID, round, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, review, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScoreHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.scoreService.Leaderboard(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScoreHandler) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	memberID, err := idParam(r, "memberID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Session int  `json:"session"`
		Present bool `json:"present"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	record, err := h.scoreService.AttendanceMark(r.Context(), memberID, input.Session, input.Present)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, record, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
