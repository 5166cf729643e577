package handler

import (
	"net/http"

	"github.com/blaisecz/sleep-ai/internal/logger"
	"github.com/blaisecz/sleep-ai/internal/service"
	"github.com/blaisecz/sleep-ai/pkg/problem"
)

type TrendsHandler struct {
	service service.TrendsService
	log     *logger.Logger
}

func NewTrendsHandler(service service.TrendsService, log *logger.Logger) *TrendsHandler {
	return &TrendsHandler{service: service, log: log}
}

// Weekly handles GET /api/trends/weekly
// @Summary Recent sleep trend
// @Description Score and duration of the most recent sessions, newest first. The window is clamped to 7-14 sessions.
// @Tags trends
// @Produce json
// @Security BearerAuth
// @Param limit query integer false "Number of sessions (7-14)" default(14)
// @Success 200 {object} domain.TrendsResponse
// @Failure 401 {object} problem.Problem "Missing or invalid token"
// @Failure 422 {object} problem.Problem "Invalid query parameters"
// @Failure 500 {object} problem.Problem
// @Router /trends/weekly [get]
func (h *TrendsHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	limit, fieldErr := parseIntQuery(r, "limit")
	if fieldErr != nil {
		problem.ValidationError("Invalid query parameters", []problem.FieldError{*fieldErr}).Write(w)
		return
	}

	resp, err := h.service.Weekly(r.Context(), userID, limit)
	if err != nil {
		h.log.Error("weekly trends failed", "error", err, "user_id", userID)
		problem.InternalError("Failed to load trends").Write(w)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Summary handles GET /api/trends/summary
// @Summary Sleep summary
// @Description Score and duration statistics over the recent window plus the latest trend direction.
// @Tags trends
// @Produce json
// @Security BearerAuth
// @Param limit query integer false "Number of sessions (7-14)" default(14)
// @Success 200 {object} domain.SleepSummary
// @Failure 401 {object} problem.Problem "Missing or invalid token"
// @Failure 422 {object} problem.Problem "Invalid query parameters"
// @Failure 500 {object} problem.Problem
// @Router /trends/summary [get]
func (h *TrendsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	limit, fieldErr := parseIntQuery(r, "limit")
	if fieldErr != nil {
		problem.ValidationError("Invalid query parameters", []problem.FieldError{*fieldErr}).Write(w)
		return
	}

	resp, err := h.service.Summary(r.Context(), userID, limit)
	if err != nil {
		h.log.Error("trend summary failed", "error", err, "user_id", userID)
		problem.InternalError("Failed to load summary").Write(w)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
