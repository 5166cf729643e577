package handler

import (
	"errors"
	"net/http"

	"github.com/blaisecz/sleep-ai/internal/domain"
	"github.com/blaisecz/sleep-ai/internal/logger"
	"github.com/blaisecz/sleep-ai/internal/service"
	"github.com/blaisecz/sleep-ai/pkg/problem"
)

type AdviceHandler struct {
	service service.AdviceService
	log     *logger.Logger
}

func NewAdviceHandler(service service.AdviceService, log *logger.Logger) *AdviceHandler {
	return &AdviceHandler{service: service, log: log}
}

// Advise handles POST /api/advice
// @Summary Get sleep advice
// @Description Advice for the latest logged session (useLast) or for explicit features. Uses the LLM when configured and a rule table otherwise.
// @Tags advice
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body domain.AdviceRequest true "Advice request"
// @Success 200 {object} domain.AdviceResponse
// @Failure 400 {object} problem.Problem "No logs or no features supplied"
// @Failure 401 {object} problem.Problem "Missing or invalid token"
// @Failure 422 {object} problem.Problem "Validation failed"
// @Failure 500 {object} problem.Problem
// @Router /advice [post]
func (h *AdviceHandler) Advise(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req domain.AdviceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.Advise(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoSleepLogs):
			problem.BadRequest("No logs").Write(w)
		case errors.Is(err, domain.ErrInvalidInput):
			problem.BadRequest("Provide features or set useLast").Write(w)
		default:
			h.log.Error("advice failed", "error", err, "user_id", userID)
			problem.InternalError("Failed to generate advice").Write(w)
		}
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Feedback handles POST /api/advice/feedback
// @Summary Rate advice
// @Description Records a 1-5 rating for a piece of LLM advice.
// @Tags advice
// @Accept json
// @Security BearerAuth
// @Param request body domain.AdviceFeedbackRequest true "Rating"
// @Success 204 "Recorded"
// @Failure 400 {object} problem.Problem "Invalid JSON body or trace"
// @Failure 401 {object} problem.Problem "Missing or invalid token"
// @Failure 404 {object} problem.Problem "Advice trace not found"
// @Failure 413 {object} problem.Problem "Request body too large"
// @Failure 422 {object} problem.Problem "Validation failed"
// @Failure 500 {object} problem.Problem
// @Router /advice/feedback [post]
func (h *AdviceHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req domain.AdviceFeedbackRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.Feedback(r.Context(), userID, &req); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			problem.NotFound("Advice trace not found").Write(w)
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			problem.BadRequest("Feedback could not be recorded for this trace").Write(w)
			return
		}
		h.log.Error("advice feedback failed", "error", err, "user_id", userID)
		problem.InternalError("Failed to record feedback").Write(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
