package handler

import (
	"net/http"

	"github.com/blaisecz/sleep-ai/internal/domain"
	"github.com/blaisecz/sleep-ai/internal/logger"
	"github.com/blaisecz/sleep-ai/internal/service"
	"github.com/blaisecz/sleep-ai/pkg/problem"
)

type CoachHandler struct {
	service service.CoachService
	log     *logger.Logger
}

func NewCoachHandler(service service.CoachService, log *logger.Logger) *CoachHandler {
	return &CoachHandler{service: service, log: log}
}

// Chat handles POST /api/coach/chat
// @Summary Chat with the sleep coach
// @Tags coach
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body domain.ChatRequest true "Message"
// @Success 200 {object} domain.ChatResponse
// @Failure 400 {object} problem.Problem "Invalid JSON body"
// @Failure 401 {object} problem.Problem "Missing or invalid token"
// @Failure 422 {object} problem.Problem "Validation failed"
// @Failure 500 {object} problem.Problem
// @Router /coach/chat [post]
func (h *CoachHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req domain.ChatRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.Reply(r.Context(), userID, req.Message)
	if err != nil {
		h.log.Error("coach reply failed", "error", err, "user_id", userID)
		problem.InternalError("Failed to reply").Write(w)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
