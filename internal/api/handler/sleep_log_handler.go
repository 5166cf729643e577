package handler

import (
	"errors"
	"net/http"

	"github.com/blaisecz/sleep-ai/internal/domain"
	"github.com/blaisecz/sleep-ai/internal/logger"
	"github.com/blaisecz/sleep-ai/internal/service"
	"github.com/blaisecz/sleep-ai/pkg/problem"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type SleepLogHandler struct {
	service service.SleepLogService
	log     *logger.Logger
}

func NewSleepLogHandler(service service.SleepLogService, log *logger.Logger) *SleepLogHandler {
	return &SleepLogHandler{service: service, log: log}
}

// Add handles POST /api/sleep/add
// @Summary Record a sleep session
// @Description Validates the session, scores it with the remote model (or the local formula when the model is unavailable) and stores it.
// @Tags sleep
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body domain.CreateSleepLogRequest true "Sleep session data"
// @Success 201 {object} domain.SleepLogResponse "Sleep log created"
// @Failure 400 {object} problem.Problem "Invalid JSON body"
// @Failure 401 {object} problem.Problem "Missing or invalid token"
// @Failure 413 {object} problem.Problem "Request body too large"
// @Failure 422 {object} problem.Problem "Validation failed"
// @Failure 500 {object} problem.Problem "Failed to save sleep log"
// @Router /sleep/add [post]
func (h *SleepLogHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req domain.CreateSleepLogRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	record, err := h.service.Submit(r.Context(), userID, req.Features(), req.Date)
	if err != nil {
		if !errors.Is(err, domain.ErrPersistence) {
			h.log.Error("sleep log submit failed", "error", err, "user_id", userID)
		}
		problem.InternalError("Failed to save sleep log").Write(w)
		return
	}

	writeJSON(w, http.StatusCreated, record.ToResponse())
}

// List handles GET /api/sleep/logs
// @Summary List sleep logs
// @Description Paginated sleep history, newest first.
// @Tags sleep
// @Produce json
// @Security BearerAuth
// @Param limit query integer false "Results per page (1-100)" default(20) minimum(1) maximum(100)
// @Param cursor query string false "Cursor from the previous response's nextCursor"
// @Success 200 {object} domain.SleepLogListResponse
// @Failure 400 {object} problem.Problem "Invalid query parameters"
// @Failure 401 {object} problem.Problem "Missing or invalid token"
// @Failure 500 {object} problem.Problem
// @Router /sleep/logs [get]
func (h *SleepLogHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	limit, fieldErr := parseIntQuery(r, "limit")
	if fieldErr != nil {
		problem.ValidationError("Invalid query parameters", []problem.FieldError{*fieldErr}).Write(w)
		return
	}

	filter := domain.SleepLogFilter{Limit: limit, Cursor: r.URL.Query().Get("cursor")}
	response, err := h.service.List(r.Context(), userID, filter)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			problem.BadRequest("Invalid cursor").Write(w)
			return
		}
		h.log.Error("list sleep logs failed", "error", err, "user_id", userID)
		problem.InternalError("Failed to list sleep logs").Write(w)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// Get handles GET /api/sleep/logs/{logId}
// @Summary Get a sleep log
// @Tags sleep
// @Produce json
// @Security BearerAuth
// @Param logId path string true "Sleep log UUID" format(uuid)
// @Success 200 {object} domain.SleepLogResponse
// @Failure 400 {object} problem.Problem "Invalid sleep log ID"
// @Failure 401 {object} problem.Problem "Missing or invalid token"
// @Failure 404 {object} problem.Problem "Sleep log not found"
// @Failure 500 {object} problem.Problem
// @Router /sleep/logs/{logId} [get]
func (h *SleepLogHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	logID, err := uuid.Parse(chi.URLParam(r, "logId"))
	if err != nil {
		problem.BadRequest("Invalid sleep log ID format").Write(w)
		return
	}

	record, err := h.service.Get(r.Context(), userID, logID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			problem.NotFound("Sleep log not found").Write(w)
			return
		}
		h.log.Error("get sleep log failed", "error", err, "user_id", userID, "log_id", logID)
		problem.InternalError("Failed to get sleep log").Write(w)
		return
	}

	writeJSON(w, http.StatusOK, record.ToResponse())
}
