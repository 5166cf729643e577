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

type GoalHandler struct {
	service service.GoalService
	log     *logger.Logger
}

func NewGoalHandler(service service.GoalService, log *logger.Logger) *GoalHandler {
	return &GoalHandler{service: service, log: log}
}

// List handles GET /api/goals
// @Summary List goals
// @Description All goals of the current user with progress against recent logs.
// @Tags goals
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.GoalResponse
// @Failure 401 {object} problem.Problem "Missing or invalid token"
// @Failure 500 {object} problem.Problem
// @Router /goals [get]
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	goals, err := h.service.List(r.Context(), userID)
	if err != nil {
		h.log.Error("list goals failed", "error", err, "user_id", userID)
		problem.InternalError("Failed to list goals").Write(w)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

// Create handles POST /api/goals
// @Summary Create a goal
// @Tags goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body domain.CreateGoalRequest true "Goal"
// @Success 201 {object} domain.GoalResponse
// @Failure 400 {object} problem.Problem "Invalid JSON body"
// @Failure 401 {object} problem.Problem "Missing or invalid token"
// @Failure 422 {object} problem.Problem "Validation failed"
// @Failure 500 {object} problem.Problem
// @Router /goals [post]
func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req domain.CreateGoalRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	goal, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		h.log.Error("create goal failed", "error", err, "user_id", userID)
		problem.InternalError("Failed to create goal").Write(w)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

// Update handles PUT /api/goals/{goalId}
// @Summary Update a goal
// @Description Partial update; omitted fields keep their value.
// @Tags goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param goalId path string true "Goal UUID" format(uuid)
// @Param request body domain.UpdateGoalRequest true "Fields to change"
// @Success 200 {object} domain.GoalResponse
// @Failure 400 {object} problem.Problem "Invalid goal ID or JSON body"
// @Failure 401 {object} problem.Problem "Missing or invalid token"
// @Failure 404 {object} problem.Problem "Goal not found"
// @Failure 422 {object} problem.Problem "Validation failed"
// @Failure 500 {object} problem.Problem
// @Router /goals/{goalId} [put]
func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	goalID, err := uuid.Parse(chi.URLParam(r, "goalId"))
	if err != nil {
		problem.BadRequest("Invalid goal ID format").Write(w)
		return
	}

	var req domain.UpdateGoalRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	goal, err := h.service.Update(r.Context(), userID, goalID, &req)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			problem.NotFound("Goal not found").Write(w)
			return
		}
		h.log.Error("update goal failed", "error", err, "user_id", userID, "goal_id", goalID)
		problem.InternalError("Failed to update goal").Write(w)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// Delete handles DELETE /api/goals/{goalId}
// @Summary Delete a goal
// @Tags goals
// @Security BearerAuth
// @Param goalId path string true "Goal UUID" format(uuid)
// @Success 204 "Deleted"
// @Failure 400 {object} problem.Problem "Invalid goal ID"
// @Failure 401 {object} problem.Problem "Missing or invalid token"
// @Failure 404 {object} problem.Problem "Goal not found"
// @Failure 500 {object} problem.Problem
// @Router /goals/{goalId} [delete]
func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	goalID, err := uuid.Parse(chi.URLParam(r, "goalId"))
	if err != nil {
		problem.BadRequest("Invalid goal ID format").Write(w)
		return
	}

	if err := h.service.Delete(r.Context(), userID, goalID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			problem.NotFound("Goal not found").Write(w)
			return
		}
		h.log.Error("delete goal failed", "error", err, "user_id", userID, "goal_id", goalID)
		problem.InternalError("Failed to delete goal").Write(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
