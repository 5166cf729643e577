package handler

import (
	"errors"
	"net/http"

	"github.com/blaisecz/sleep-ai/internal/domain"
	"github.com/blaisecz/sleep-ai/internal/logger"
	"github.com/blaisecz/sleep-ai/internal/service"
	"github.com/blaisecz/sleep-ai/pkg/problem"
)

// @title Sleep AI API
// @version 1.0
// @description Sleep tracking with ML sleep scores, trends, goals and advice
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

type AuthHandler struct {
	service service.AuthService
	log     *logger.Logger
}

func NewAuthHandler(service service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{service: service, log: log}
}

// Register handles POST /api/auth/register
// @Summary Create an account
// @Description Register with name, email and password. Returns a bearer token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body domain.RegisterRequest true "Account details"
// @Success 201 {object} domain.TokenResponse
// @Failure 400 {object} problem.Problem "Invalid JSON body"
// @Failure 409 {object} problem.Problem "User already exists"
// @Failure 422 {object} problem.Problem "Validation failed"
// @Failure 500 {object} problem.Problem
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			problem.Conflict("User already exists").Write(w)
			return
		}
		h.log.Error("register failed", "error", err)
		problem.InternalError("Failed to create account").Write(w)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Description Exchange email and password for a bearer token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body domain.LoginRequest true "Credentials"
// @Success 200 {object} domain.TokenResponse
// @Failure 400 {object} problem.Problem "Invalid JSON body"
// @Failure 401 {object} problem.Problem "Invalid credentials"
// @Failure 422 {object} problem.Problem "Validation failed"
// @Failure 500 {object} problem.Problem
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			problem.Unauthorized("Invalid credentials").Write(w)
			return
		}
		h.log.Error("login failed", "error", err)
		problem.InternalError("Failed to log in").Write(w)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
