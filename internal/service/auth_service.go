package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blaisecz/sleep-ai/internal/auth"
	"github.com/blaisecz/sleep-ai/internal/domain"
	"github.com/blaisecz/sleep-ai/internal/logger"
	"github.com/blaisecz/sleep-ai/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.TokenResponse, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.TokenResponse, error)
	// Authenticate resolves a bearer token to an existing user.
	// It returns auth.ErrInvalidToken or domain.ErrUnauthorized.
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)
}

type authService struct {
	users  repository.UserRepository
	tokens *auth.TokenIssuer
	log    *logger.Logger
	cost   int
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenIssuer, log *logger.Logger) AuthService {
	return &authService{
		users:  users,
		tokens: tokens,
		log:    log.With("service", "AuthService"),
		cost:   bcrypt.DefaultCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.TokenResponse, error) {
	email := normalizeEmail(req.Email)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("User registered", "user_id", user.ID)
	return s.issue(user.ID)
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.log.Info("Login rejected", "user_id", user.ID)
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(user.ID)
}

func (s *authService) Authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return uuid.Nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return uuid.Nil, domain.ErrUnauthorized
		}
		return uuid.Nil, err
	}
	return user.ID, nil
}

func (s *authService) issue(userID uuid.UUID) (*domain.TokenResponse, error) {
	token, err := s.tokens.Issue(userID)
	if err != nil {
		return nil, err
	}
	return &domain.TokenResponse{Token: token}, nil
}
