package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/blaisecz/sleep-ai/internal/auth"
	"github.com/blaisecz/sleep-ai/internal/domain"
	"github.com/blaisecz/sleep-ai/internal/logger"
	"github.com/blaisecz/sleep-ai/pkg/problem"
	"github.com/google/uuid"
)

type userIDKey struct{}

// Authenticator resolves a bearer token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)
}

type AuthMiddleware struct {
	log   *logger.Logger
	authn Authenticator
}

func NewAuthMiddleware(log *logger.Logger, authn Authenticator) *AuthMiddleware {
	return &AuthMiddleware{
		log:   log.With("Middleware", "AuthMiddleware"),
		authn: authn,
	}
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's user id in the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			problem.Unauthorized("No token provided").Write(w)
			return
		}

		userID, err := m.authn.Authenticate(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrInvalidToken):
				problem.Unauthorized("Token is invalid").Write(w)
			case errors.Is(err, domain.ErrUnauthorized):
				problem.Unauthorized("User no longer exists").Write(w)
			default:
				m.log.Error("authentication failed", "error", err)
				problem.InternalError("Failed to authenticate request").Write(w)
			}
			return
		}

		if info := requestInfoFrom(r.Context()); info != nil {
			info.userID = userID
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the user id stored by RequireAuth.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey{}).(uuid.UUID)
	return id, ok && id != uuid.Nil
}
