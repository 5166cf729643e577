package api

import (
	"encoding/json"
	"net/http"

	_ "github.com/blaisecz/sleep-ai/docs"
	"github.com/blaisecz/sleep-ai/internal/api/handler"
	"github.com/blaisecz/sleep-ai/internal/api/middleware"
	"github.com/blaisecz/sleep-ai/internal/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	SleepLog *handler.SleepLogHandler
	Trends   *handler.TrendsHandler
	Goal     *handler.GoalHandler
	Advice   *handler.AdviceHandler
	Coach    *handler.CoachHandler
}

type Router struct {
	handlers           Handlers
	auth               *middleware.AuthMiddleware
	log                *logger.Logger
	rateLimitPerMinute int
}

func NewRouter(handlers Handlers, auth *middleware.AuthMiddleware, log *logger.Logger, rateLimitPerMinute int) *Router {
	return &Router{
		handlers:           handlers,
		auth:               auth,
		log:                log,
		rateLimitPerMinute: rateLimitPerMinute,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(rt.log))
	r.Use(middleware.Tracing)
	r.Use(middleware.RequestLogger(rt.log))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	r.Route("/api", func(r chi.Router) {
		if rt.rateLimitPerMinute > 0 {
			r.Use(middleware.NewRateLimiter(rt.rateLimitPerMinute).Handler)
		}

		r.Post("/auth/register", rt.handlers.Auth.Register)
		r.Post("/auth/login", rt.handlers.Auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(rt.auth.RequireAuth)

			r.Post("/sleep/add", rt.handlers.SleepLog.Add)
			r.Get("/sleep/logs", rt.handlers.SleepLog.List)
			r.Get("/sleep/logs/{logId}", rt.handlers.SleepLog.Get)

			r.Get("/trends/weekly", rt.handlers.Trends.Weekly)
			r.Get("/trends/summary", rt.handlers.Trends.Summary)

			r.Route("/goals", func(r chi.Router) {
				r.Get("/", rt.handlers.Goal.List)
				r.Post("/", rt.handlers.Goal.Create)
				r.Put("/{goalId}", rt.handlers.Goal.Update)
				r.Delete("/{goalId}", rt.handlers.Goal.Delete)
			})

			r.Post("/advice", rt.handlers.Advice.Advise)
			r.Post("/advice/feedback", rt.handlers.Advice.Feedback)

			r.Post("/coach/chat", rt.handlers.Coach.Chat)
		})
	})

	return r
}
