// Sleep AI API
//
// REST API for logging sleep sessions, scoring them with a remote model,
// and turning the history into trends, goals and advice.
//
//	@title			Sleep AI API
//	@version		1.0
//	@description	Sleep tracking with ML sleep scores, trends, goals and advice.
//
//	@BasePath	/api
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//
//	@tag.name			auth
//	@tag.description	Registration and login
//
//	@tag.name			sleep
//	@tag.description	Sleep session logging
//
//	@tag.name			trends
//	@tag.description	Recent score and duration trends
//
//	@tag.name			goals
//	@tag.description	Sleep goals and progress
//
//	@tag.name			advice
//	@tag.description	Rule and LLM based sleep advice
//
//	@tag.name			coach
//	@tag.description	Sleep coach chat
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blaisecz/sleep-ai/internal/api"
	"github.com/blaisecz/sleep-ai/internal/api/handler"
	"github.com/blaisecz/sleep-ai/internal/api/middleware"
	"github.com/blaisecz/sleep-ai/internal/auth"
	"github.com/blaisecz/sleep-ai/internal/cache"
	"github.com/blaisecz/sleep-ai/internal/config"
	"github.com/blaisecz/sleep-ai/internal/langfuse"
	"github.com/blaisecz/sleep-ai/internal/llm"
	"github.com/blaisecz/sleep-ai/internal/logger"
	"github.com/blaisecz/sleep-ai/internal/predict"
	"github.com/blaisecz/sleep-ai/internal/repository"
	"github.com/blaisecz/sleep-ai/internal/seed"
	"github.com/blaisecz/sleep-ai/internal/service"
	"github.com/blaisecz/sleep-ai/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg, "sleep-ai-api", log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", "error", err)
	}

	// Connect to database
	db, err := config.NewDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	if err := config.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", "error", err)
	}
	log.Info("Database migration completed")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	sleepLogRepo := repository.NewSleepLogRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	adviceTraceRepo := repository.NewAdviceTraceRepository(db)

	if cfg.Seed {
		log.Info("Seeding database with demo data (SEED=true)")
		repos := seed.Repositories{Users: userRepo, SleepLogs: sleepLogRepo, Goals: goalRepo}
		if err := seed.Run(ctx, repos, log); err != nil {
			log.Fatal("Failed to seed database", "error", err)
		}
	}

	// Trends cache, Redis when configured
	var trendsCache cache.Trends = cache.NopTrends{}
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Warn("Redis unavailable, trends cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer redisClient.Close()
			trendsCache = cache.NewTrendsCache(cache.NewRedisKV(redisClient), cfg.TrendsCacheTTL, log)
			log.Info("Trends cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.TrendsCacheTTL)
		}
	}

	predictor := predict.NewGateway(cfg.PredictURL, log)

	langfuseClient := langfuse.NewClient(langfuse.Config{
		BaseURL:     cfg.LangfuseBaseURL,
		PublicKey:   cfg.LangfusePublicKey,
		SecretKey:   cfg.LangfuseSecretKey,
		Environment: cfg.LangfuseEnv,
	}, log)

	// Initialize OpenAI client (nil if not configured, advice then uses rules)
	var adviceLLM llm.AdviceLLM
	if cfg.OpenAIAPIKey != "" {
		systemPrompt := llm.DefaultSystemPrompt
		prompt, err := langfuse.LoadPrompt(ctx, langfuse.PromptLoaderConfig{
			BaseURL:     cfg.LangfuseBaseURL,
			PublicKey:   cfg.LangfusePublicKey,
			SecretKey:   cfg.LangfuseSecretKey,
			PromptName:  cfg.AdvicePromptName,
			PromptLabel: cfg.AdvicePromptLabel,
			SavePath:    cfg.AdvicePromptPath,
		}, log)
		switch {
		case err == nil:
			systemPrompt = prompt
		case errors.Is(err, langfuse.ErrNoPrompt):
			log.Info("Using built-in advice prompt")
		default:
			log.Warn("Failed to load advice prompt, using built-in prompt", "error", err)
		}
		adviceLLM = llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIAdviceModel, systemPrompt)
	} else {
		log.Warn("OpenAI API key not configured, advice will use the rule table")
	}

	// Initialize services
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	authService := service.NewAuthService(userRepo, tokens, log)
	sleepLogService := service.NewSleepLogService(sleepLogRepo, predictor, trendsCache, log)
	trendsService := service.NewTrendsService(sleepLogRepo, trendsCache)
	goalService := service.NewGoalService(goalRepo, sleepLogRepo)
	adviceService := service.NewAdviceService(sleepLogRepo, adviceTraceRepo, trendsService, adviceLLM, langfuseClient, log)
	coachService := service.NewCoachService(trendsService)

	// Setup router
	router := api.NewRouter(api.Handlers{
		Auth:     handler.NewAuthHandler(authService, log),
		SleepLog: handler.NewSleepLogHandler(sleepLogService, log),
		Trends:   handler.NewTrendsHandler(trendsService, log),
		Goal:     handler.NewGoalHandler(goalService, log),
		Advice:   handler.NewAdviceHandler(adviceService, log),
		Coach:    handler.NewCoachHandler(coachService, log),
	}, middleware.NewAuthMiddleware(log, authService), log, cfg.RateLimitPerMinute)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
	}
	if err := langfuseClient.Close(shutdownCtx); err != nil {
		log.Warn("Langfuse flush incomplete", "error", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Warn("Tracer shutdown failed", "error", err)
	}
}
