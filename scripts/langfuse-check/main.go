// Sends a sample advice trace and rating to Langfuse to verify credentials.
// Usage: go run ./scripts/langfuse-check
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/blaisecz/sleep-ai/internal/config"
	"github.com/blaisecz/sleep-ai/internal/domain"
	"github.com/blaisecz/sleep-ai/internal/langfuse"
	"github.com/blaisecz/sleep-ai/internal/logger"
	"github.com/blaisecz/sleep-ai/internal/service"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode, "debug")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	client := langfuse.NewClient(langfuse.Config{
		BaseURL:     cfg.LangfuseBaseURL,
		PublicKey:   cfg.LangfusePublicKey,
		SecretKey:   cfg.LangfuseSecretKey,
		Environment: cfg.LangfuseEnv,
	}, log)
	if !client.IsEnabled() {
		log.Fatal("Langfuse client is disabled, set LANGFUSE_BASE_URL, LANGFUSE_PUBLIC_KEY and LANGFUSE_SECRET_KEY")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sample := domain.SleepSessionFeatures{Duration: 6.5, Awakenings: 2, Stress: 7, Caffeine: 150, ScreenTime: 90, Exercise: 10, Mood: 5}
	traceID, err := client.CreateTrace(ctx, langfuse.TraceInput{
		UserID: "langfuse-check",
		Name:   "sleep-advice",
		Input:  sample,
		Output: map[string]any{"advice": service.RuleAdvice(sample), "source": domain.AdviceSourceRules},
		Tags:   []string{"check"},
	})
	if err != nil {
		log.Fatal("Failed to create trace", "error", err)
	}
	if err := client.CreateScore(ctx, langfuse.ScoreInput{TraceID: traceID, Name: "user_rating", Value: 5, Comment: "connectivity check"}); err != nil {
		log.Fatal("Failed to create score", "error", err)
	}

	if err := client.Close(ctx); err != nil {
		log.Fatal("Langfuse did not accept the events in time", "error", err)
	}

	fmt.Printf("Trace sent: %s/trace/%s\n", cfg.LangfuseBaseURL, traceID)
}
