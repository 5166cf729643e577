package main

import (
	"context"
	"fmt"
	"os"

	"github.com/blaisecz/sleep-ai/internal/config"
	"github.com/blaisecz/sleep-ai/internal/logger"
	"github.com/blaisecz/sleep-ai/internal/repository"
	"github.com/blaisecz/sleep-ai/internal/seed"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := config.NewDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	if err := config.Migrate(db); err != nil {
		log.Fatal("Failed to migrate", "error", err)
	}

	repos := seed.Repositories{
		Users:     repository.NewUserRepository(db),
		SleepLogs: repository.NewSleepLogRepository(db),
		Goals:     repository.NewGoalRepository(db),
	}
	if err := seed.Run(context.Background(), repos, log); err != nil {
		log.Fatal("Seed failed", "error", err)
	}

	fmt.Printf("\nDemo account:\n  email:    %s\n  password: %s\n", seed.DemoEmail, seed.DemoPassword)
}
