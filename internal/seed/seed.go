package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/blaisecz/sleep-ai/internal/domain"
	"github.com/blaisecz/sleep-ai/internal/logger"
	"github.com/blaisecz/sleep-ai/internal/repository"
	"github.com/blaisecz/sleep-ai/internal/score"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

const (
	seededDays = 14

	DemoEmail    = "demo@sleep.ai"
	DemoPassword = "demo1234"
)

// Repositories the seeder writes through.
type Repositories struct {
	Users     repository.UserRepository
	SleepLogs repository.SleepLogRepository
	Goals     repository.GoalRepository
}

// Run creates a demo account with two weeks of scored sleep logs and a goal.
// Safe to call multiple times: an existing demo account is left untouched.
func Run(ctx context.Context, repos Repositories, log *logger.Logger) error {
	if _, err := repos.Users.GetByEmail(ctx, DemoEmail); err == nil {
		log.Info("Seed skipped, demo user exists", "email", DemoEmail)
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("failed to look up demo user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}
	user := &domain.User{Name: "Demo", Email: DemoEmail, PasswordHash: string(hash)}
	if err := repos.Users.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create demo user: %w", err)
	}

	rng := newRand(time.Now().UnixNano())
	now := time.Now().UTC()
	for i := seededDays - 1; i >= 0; i-- {
		features := randomSession(rng)
		entry := &domain.SleepLog{
			ID:         uuid.New(),
			UserID:     user.ID,
			Date:       now.AddDate(0, 0, -i),
			Features:   features,
			Prediction: score.Estimate(features),
		}
		if err := repos.SleepLogs.Create(ctx, entry); err != nil {
			return fmt.Errorf("failed to create sleep log: %w", err)
		}
	}

	goal := &domain.SleepGoal{
		UserID:          user.ID,
		TargetHours:     8,
		Bedtime:         "22:30",
		WakeTime:        "06:30",
		ConsistencyDays: 7,
		StartDate:       datatypes.Date(now.AddDate(0, 0, -seededDays).Truncate(24 * time.Hour)),
		Status:          domain.GoalStatusActive,
	}
	if err := repos.Goals.Create(ctx, goal); err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}

	log.Info("Seed completed", "email", DemoEmail, "user_id", user.ID, "sleep_logs", seededDays)
	return nil
}

func randomSession(rng *rand.Rand) domain.SleepSessionFeatures {
	return domain.SleepSessionFeatures{
		Duration:   float64(55+rng.Intn(40)) / 10, // 5.5-9.4h
		Awakenings: rng.Intn(4),
		Stress:     1 + rng.Intn(9),
		Caffeine:   rng.Intn(300),
		ScreenTime: rng.Intn(150),
		Exercise:   rng.Intn(90),
		Mood:       3 + rng.Intn(8),
	}
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
