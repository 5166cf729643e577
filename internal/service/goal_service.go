package service

import (
	"context"
	"math"
	"time"

	"github.com/blaisecz/sleep-ai/internal/domain"
	"github.com/blaisecz/sleep-ai/internal/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type GoalService interface {
	Create(ctx context.Context, userID uuid.UUID, req *domain.CreateGoalRequest) (*domain.GoalResponse, error)
	List(ctx context.Context, userID uuid.UUID) ([]domain.GoalResponse, error)
	Update(ctx context.Context, userID, goalID uuid.UUID, req *domain.UpdateGoalRequest) (*domain.GoalResponse, error)
	Delete(ctx context.Context, userID, goalID uuid.UUID) error
}

type goalService struct {
	goals repository.GoalRepository
	logs  repository.SleepLogRepository
}

func NewGoalService(goals repository.GoalRepository, logs repository.SleepLogRepository) GoalService {
	return &goalService{goals: goals, logs: logs}
}

func (s *goalService) Create(ctx context.Context, userID uuid.UUID, req *domain.CreateGoalRequest) (*domain.GoalResponse, error) {
	goal := &domain.SleepGoal{
		ID:              uuid.New(),
		UserID:          userID,
		TargetHours:     req.TargetHours,
		Bedtime:         req.Bedtime,
		WakeTime:        req.WakeTime,
		ConsistencyDays: req.ConsistencyDays,
		StartDate:       datatypes.Date(startOfDay(req.StartDate)),
		Status:          domain.GoalStatusActive,
	}

	if err := s.goals.Create(ctx, goal); err != nil {
		return nil, err
	}
	return s.withProgress(ctx, goal)
}

func (s *goalService) List(ctx context.Context, userID uuid.UUID) ([]domain.GoalResponse, error) {
	goals, err := s.goals.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.GoalResponse, 0, len(goals))
	for i := range goals {
		resp, err := s.withProgress(ctx, &goals[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

func (s *goalService) Update(ctx context.Context, userID, goalID uuid.UUID, req *domain.UpdateGoalRequest) (*domain.GoalResponse, error) {
	goal, err := s.goals.GetByID(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	if req.TargetHours != nil {
		goal.TargetHours = *req.TargetHours
	}
	if req.Bedtime != nil {
		goal.Bedtime = *req.Bedtime
	}
	if req.WakeTime != nil {
		goal.WakeTime = *req.WakeTime
	}
	if req.ConsistencyDays != nil {
		goal.ConsistencyDays = *req.ConsistencyDays
	}
	if req.Status != nil {
		goal.Status = *req.Status
	}

	if err := s.goals.Update(ctx, goal); err != nil {
		return nil, err
	}
	return s.withProgress(ctx, goal)
}

func (s *goalService) Delete(ctx context.Context, userID, goalID uuid.UUID) error {
	return s.goals.Delete(ctx, userID, goalID)
}

func (s *goalService) withProgress(ctx context.Context, goal *domain.SleepGoal) (*domain.GoalResponse, error) {
	logs, err := s.logs.ListSince(ctx, goal.UserID, time.Time(goal.StartDate), goal.ConsistencyDays)
	if err != nil {
		return nil, err
	}

	progress, streak := goalProgress(goal, logs)
	return &domain.GoalResponse{
		SleepGoal: *goal,
		Progress:  progress,
		Streak:    streak,
	}, nil
}

// goalProgress scores logs (newest first) against the goal: progress is the
// percentage of the consistency window meeting the target, streak counts
// consecutive newest logs meeting it.
func goalProgress(goal *domain.SleepGoal, logs []domain.SleepLog) (float64, int) {
	if goal.ConsistencyDays <= 0 {
		return 0, 0
	}
	if len(logs) > goal.ConsistencyDays {
		logs = logs[:goal.ConsistencyDays]
	}

	met, streak := 0, 0
	streakOpen := true
	for _, log := range logs {
		ok := log.Features.Duration >= goal.TargetHours
		if ok {
			met++
		}
		if streakOpen && ok {
			streak++
		} else {
			streakOpen = false
		}
	}

	progress := float64(met) / float64(goal.ConsistencyDays) * 100
	return math.Round(progress*10) / 10, streak
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
