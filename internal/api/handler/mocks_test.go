package handler

import (
	"context"
	"time"

	"github.com/blaisecz/sleep-ai/internal/domain"
	"github.com/google/uuid"
)

// MockAuthService is a mock implementation of AuthService
type MockAuthService struct {
	registerFunc func(ctx context.Context, req *domain.RegisterRequest) (*domain.TokenResponse, error)
	loginFunc    func(ctx context.Context, req *domain.LoginRequest) (*domain.TokenResponse, error)
}

func (m *MockAuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.TokenResponse, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, req)
	}
	return &domain.TokenResponse{Token: "token"}, nil
}

func (m *MockAuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.TokenResponse, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, req)
	}
	return &domain.TokenResponse{Token: "token"}, nil
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	return uuid.New(), nil
}

// MockSleepLogService is a mock implementation of SleepLogService
type MockSleepLogService struct {
	submitFunc func(ctx context.Context, userID uuid.UUID, features domain.SleepSessionFeatures, date *time.Time) (*domain.SleepLog, error)
	listFunc   func(ctx context.Context, userID uuid.UUID, filter domain.SleepLogFilter) (*domain.SleepLogListResponse, error)
	getFunc    func(ctx context.Context, userID, id uuid.UUID) (*domain.SleepLog, error)
}

func (m *MockSleepLogService) Submit(ctx context.Context, userID uuid.UUID, features domain.SleepSessionFeatures, date *time.Time) (*domain.SleepLog, error) {
	if m.submitFunc != nil {
		return m.submitFunc(ctx, userID, features, date)
	}
	return &domain.SleepLog{
		ID:         uuid.New(),
		UserID:     userID,
		Date:       time.Now().UTC(),
		Features:   features,
		Prediction: domain.PredictionResult{SleepScore: 80, Model: "random_forest"},
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockSleepLogService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.SleepLog, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, userID, id)
	}
	return nil, domain.ErrNotFound
}

func (m *MockSleepLogService) List(ctx context.Context, userID uuid.UUID, filter domain.SleepLogFilter) (*domain.SleepLogListResponse, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID, filter)
	}
	return &domain.SleepLogListResponse{
		Data:       []domain.SleepLogResponse{},
		Pagination: domain.PaginationResponse{HasMore: false},
	}, nil
}

// MockTrendsService is a mock implementation of TrendsService
type MockTrendsService struct {
	weeklyFunc  func(ctx context.Context, userID uuid.UUID, limit int) (*domain.TrendsResponse, error)
	summaryFunc func(ctx context.Context, userID uuid.UUID, limit int) (*domain.SleepSummary, error)
}

func (m *MockTrendsService) Weekly(ctx context.Context, userID uuid.UUID, limit int) (*domain.TrendsResponse, error) {
	if m.weeklyFunc != nil {
		return m.weeklyFunc(ctx, userID, limit)
	}
	return &domain.TrendsResponse{Data: []domain.TrendPoint{}}, nil
}

func (m *MockTrendsService) Summary(ctx context.Context, userID uuid.UUID, limit int) (*domain.SleepSummary, error) {
	if m.summaryFunc != nil {
		return m.summaryFunc(ctx, userID, limit)
	}
	return &domain.SleepSummary{Trend: domain.TrendStable}, nil
}

// MockGoalService is a mock implementation of GoalService
type MockGoalService struct {
	createFunc func(ctx context.Context, userID uuid.UUID, req *domain.CreateGoalRequest) (*domain.GoalResponse, error)
	updateFunc func(ctx context.Context, userID, goalID uuid.UUID, req *domain.UpdateGoalRequest) (*domain.GoalResponse, error)
	deleteFunc func(ctx context.Context, userID, goalID uuid.UUID) error
}

func (m *MockGoalService) Create(ctx context.Context, userID uuid.UUID, req *domain.CreateGoalRequest) (*domain.GoalResponse, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, userID, req)
	}
	return &domain.GoalResponse{SleepGoal: domain.SleepGoal{ID: uuid.New(), UserID: userID, TargetHours: req.TargetHours}}, nil
}

func (m *MockGoalService) List(ctx context.Context, userID uuid.UUID) ([]domain.GoalResponse, error) {
	return []domain.GoalResponse{}, nil
}

func (m *MockGoalService) Update(ctx context.Context, userID, goalID uuid.UUID, req *domain.UpdateGoalRequest) (*domain.GoalResponse, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, userID, goalID, req)
	}
	return &domain.GoalResponse{SleepGoal: domain.SleepGoal{ID: goalID, UserID: userID}}, nil
}

func (m *MockGoalService) Delete(ctx context.Context, userID, goalID uuid.UUID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, userID, goalID)
	}
	return nil
}

// MockAdviceService is a mock implementation of AdviceService
type MockAdviceService struct {
	adviseFunc   func(ctx context.Context, userID uuid.UUID, req *domain.AdviceRequest) (*domain.AdviceResponse, error)
	feedbackFunc func(ctx context.Context, userID uuid.UUID, req *domain.AdviceFeedbackRequest) error
}

func (m *MockAdviceService) Advise(ctx context.Context, userID uuid.UUID, req *domain.AdviceRequest) (*domain.AdviceResponse, error) {
	if m.adviseFunc != nil {
		return m.adviseFunc(ctx, userID, req)
	}
	return &domain.AdviceResponse{Advice: "Keep up the good habits!", Source: domain.AdviceSourceRules}, nil
}

func (m *MockAdviceService) Feedback(ctx context.Context, userID uuid.UUID, req *domain.AdviceFeedbackRequest) error {
	if m.feedbackFunc != nil {
		return m.feedbackFunc(ctx, userID, req)
	}
	return nil
}

// MockCoachService is a mock implementation of CoachService
type MockCoachService struct {
	replyFunc func(ctx context.Context, userID uuid.UUID, message string) (*domain.ChatResponse, error)
}

func (m *MockCoachService) Reply(ctx context.Context, userID uuid.UUID, message string) (*domain.ChatResponse, error) {
	if m.replyFunc != nil {
		return m.replyFunc(ctx, userID, message)
	}
	return &domain.ChatResponse{Reply: "Hi!"}, nil
}
