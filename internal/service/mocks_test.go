package service

import (
	"context"
	"sort"
	"time"

	"github.com/blaisecz/sleep-ai/internal/domain"
	"github.com/blaisecz/sleep-ai/internal/langfuse"
	"github.com/blaisecz/sleep-ai/internal/score"
	"github.com/blaisecz/sleep-ai/pkg/pagination"
	"github.com/google/uuid"
)

// MockSleepLogRepository is a mock implementation of SleepLogRepository
type MockSleepLogRepository struct {
	logs        map[uuid.UUID]*domain.SleepLog
	createErr   error
	err         error
	recentCalls int
	// beforeRecent runs at the start of ListRecent.
	beforeRecent func()
}

func NewMockSleepLogRepository() *MockSleepLogRepository {
	return &MockSleepLogRepository{
		logs: make(map[uuid.UUID]*domain.SleepLog),
	}
}

func (m *MockSleepLogRepository) Create(ctx context.Context, log *domain.SleepLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	log.CreatedAt = time.Now()
	stored := *log
	m.logs[log.ID] = &stored
	return nil
}

func (m *MockSleepLogRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.SleepLog, error) {
	if m.err != nil {
		return nil, m.err
	}
	log, ok := m.logs[id]
	if !ok || log.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return log, nil
}

// sorted returns the user's logs newest first.
func (m *MockSleepLogRepository) sorted(userID uuid.UUID) []domain.SleepLog {
	var result []domain.SleepLog
	for _, log := range m.logs {
		if log.UserID == userID {
			result = append(result, *log)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date.Equal(result[j].Date) {
			return result[i].ID.String() > result[j].ID.String()
		}
		return result[i].Date.After(result[j].Date)
	})
	return result
}

func (m *MockSleepLogRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]domain.SleepLog, error) {
	m.recentCalls++
	if m.beforeRecent != nil {
		m.beforeRecent()
	}
	if m.err != nil {
		return nil, m.err
	}
	result := m.sorted(userID)
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockSleepLogRepository) ListSince(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]domain.SleepLog, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []domain.SleepLog
	for _, log := range m.sorted(userID) {
		if !log.Date.Before(since) {
			result = append(result, log)
		}
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockSleepLogRepository) List(ctx context.Context, userID uuid.UUID, filter domain.SleepLogFilter) ([]domain.SleepLog, error) {
	if m.err != nil {
		return nil, m.err
	}
	cursor, err := pagination.DecodeCursor(filter.Cursor)
	if err != nil {
		return nil, err
	}

	var result []domain.SleepLog
	for _, log := range m.sorted(userID) {
		if cursor != nil && !(log.Date.Before(cursor.Date) || (log.Date.Equal(cursor.Date) && log.ID.String() < cursor.ID.String())) {
			continue
		}
		result = append(result, log)
	}
	limit := pagination.NormalizeLimit(filter.Limit) + 1
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockSleepLogRepository) add(userID uuid.UUID, date time.Time, features domain.SleepSessionFeatures) *domain.SleepLog {
	log := &domain.SleepLog{
		ID:         uuid.New(),
		UserID:     userID,
		Date:       date,
		Features:   features,
		Prediction: score.Estimate(features),
	}
	m.logs[log.ID] = log
	return log
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	users map[uuid.UUID]*domain.User
	err   error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[uuid.UUID]*domain.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.err != nil {
		return m.err
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

// MockAdviceTraceRepository is a mock implementation of AdviceTraceRepository
type MockAdviceTraceRepository struct {
	traces    map[string]*domain.AdviceTrace
	createErr error
}

func NewMockAdviceTraceRepository() *MockAdviceTraceRepository {
	return &MockAdviceTraceRepository{traces: make(map[string]*domain.AdviceTrace)}
}

func (m *MockAdviceTraceRepository) Create(ctx context.Context, trace *domain.AdviceTrace) error {
	if m.createErr != nil {
		return m.createErr
	}
	stored := *trace
	m.traces[trace.TraceID] = &stored
	return nil
}

func (m *MockAdviceTraceRepository) GetByID(ctx context.Context, userID uuid.UUID, traceID string) (*domain.AdviceTrace, error) {
	trace, ok := m.traces[traceID]
	if !ok || trace.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return trace, nil
}

// MockGoalRepository is a mock implementation of GoalRepository
type MockGoalRepository struct {
	goals map[uuid.UUID]*domain.SleepGoal
}

func NewMockGoalRepository() *MockGoalRepository {
	return &MockGoalRepository{goals: make(map[uuid.UUID]*domain.SleepGoal)}
}

func (m *MockGoalRepository) Create(ctx context.Context, goal *domain.SleepGoal) error {
	if goal.ID == uuid.Nil {
		goal.ID = uuid.New()
	}
	stored := *goal
	m.goals[goal.ID] = &stored
	return nil
}

func (m *MockGoalRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.SleepGoal, error) {
	goal, ok := m.goals[id]
	if !ok || goal.UserID != userID {
		return nil, domain.ErrNotFound
	}
	copied := *goal
	return &copied, nil
}

func (m *MockGoalRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.SleepGoal, error) {
	var result []domain.SleepGoal
	for _, goal := range m.goals {
		if goal.UserID == userID {
			result = append(result, *goal)
		}
	}
	return result, nil
}

func (m *MockGoalRepository) Update(ctx context.Context, goal *domain.SleepGoal) error {
	stored := *goal
	m.goals[goal.ID] = &stored
	return nil
}

func (m *MockGoalRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	goal, ok := m.goals[id]
	if !ok || goal.UserID != userID {
		return domain.ErrNotFound
	}
	delete(m.goals, id)
	return nil
}

// stubPredictor returns a fixed result, or the fallback formula when result is nil.
type stubPredictor struct {
	result *domain.PredictionResult
	calls  int
}

func (p *stubPredictor) Predict(ctx context.Context, features domain.SleepSessionFeatures) domain.PredictionResult {
	p.calls++
	if p.result != nil {
		return *p.result
	}
	return score.Estimate(features)
}

// mockTrendsCache mimics the generation scheme of the Redis cache.
type mockTrendsCache struct {
	entries     map[uuid.UUID][]domain.TrendPoint
	gens        map[uuid.UUID]int64
	invalidated []uuid.UUID
	staleSets   int
}

func newMockTrendsCache() *mockTrendsCache {
	return &mockTrendsCache{
		entries: make(map[uuid.UUID][]domain.TrendPoint),
		gens:    make(map[uuid.UUID]int64),
	}
}

func (c *mockTrendsCache) Get(ctx context.Context, userID uuid.UUID) ([]domain.TrendPoint, int64, bool) {
	points, ok := c.entries[userID]
	return points, c.gens[userID], ok
}

func (c *mockTrendsCache) Set(ctx context.Context, userID uuid.UUID, gen int64, points []domain.TrendPoint) {
	if gen != c.gens[userID] {
		c.staleSets++
		return
	}
	c.entries[userID] = points
}

func (c *mockTrendsCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	delete(c.entries, userID)
	c.gens[userID]++
	c.invalidated = append(c.invalidated, userID)
}

// mockAdviceLLM is a mock implementation of llm.AdviceLLM
type mockAdviceLLM struct {
	output *domain.LLMAdviceOutput
	err    error
	got    *domain.AdviceContext
}

func (m *mockAdviceLLM) GenerateAdvice(ctx context.Context, adviceCtx *domain.AdviceContext) (*domain.LLMAdviceOutput, error) {
	m.got = adviceCtx
	return m.output, m.err
}

// mockLangfuse is a mock implementation of langfuse.Client
type mockLangfuse struct {
	enabled bool
	traces  []langfuse.TraceInput
	scores  []langfuse.ScoreInput
	err     error
}

func (m *mockLangfuse) IsEnabled() bool { return m.enabled }

func (m *mockLangfuse) CreateTrace(ctx context.Context, in langfuse.TraceInput) (string, error) {
	m.traces = append(m.traces, in)
	if !m.enabled {
		return "", nil
	}
	return "trace-1", nil
}

func (m *mockLangfuse) CreateScore(ctx context.Context, in langfuse.ScoreInput) error {
	if m.err != nil {
		return m.err
	}
	m.scores = append(m.scores, in)
	return nil
}

func (m *mockLangfuse) Close(ctx context.Context) error { return nil }

// Helper functions
func floatPtr(f float64) *float64 {
	return &f
}

func intPtr(i int) *int {
	return &i
}

func timePtr(t time.Time) *time.Time {
	return &t
}

var referenceFeatures = domain.SleepSessionFeatures{
	Duration:   7.5,
	Awakenings: 1,
	Stress:     3,
	Caffeine:   100,
	ScreenTime: 60,
	Exercise:   30,
	Mood:       7,
}

func day(n int) time.Time {
	return time.Date(2025, 12, 1, 7, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}
