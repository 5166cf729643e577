package service

import (
	"context"
	"errors"
	"testing"

	"github.com/blaisecz/sleep-ai/internal/domain"
	"github.com/blaisecz/sleep-ai/internal/logger"
	"github.com/google/uuid"
)

func TestRuleAdvice(t *testing.T) {
	good := domain.SleepSessionFeatures{Duration: 8, Stress: 2, Caffeine: 50, ScreenTime: 30, Exercise: 40, Mood: 7}

	tests := []struct {
		name   string
		mutate func(*domain.SleepSessionFeatures)
		want   string
	}{
		{"no issues", func(*domain.SleepSessionFeatures) {}, "Keep up the good habits!"},
		{"stress", func(f *domain.SleepSessionFeatures) { f.Stress = 7 }, "High stress, try relaxation before bed."},
		{"caffeine boundary", func(f *domain.SleepSessionFeatures) { f.Caffeine = 100 }, "Keep up the good habits!"},
		{"caffeine", func(f *domain.SleepSessionFeatures) { f.Caffeine = 101 }, "Reduce caffeine intake."},
		{"screen", func(f *domain.SleepSessionFeatures) { f.ScreenTime = 61 }, "Reduce screen time before sleep."},
		{"awakenings", func(f *domain.SleepSessionFeatures) { f.Awakenings = 2 }, "Avoid heavy meals/alcohol near bedtime."},
		{"exercise", func(f *domain.SleepSessionFeatures) { f.Exercise = 19 }, "Add light exercise earlier in day."},
		{
			"first three only",
			func(f *domain.SleepSessionFeatures) {
				f.Stress, f.Caffeine, f.ScreenTime, f.Awakenings, f.Exercise = 9, 300, 120, 4, 0
			},
			"High stress, try relaxation before bed. Reduce caffeine intake. Reduce screen time before sleep.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := good
			tt.mutate(&f)
			if got := RuleAdvice(f); got != tt.want {
				t.Errorf("RuleAdvice() = %q, want %q", got, tt.want)
			}
		})
	}
}

func newTestAdviceService(logs *MockSleepLogRepository, llmClient *mockAdviceLLM, lf *mockLangfuse) AdviceService {
	return newTestAdviceServiceWithTraces(logs, NewMockAdviceTraceRepository(), llmClient, lf)
}

func newTestAdviceServiceWithTraces(logs *MockSleepLogRepository, traces *MockAdviceTraceRepository, llmClient *mockAdviceLLM, lf *mockLangfuse) AdviceService {
	trends := NewTrendsService(logs, newMockTrendsCache())
	if llmClient == nil {
		return NewAdviceService(logs, traces, trends, nil, lf, logger.NewNop())
	}
	return NewAdviceService(logs, traces, trends, llmClient, lf, logger.NewNop())
}

func TestAdviceService_Advise_Rules(t *testing.T) {
	userID := uuid.New()
	logs := NewMockSleepLogRepository()
	svc := newTestAdviceService(logs, nil, &mockLangfuse{})
	ctx := context.Background()

	f := referenceFeatures
	f.Caffeine = 200
	resp, err := svc.Advise(ctx, userID, &domain.AdviceRequest{Features: &f})
	if err != nil {
		t.Fatalf("Advise() error = %v", err)
	}
	if resp.Advice != "Reduce caffeine intake." || resp.Source != domain.AdviceSourceRules {
		t.Errorf("unexpected advice %+v", resp)
	}

	if _, err := svc.Advise(ctx, userID, &domain.AdviceRequest{UseLast: true}); !errors.Is(err, domain.ErrNoSleepLogs) {
		t.Errorf("useLast without logs: expected ErrNoSleepLogs, got %v", err)
	}

	if _, err := svc.Advise(ctx, userID, &domain.AdviceRequest{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("no features: expected ErrInvalidInput, got %v", err)
	}

	latest := referenceFeatures
	latest.Stress = 9
	logs.add(userID, day(0), referenceFeatures)
	logs.add(userID, day(1), latest)

	resp, err = svc.Advise(ctx, userID, &domain.AdviceRequest{UseLast: true})
	if err != nil {
		t.Fatalf("Advise(useLast) error = %v", err)
	}
	if resp.Advice != "High stress, try relaxation before bed." {
		t.Errorf("useLast should use the newest log, got %q", resp.Advice)
	}
}

func TestAdviceService_Advise_LLM(t *testing.T) {
	userID := uuid.New()
	logs := NewMockSleepLogRepository()
	logs.add(userID, day(0), referenceFeatures)
	lf := &mockLangfuse{enabled: true}
	llmClient := &mockAdviceLLM{output: &domain.LLMAdviceOutput{Advice: "Great night.", Tips: []string{"Keep caffeine before noon."}}}
	svc := newTestAdviceService(logs, llmClient, lf)

	resp, err := svc.Advise(context.Background(), userID, &domain.AdviceRequest{UseLast: true})
	if err != nil {
		t.Fatalf("Advise() error = %v", err)
	}
	if resp.Source != domain.AdviceSourceLLM || resp.TraceID != "trace-1" {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.Advice != "Great night. Keep caffeine before noon." {
		t.Errorf("advice = %q", resp.Advice)
	}
	if llmClient.got == nil || llmClient.got.Features != referenceFeatures {
		t.Fatal("LLM did not receive the session features")
	}
	if llmClient.got.Summary == nil || llmClient.got.Summary.Count != 1 {
		t.Errorf("LLM should receive the recent summary, got %+v", llmClient.got.Summary)
	}
	if len(lf.traces) != 1 || lf.traces[0].Name != "sleep-advice" {
		t.Errorf("expected one sleep-advice trace, got %+v", lf.traces)
	}
}

func TestAdviceService_Advise_LLMFailureFallsBack(t *testing.T) {
	llmClient := &mockAdviceLLM{err: errors.New("rate limited")}
	lf := &mockLangfuse{enabled: true}
	svc := newTestAdviceService(NewMockSleepLogRepository(), llmClient, lf)

	resp, err := svc.Advise(context.Background(), uuid.New(), &domain.AdviceRequest{Features: &referenceFeatures})
	if err != nil {
		t.Fatalf("Advise() error = %v", err)
	}
	if resp.Source != domain.AdviceSourceRules || resp.TraceID != "" {
		t.Errorf("expected rule advice, got %+v", resp)
	}
	if resp.Advice != RuleAdvice(referenceFeatures) {
		t.Errorf("advice = %q", resp.Advice)
	}
	if len(lf.traces) != 0 {
		t.Error("failed generations are not traced")
	}
}

func TestAdviceService_Advise_RecordsTraceOwner(t *testing.T) {
	userID := uuid.New()
	traces := NewMockAdviceTraceRepository()
	llmClient := &mockAdviceLLM{output: &domain.LLMAdviceOutput{Advice: "Great night."}}
	svc := newTestAdviceServiceWithTraces(NewMockSleepLogRepository(), traces, llmClient, &mockLangfuse{enabled: true})

	resp, err := svc.Advise(context.Background(), userID, &domain.AdviceRequest{Features: &referenceFeatures})
	if err != nil {
		t.Fatalf("Advise() error = %v", err)
	}
	if got := traces.traces[resp.TraceID]; got == nil || got.UserID != userID {
		t.Fatalf("trace %q not recorded for user, got %+v", resp.TraceID, got)
	}

	// An unrecorded trace cannot be rated, so it is not handed out.
	traces.createErr = errors.New("db down")
	resp, err = svc.Advise(context.Background(), userID, &domain.AdviceRequest{Features: &referenceFeatures})
	if err != nil {
		t.Fatalf("Advise() error = %v", err)
	}
	if resp.Source != domain.AdviceSourceLLM || resp.TraceID != "" {
		t.Errorf("expected LLM advice without a trace id, got %+v", resp)
	}
}

func TestAdviceService_Feedback(t *testing.T) {
	owner := uuid.New()
	traces := NewMockAdviceTraceRepository()
	traces.traces["trace-1"] = &domain.AdviceTrace{TraceID: "trace-1", UserID: owner}
	lf := &mockLangfuse{enabled: true}
	svc := newTestAdviceServiceWithTraces(NewMockSleepLogRepository(), traces, nil, lf)

	err := svc.Feedback(context.Background(), owner, &domain.AdviceFeedbackRequest{TraceID: "trace-1", Score: 4, Comment: "useful"})
	if err != nil {
		t.Fatalf("Feedback() error = %v", err)
	}
	if len(lf.scores) != 1 {
		t.Fatalf("expected one score, got %d", len(lf.scores))
	}
	if got := lf.scores[0]; got.TraceID != "trace-1" || got.Name != "user_rating" || got.Value != 4 || got.Comment != "useful" {
		t.Errorf("unexpected score %+v", got)
	}

	lf.err = errors.New("langfuse disabled")
	if err := svc.Feedback(context.Background(), owner, &domain.AdviceFeedbackRequest{TraceID: "trace-1", Score: 3}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAdviceService_Feedback_OtherUsersTrace(t *testing.T) {
	owner := uuid.New()
	traces := NewMockAdviceTraceRepository()
	traces.traces["trace-1"] = &domain.AdviceTrace{TraceID: "trace-1", UserID: owner}
	lf := &mockLangfuse{enabled: true}
	svc := newTestAdviceServiceWithTraces(NewMockSleepLogRepository(), traces, nil, lf)

	tests := []struct {
		name    string
		userID  uuid.UUID
		traceID string
	}{
		{"another user", uuid.New(), "trace-1"},
		{"unknown trace", owner, "trace-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Feedback(context.Background(), tt.userID, &domain.AdviceFeedbackRequest{TraceID: tt.traceID, Score: 1})
			if !errors.Is(err, domain.ErrNotFound) {
				t.Errorf("Feedback() error = %v, want ErrNotFound", err)
			}
		})
	}
	if len(lf.scores) != 0 {
		t.Errorf("no score may reach Langfuse, got %+v", lf.scores)
	}
}
