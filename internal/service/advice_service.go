package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/blaisecz/sleep-ai/internal/domain"
	"github.com/blaisecz/sleep-ai/internal/langfuse"
	"github.com/blaisecz/sleep-ai/internal/llm"
	"github.com/blaisecz/sleep-ai/internal/logger"
	"github.com/blaisecz/sleep-ai/internal/repository"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	noIssuesAdvice  = "Keep up the good habits!"
	maxAdviceIssues = 3
)

// adviceRules are checked in order; the first maxAdviceIssues matches are reported.
var adviceRules = []struct {
	match  func(domain.SleepSessionFeatures) bool
	advice string
}{
	{func(f domain.SleepSessionFeatures) bool { return f.Stress >= 7 }, "High stress, try relaxation before bed."},
	{func(f domain.SleepSessionFeatures) bool { return f.Caffeine > 100 }, "Reduce caffeine intake."},
	{func(f domain.SleepSessionFeatures) bool { return f.ScreenTime > 60 }, "Reduce screen time before sleep."},
	{func(f domain.SleepSessionFeatures) bool { return f.Awakenings >= 2 }, "Avoid heavy meals/alcohol near bedtime."},
	{func(f domain.SleepSessionFeatures) bool { return f.Exercise < 20 }, "Add light exercise earlier in day."},
}

// RuleAdvice returns advice for the first few issues found in f.
func RuleAdvice(f domain.SleepSessionFeatures) string {
	var issues []string
	for _, rule := range adviceRules {
		if rule.match(f) {
			issues = append(issues, rule.advice)
		}
		if len(issues) == maxAdviceIssues {
			break
		}
	}
	if len(issues) == 0 {
		return noIssuesAdvice
	}
	return strings.Join(issues, " ")
}

type AdviceService interface {
	// Advise uses the LLM when available and the rule table otherwise.
	Advise(ctx context.Context, userID uuid.UUID, req *domain.AdviceRequest) (*domain.AdviceResponse, error)
	// Feedback records a user rating for LLM advice. Traces that were not
	// issued to userID return ErrNotFound.
	Feedback(ctx context.Context, userID uuid.UUID, req *domain.AdviceFeedbackRequest) error
}

type adviceService struct {
	logs     repository.SleepLogRepository
	traces   repository.AdviceTraceRepository
	trends   TrendsService
	llm      llm.AdviceLLM
	langfuse langfuse.Client
	log      *logger.Logger
}

// NewAdviceService creates an AdviceService. llmClient may be nil.
func NewAdviceService(
	logs repository.SleepLogRepository,
	traces repository.AdviceTraceRepository,
	trends TrendsService,
	llmClient llm.AdviceLLM,
	lf langfuse.Client,
	log *logger.Logger,
) AdviceService {
	return &adviceService{
		logs:     logs,
		traces:   traces,
		trends:   trends,
		llm:      llmClient,
		langfuse: lf,
		log:      log.With("service", "AdviceService"),
	}
}

func (s *adviceService) Advise(ctx context.Context, userID uuid.UUID, req *domain.AdviceRequest) (*domain.AdviceResponse, error) {
	features, err := s.resolveFeatures(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	if s.llm != nil {
		resp, err := s.adviseWithLLM(ctx, userID, features)
		if err == nil {
			return resp, nil
		}
		s.log.Warn("LLM advice failed, using rules", "user_id", userID, "error", err)
	}

	return &domain.AdviceResponse{
		Advice: RuleAdvice(features),
		Source: domain.AdviceSourceRules,
	}, nil
}

func (s *adviceService) resolveFeatures(ctx context.Context, userID uuid.UUID, req *domain.AdviceRequest) (domain.SleepSessionFeatures, error) {
	if !req.UseLast {
		if req.Features == nil {
			return domain.SleepSessionFeatures{}, fmt.Errorf("%w: features or useLast required", domain.ErrInvalidInput)
		}
		return *req.Features, nil
	}

	logs, err := s.logs.ListRecent(ctx, userID, 1)
	if err != nil {
		return domain.SleepSessionFeatures{}, err
	}
	if len(logs) == 0 {
		return domain.SleepSessionFeatures{}, domain.ErrNoSleepLogs
	}
	return logs[0].Features, nil
}

func (s *adviceService) adviseWithLLM(ctx context.Context, userID uuid.UUID, features domain.SleepSessionFeatures) (*domain.AdviceResponse, error) {
	tracer := otel.Tracer("sleep-ai/advice")
	ctx, span := tracer.Start(ctx, "AdviceService.adviseWithLLM",
		trace.WithAttributes(
			attribute.String("langfuse.trace.name", "sleep-advice"),
			attribute.String("langfuse.user.id", userID.String()),
		),
	)
	defer span.End()

	adviceCtx := &domain.AdviceContext{Features: features}
	if summary, err := s.trends.Summary(ctx, userID, MaxTrendWindow); err == nil && summary.Count > 0 {
		adviceCtx.Summary = summary
	}
	if inputJSON, err := json.Marshal(adviceCtx); err == nil {
		span.SetAttributes(attribute.String("langfuse.observation.input", string(inputJSON)))
	}

	output, err := s.llm.GenerateAdvice(ctx, adviceCtx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if outputJSON, err := json.Marshal(output); err == nil {
		span.SetAttributes(attribute.String("langfuse.observation.output", string(outputJSON)))
	}

	text := output.Advice
	if len(output.Tips) > 0 {
		text += " " + strings.Join(output.Tips, " ")
	}

	traceID, err := s.langfuse.CreateTrace(ctx, langfuse.TraceInput{
		UserID: userID.String(),
		Name:   "sleep-advice",
		Input:  adviceCtx,
		Output: output,
		Tags:   []string{"sleep-ai", "advice"},
	})
	if err != nil {
		s.log.Warn("Langfuse trace failed", "error", err)
		traceID = ""
	} else if traceID != "" {
		if err := s.traces.Create(ctx, &domain.AdviceTrace{TraceID: traceID, UserID: userID}); err != nil {
			s.log.Warn("Failed to record advice trace", "error", err, "trace_id", traceID)
			traceID = ""
		}
	}

	return &domain.AdviceResponse{
		Advice:  text,
		Source:  domain.AdviceSourceLLM,
		TraceID: traceID,
	}, nil
}

func (s *adviceService) Feedback(ctx context.Context, userID uuid.UUID, req *domain.AdviceFeedbackRequest) error {
	if _, err := s.traces.GetByID(ctx, userID, req.TraceID); err != nil {
		return err
	}

	err := s.langfuse.CreateScore(ctx, langfuse.ScoreInput{
		TraceID: req.TraceID,
		Name:    "user_rating",
		Value:   float64(req.Score),
		Comment: req.Comment,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	s.log.Info("Advice feedback recorded", "user_id", userID, "trace_id", req.TraceID, "score", req.Score)
	return nil
}
