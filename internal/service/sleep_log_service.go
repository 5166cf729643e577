package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blaisecz/sleep-ai/internal/cache"
	"github.com/blaisecz/sleep-ai/internal/domain"
	"github.com/blaisecz/sleep-ai/internal/logger"
	"github.com/blaisecz/sleep-ai/internal/predict"
	"github.com/blaisecz/sleep-ai/internal/repository"
	"github.com/blaisecz/sleep-ai/pkg/pagination"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type SleepLogService interface {
	// Submit scores a session and stores it. A storage failure returns
	// ErrPersistence and no record.
	Submit(ctx context.Context, userID uuid.UUID, features domain.SleepSessionFeatures, date *time.Time) (*domain.SleepLog, error)
	// Get returns one of the user's sessions, or ErrNotFound.
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.SleepLog, error)
	List(ctx context.Context, userID uuid.UUID, filter domain.SleepLogFilter) (*domain.SleepLogListResponse, error)
}

type sleepLogService struct {
	repo      repository.SleepLogRepository
	predictor predict.Predictor
	trends    cache.Trends
	log       *logger.Logger
	now       func() time.Time
}

func NewSleepLogService(repo repository.SleepLogRepository, predictor predict.Predictor, trends cache.Trends, log *logger.Logger) SleepLogService {
	return &sleepLogService{
		repo:      repo,
		predictor: predictor,
		trends:    trends,
		log:       log.With("service", "SleepLogService"),
		now:       time.Now,
	}
}

func (s *sleepLogService) Submit(ctx context.Context, userID uuid.UUID, features domain.SleepSessionFeatures, date *time.Time) (*domain.SleepLog, error) {
	tracer := otel.Tracer("sleep-ai/sleep-log")
	ctx, span := tracer.Start(ctx, "SleepLogService.Submit",
		trace.WithAttributes(attribute.String("user.id", userID.String())),
	)
	defer span.End()

	reqLog := s.log.With("user_id", userID)
	reqLog.Info("Sleep log submission started", "duration", features.Duration)

	prediction := s.predictor.Predict(ctx, features)
	reqLog.Info("Prediction completed",
		"sleep_score", prediction.SleepScore,
		"model", prediction.Model,
		"fallback", prediction.IsFallback(),
	)

	recordDate := s.now().UTC()
	if date != nil {
		recordDate = date.UTC()
	}

	record := &domain.SleepLog{
		ID:         uuid.New(),
		UserID:     userID,
		Date:       recordDate,
		Features:   features,
		Prediction: prediction,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		reqLog.Error("Failed to persist sleep log", "error", err)
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	reqLog.Info("Sleep log persisted", "log_id", record.ID, "sleep_score", record.Prediction.SleepScore)
	s.trends.Invalidate(ctx, userID)

	return record, nil
}

func (s *sleepLogService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.SleepLog, error) {
	return s.repo.GetByID(ctx, userID, id)
}

func (s *sleepLogService) List(ctx context.Context, userID uuid.UUID, filter domain.SleepLogFilter) (*domain.SleepLogListResponse, error) {
	logs, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidCursor) {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		return nil, err
	}

	limit := pagination.NormalizeLimit(filter.Limit)
	hasMore := len(logs) > limit

	// Trim to actual limit
	if hasMore {
		logs = logs[:limit]
	}

	response := &domain.SleepLogListResponse{
		Data: make([]domain.SleepLogResponse, len(logs)),
		Pagination: domain.PaginationResponse{
			HasMore: hasMore,
		},
	}

	for i := range logs {
		response.Data[i] = logs[i].ToResponse()
	}

	if hasMore && len(logs) > 0 {
		last := logs[len(logs)-1]
		cursor := &pagination.Cursor{
			ID:   last.ID,
			Date: last.Date,
		}
		response.Pagination.NextCursor = cursor.Encode()
	}

	return response, nil
}
