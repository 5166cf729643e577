package service

import (
	"context"
	"math"

	"github.com/blaisecz/sleep-ai/internal/cache"
	"github.com/blaisecz/sleep-ai/internal/domain"
	"github.com/blaisecz/sleep-ai/internal/repository"
	"github.com/blaisecz/sleep-ai/pkg/pagination"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Trend window bounds, in sessions.
const (
	MinTrendWindow = 7
	MaxTrendWindow = 14
)

// TrendsService reads a user's recent sessions for charting.
type TrendsService interface {
	// Weekly returns up to limit recent sessions, newest first. limit is
	// clamped to [MinTrendWindow, MaxTrendWindow]; zero means the maximum.
	Weekly(ctx context.Context, userID uuid.UUID, limit int) (*domain.TrendsResponse, error)
	// Summary aggregates the same window.
	Summary(ctx context.Context, userID uuid.UUID, limit int) (*domain.SleepSummary, error)
}

type trendsService struct {
	repo   repository.SleepLogRepository
	trends cache.Trends
}

func NewTrendsService(repo repository.SleepLogRepository, trends cache.Trends) TrendsService {
	return &trendsService{repo: repo, trends: trends}
}

func (s *trendsService) Weekly(ctx context.Context, userID uuid.UUID, limit int) (*domain.TrendsResponse, error) {
	points, err := s.recent(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return &domain.TrendsResponse{Data: points}, nil
}

func (s *trendsService) Summary(ctx context.Context, userID uuid.UUID, limit int) (*domain.SleepSummary, error) {
	points, err := s.recent(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return summarize(points), nil
}

// recent serves the window from the cache, which holds the newest
// MaxTrendWindow points, and falls back to storage. The write-back uses the
// generation seen before the storage read, so it is dropped if a submit
// invalidated the cache in between.
func (s *trendsService) recent(ctx context.Context, userID uuid.UUID, limit int) ([]domain.TrendPoint, error) {
	tracer := otel.Tracer("sleep-ai/trends")
	ctx, span := tracer.Start(ctx, "TrendsService.recent",
		trace.WithAttributes(attribute.String("user.id", userID.String())),
	)
	defer span.End()

	n := pagination.ClampWindow(limit, MinTrendWindow, MaxTrendWindow)
	span.SetAttributes(attribute.Int("trends.limit", n))

	points, gen, hit := s.trends.Get(ctx, userID)
	span.SetAttributes(attribute.Bool("trends.cache_hit", hit))
	if !hit {
		logs, err := s.repo.ListRecent(ctx, userID, MaxTrendWindow)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		points = make([]domain.TrendPoint, len(logs))
		for i, log := range logs {
			points[i] = domain.TrendPoint{
				Date:     log.Date,
				Duration: log.Features.Duration,
				Score:    log.Prediction.SleepScore,
			}
		}
		s.trends.Set(ctx, userID, gen, points)
	}

	if len(points) > n {
		points = points[:n]
	}
	return points, nil
}

// summarize expects points newest first.
func summarize(points []domain.TrendPoint) *domain.SleepSummary {
	scores := make([]float64, len(points))
	durations := make([]float64, len(points))
	for i, p := range points {
		scores[i] = p.Score
		durations[i] = p.Duration
	}

	trend := domain.TrendStable
	if len(points) >= 2 {
		switch {
		case points[0].Score > points[1].Score:
			trend = domain.TrendImproving
		case points[0].Score < points[1].Score:
			trend = domain.TrendDeclining
		}
	}

	return &domain.SleepSummary{
		Count:    len(points),
		Score:    computeStats(scores),
		Duration: computeStats(durations),
		Trend:    trend,
	}
}

func computeStats(values []float64) domain.DescriptiveStats {
	if len(values) == 0 {
		return domain.DescriptiveStats{}
	}

	sum := 0.0
	minVal, maxVal := values[0], values[0]
	for _, v := range values {
		sum += v
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	avg := sum / float64(len(values))

	// Sample standard deviation
	std := 0.0
	if len(values) > 1 {
		sumSquares := 0.0
		for _, v := range values {
			diff := v - avg
			sumSquares += diff * diff
		}
		std = math.Sqrt(sumSquares / float64(len(values)-1))
	}

	return domain.DescriptiveStats{
		Avg: round2(avg),
		Std: round2(std),
		Min: round2(minVal),
		Max: round2(maxVal),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
