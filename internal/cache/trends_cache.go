package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/blaisecz/sleep-ai/internal/domain"
	"github.com/blaisecz/sleep-ai/internal/logger"
	"github.com/google/uuid"
)

// NoGeneration is returned by Get when the generation could not be read.
// Set ignores it.
const NoGeneration int64 = -1

// Trends caches a user's most recent trend points, newest first.
// Failures are logged and treated as misses.
//
// Entries are keyed by a per-user generation that Invalidate bumps. Callers
// pass the generation Get returned to Set, so points computed before an
// invalidation land on a key that is never read again.
type Trends interface {
	Get(ctx context.Context, userID uuid.UUID) (points []domain.TrendPoint, gen int64, ok bool)
	Set(ctx context.Context, userID uuid.UUID, gen int64, points []domain.TrendPoint)
	Invalidate(ctx context.Context, userID uuid.UUID)
}

type trendsCache struct {
	kv  KV
	ttl time.Duration
	log *logger.Logger
}

func NewTrendsCache(kv KV, ttl time.Duration, log *logger.Logger) Trends {
	return &trendsCache{kv: kv, ttl: ttl, log: log.With("component", "TrendsCache")}
}

func generationKey(userID uuid.UUID) string {
	return "sleep-ai:trends-gen:" + userID.String()
}

func trendsKey(userID uuid.UUID, gen int64) string {
	return "sleep-ai:trends:" + userID.String() + ":" + strconv.FormatInt(gen, 10)
}

func (c *trendsCache) generation(ctx context.Context, userID uuid.UUID) (int64, error) {
	raw, err := c.kv.Get(ctx, generationKey(userID))
	if errors.Is(err, ErrMiss) {
		return 0, nil
	}
	if err != nil {
		return NoGeneration, err
	}
	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return NoGeneration, err
	}
	return gen, nil
}

func (c *trendsCache) Get(ctx context.Context, userID uuid.UUID) ([]domain.TrendPoint, int64, bool) {
	gen, err := c.generation(ctx, userID)
	if err != nil {
		c.log.Warn("Trends cache generation read failed", "error", err, "user_id", userID)
		return nil, NoGeneration, false
	}

	raw, err := c.kv.Get(ctx, trendsKey(userID, gen))
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.log.Warn("Trends cache read failed", "error", err, "user_id", userID)
		}
		return nil, gen, false
	}

	var points []domain.TrendPoint
	if err := json.Unmarshal([]byte(raw), &points); err != nil {
		c.log.Warn("Discarding corrupt trends cache entry", "error", err, "user_id", userID)
		return nil, gen, false
	}
	return points, gen, true
}

func (c *trendsCache) Set(ctx context.Context, userID uuid.UUID, gen int64, points []domain.TrendPoint) {
	if gen == NoGeneration {
		return
	}
	data, err := json.Marshal(points)
	if err != nil {
		return
	}
	if err := c.kv.Set(ctx, trendsKey(userID, gen), string(data), c.ttl); err != nil {
		c.log.Warn("Trends cache write failed", "error", err, "user_id", userID)
	}
}

func (c *trendsCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if _, err := c.kv.Incr(ctx, generationKey(userID)); err != nil {
		c.log.Warn("Trends cache invalidation failed", "error", err, "user_id", userID)
	}
}

// NopTrends is used when no Redis is configured.
type NopTrends struct{}

func (NopTrends) Get(context.Context, uuid.UUID) ([]domain.TrendPoint, int64, bool) {
	return nil, NoGeneration, false
}
func (NopTrends) Set(context.Context, uuid.UUID, int64, []domain.TrendPoint) {}
func (NopTrends) Invalidate(context.Context, uuid.UUID)                      {}
