// Package predict obtains sleep scores from the remote prediction service,
// degrading to the local formula whenever the service cannot answer.
package predict

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/blaisecz/sleep-ai/internal/domain"
	"github.com/blaisecz/sleep-ai/internal/logger"
	"github.com/blaisecz/sleep-ai/internal/score"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Timeout bounds a single remote prediction call.
const Timeout = 5 * time.Second

var (
	// ErrPredictionTimeout indicates the remote service did not answer in time.
	ErrPredictionTimeout = errors.New("prediction request timed out")
	// ErrPredictionTransport indicates a network-level failure.
	ErrPredictionTransport = errors.New("prediction request failed")
	// ErrPredictionResponse indicates a non-2xx status or an unusable body.
	ErrPredictionResponse = errors.New("invalid prediction response")
)

// Predictor produces a sleep score for a session. It never fails.
type Predictor interface {
	Predict(ctx context.Context, features domain.SleepSessionFeatures) domain.PredictionResult
}

// Gateway calls the remote model over HTTP and falls back to score.Estimate.
type Gateway struct {
	client  *resty.Client
	url     string
	timeout time.Duration
	log     *logger.Logger
}

// Option customises a Gateway.
type Option func(*Gateway)

// WithTimeout overrides the remote call timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.timeout = d
	}
}

// NewGateway creates a gateway posting to url.
func NewGateway(url string, log *logger.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		url:     url,
		timeout: Timeout,
		log:     log.With("service", "PredictionGateway"),
	}
	for _, opt := range opts {
		opt(g)
	}

	g.client = resty.New().
		SetTimeout(g.timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return g
}

// wireRequest is the remote service's feature naming.
type wireRequest struct {
	Duration   float64 `json:"duration"`
	Awakenings int     `json:"awakenings"`
	Stress     int     `json:"stress"`
	Caffeine   int     `json:"caffeine"`
	ScreenTime int     `json:"screen_time"`
	Exercise   int     `json:"exercise"`
	Mood       int     `json:"mood"`
}

type wireResponse struct {
	SleepScore *float64 `json:"sleep_score"`
	Model      string   `json:"model"`
}

func toWire(f domain.SleepSessionFeatures) wireRequest {
	return wireRequest{
		Duration:   f.Duration,
		Awakenings: f.Awakenings,
		Stress:     f.Stress,
		Caffeine:   f.Caffeine,
		ScreenTime: f.ScreenTime,
		Exercise:   f.Exercise,
		Mood:       f.Mood,
	}
}

// Predict returns the remote judgment, or the fallback formula's result on any failure.
func (g *Gateway) Predict(ctx context.Context, features domain.SleepSessionFeatures) domain.PredictionResult {
	tracer := otel.Tracer("sleep-ai/predict")
	ctx, span := tracer.Start(ctx, "PredictionGateway.Predict",
		trace.WithAttributes(attribute.String("predict.url", g.url)),
	)
	defer span.End()

	g.log.Debug("Making prediction request", "url", g.url)

	result, err := g.remote(ctx, features)
	if err != nil {
		g.log.Warn("ML service unavailable, using fallback formula", "error", err, "url", g.url)
		span.RecordError(err)
		result = score.Estimate(features)
	} else {
		g.log.Info("Prediction successful", "sleep_score", result.SleepScore, "model", result.Model)
	}

	span.SetAttributes(
		attribute.String("predict.model", result.Model),
		attribute.Float64("predict.sleep_score", result.SleepScore),
		attribute.Bool("predict.fallback", result.IsFallback()),
	)
	return result
}

func (g *Gateway) remote(ctx context.Context, features domain.SleepSessionFeatures) (domain.PredictionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(toWire(features)).
		Post(g.url)
	if err != nil {
		if isTimeout(err) {
			return domain.PredictionResult{}, fmt.Errorf("%w after %s", ErrPredictionTimeout, g.timeout)
		}
		return domain.PredictionResult{}, fmt.Errorf("%w: %v", ErrPredictionTransport, err)
	}
	if !resp.IsSuccess() {
		return domain.PredictionResult{}, fmt.Errorf("%w: status %d", ErrPredictionResponse, resp.StatusCode())
	}

	var body wireResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return domain.PredictionResult{}, fmt.Errorf("%w: %v", ErrPredictionResponse, err)
	}
	if body.SleepScore == nil || body.Model == "" {
		return domain.PredictionResult{}, fmt.Errorf("%w: missing sleep_score or model", ErrPredictionResponse)
	}
	if *body.SleepScore < score.MinScore || *body.SleepScore > score.MaxScore {
		return domain.PredictionResult{}, fmt.Errorf("%w: sleep_score %v out of range", ErrPredictionResponse, *body.SleepScore)
	}

	return domain.PredictionResult{
		SleepScore: *body.SleepScore,
		Model:      body.Model,
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
