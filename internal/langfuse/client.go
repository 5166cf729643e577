// Package langfuse records advice generations and user ratings in Langfuse
// through its public ingestion API. An unconfigured client is a no-op.
package langfuse

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/blaisecz/sleep-ai/internal/logger"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// asyncTimeout bounds each background ingestion call.
const asyncTimeout = 5 * time.Second

// Client is the interface for Langfuse operations.
type Client interface {
	IsEnabled() bool
	// CreateTrace queues a trace and returns its ID.
	CreateTrace(ctx context.Context, in TraceInput) (string, error)
	// CreateScore queues a score for an existing trace.
	CreateScore(ctx context.Context, in ScoreInput) error
	// Close waits for queued events to be sent or for ctx to end.
	Close(ctx context.Context) error
}

// TraceInput contains the data for creating a trace.
type TraceInput struct {
	ID       string // generated when empty
	UserID   string
	Name     string // e.g. "sleep-advice"
	Input    any
	Output   any
	Tags     []string
	Metadata map[string]any
}

// ScoreInput contains the data for creating a score.
type ScoreInput struct {
	TraceID string
	Name    string // e.g. "user_rating"
	Value   float64
	Comment string
}

// Config holds Langfuse client configuration.
type Config struct {
	BaseURL     string
	PublicKey   string
	SecretKey   string
	Environment string
}

func (c Config) enabled() bool {
	return c.BaseURL != "" && c.PublicKey != "" && c.SecretKey != ""
}

type client struct {
	http        *resty.Client
	environment string
	enabled     bool
	log         *logger.Logger
	pending     sync.WaitGroup
}

// NewClient creates a Langfuse client, disabled when any credential is missing.
func NewClient(cfg Config, log *logger.Logger) Client {
	log = log.With("component", "langfuse")
	enabled := cfg.enabled()
	if enabled {
		log.Info("Langfuse enabled", "base_url", cfg.BaseURL, "env", cfg.Environment)
	} else {
		log.Info("Langfuse disabled: base URL or keys missing")
	}

	return &client{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetBasicAuth(cfg.PublicKey, cfg.SecretKey).
			SetHeader("Content-Type", "application/json").
			SetTimeout(10 * time.Second),
		environment: cfg.Environment,
		enabled:     enabled,
		log:         log,
	}
}

func (c *client) IsEnabled() bool {
	return c.enabled
}

func (c *client) CreateTrace(ctx context.Context, in TraceInput) (string, error) {
	if !c.enabled {
		return "", nil
	}

	traceID := in.ID
	if traceID == "" {
		traceID = uuid.New().String()
	}

	metadata := in.Metadata
	if c.environment != "" {
		metadata = make(map[string]any, len(in.Metadata)+1)
		maps.Copy(metadata, in.Metadata)
		metadata["environment"] = c.environment
	}

	c.enqueue(newEvent("trace-create", traceBody{
		ID:       traceID,
		Name:     in.Name,
		UserID:   in.UserID,
		Input:    in.Input,
		Output:   in.Output,
		Tags:     in.Tags,
		Metadata: metadata,
	}))

	return traceID, nil
}

func (c *client) CreateScore(ctx context.Context, in ScoreInput) error {
	if !c.enabled {
		return nil
	}
	if in.TraceID == "" {
		return fmt.Errorf("langfuse score: trace id is required")
	}

	c.enqueue(newEvent("score-create", scoreBody{
		ID:      uuid.New().String(),
		TraceID: in.TraceID,
		Name:    in.Name,
		Value:   in.Value,
		Comment: in.Comment,
	}))

	return nil
}

func (c *client) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// enqueue sends off the request path; failures are only logged.
func (c *client) enqueue(event ingestionEvent) {
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
		defer cancel()

		if err := c.sendBatch(ctx, []ingestionEvent{event}); err != nil {
			c.log.Warn("Langfuse ingestion failed", "type", event.Type, "error", err)
		}
	}()
}

func (c *client) sendBatch(ctx context.Context, events []ingestionEvent) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(batchPayload{Batch: events}).
		Post("/api/public/ingestion")
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("ingestion failed with status %d", resp.StatusCode())
	}
	return nil
}

func newEvent(eventType string, body any) ingestionEvent {
	return ingestionEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Body:      body,
	}
}

type batchPayload struct {
	Batch []ingestionEvent `json:"batch"`
}

type ingestionEvent struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Body      any    `json:"body"`
}

type traceBody struct {
	ID       string         `json:"id"`
	Name     string         `json:"name,omitempty"`
	UserID   string         `json:"userId,omitempty"`
	Input    any            `json:"input,omitempty"`
	Output   any            `json:"output,omitempty"`
	Tags     []string       `json:"tags,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type scoreBody struct {
	ID      string  `json:"id"`
	TraceID string  `json:"traceId"`
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Comment string  `json:"comment,omitempty"`
}
