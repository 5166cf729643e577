package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/blaisecz/sleep-ai/internal/domain"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

var (
	// ErrOpenAIUnavailable indicates the OpenAI service is not configured or unavailable.
	ErrOpenAIUnavailable = errors.New("OpenAI service unavailable")
	// ErrOpenAIRequest indicates an error during the OpenAI API request.
	ErrOpenAIRequest = errors.New("OpenAI request failed")
	// ErrOpenAIResponse indicates an error parsing the OpenAI response.
	ErrOpenAIResponse = errors.New("failed to parse OpenAI response")
)

// DefaultSystemPrompt is used when no prompt is managed in Langfuse.
const DefaultSystemPrompt = `You are a non-medical sleep coach.

You receive the inputs of one night of sleep for a single user: duration in hours,
number of awakenings, stress (1-10), caffeine in mg, screen time before bed in
minutes, exercise in minutes and mood (1-10). You may also receive a summary of the
user's recent nights with score and duration statistics and a trend.

Rules:
- Do NOT provide medical advice or diagnoses.
- Focus on behavior and routines: caffeine timing, screens, wind-down, exercise, schedule.
- Base every suggestion on the provided numbers.
- Be concise and concrete.

You must respond as strict JSON with exactly this shape:

{
  "advice": "1-2 sentences addressing the most important issue for this night.",
  "tips": ["2-3 short, concrete suggestions"]
}

No extra fields. No comments. No backticks.`

const userPromptTemplate = `Here is JSON describing this user's night and recent history.

JSON:

%s

Based on this data, respond in the required JSON format.`

// AdviceLLM writes sleep advice from session features.
type AdviceLLM interface {
	GenerateAdvice(ctx context.Context, adviceCtx *domain.AdviceContext) (*domain.LLMAdviceOutput, error)
}

// OpenAIClient implements AdviceLLM using the OpenAI API.
type OpenAIClient struct {
	client       openai.Client
	model        string
	systemPrompt string
}

// NewOpenAIClient creates a new OpenAI client for generating advice.
// Returns nil if apiKey is empty.
func NewOpenAIClient(apiKey, model, systemPrompt string) *OpenAIClient {
	if apiKey == "" {
		return nil
	}

	if model == "" {
		model = "gpt-4o-mini"
	}
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = DefaultSystemPrompt
	}

	return &OpenAIClient{
		client:       openai.NewClient(option.WithAPIKey(apiKey)),
		model:        model,
		systemPrompt: systemPrompt,
	}
}

// GenerateAdvice asks the model for advice about one session.
func (c *OpenAIClient) GenerateAdvice(ctx context.Context, adviceCtx *domain.AdviceContext) (*domain.LLMAdviceOutput, error) {
	if c == nil {
		return nil, ErrOpenAIUnavailable
	}

	contextJSON, err := json.MarshalIndent(adviceCtx, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to serialize context: %v", ErrOpenAIRequest, err)
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(c.systemPrompt),
			openai.UserMessage(fmt.Sprintf(userPromptTemplate, string(contextJSON))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenAIRequest, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", ErrOpenAIResponse)
	}

	return ParseAdviceOutput(resp.Choices[0].Message.Content)
}

// ParseAdviceOutput decodes the model's JSON answer, tolerating a fenced code block.
func ParseAdviceOutput(content string) (*domain.LLMAdviceOutput, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var output domain.LLMAdviceOutput
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &output); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenAIResponse, err)
	}
	if strings.TrimSpace(output.Advice) == "" {
		return nil, fmt.Errorf("%w: empty advice", ErrOpenAIResponse)
	}
	return &output, nil
}
