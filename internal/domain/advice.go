package domain

import (
	"time"

	"github.com/google/uuid"
)

// Advice sources.
const (
	AdviceSourceRules = "rules"
	AdviceSourceLLM   = "llm"
)

// AdviceRequest asks for advice about a session.
// Either UseLast is set or Features is supplied.
// @Description Advice request for the latest log or explicit features.
type AdviceRequest struct {
	UseLast  bool                  `json:"useLast" example:"true"`
	Features *SleepSessionFeatures `json:"features,omitempty"`
}

// AdviceResponse carries advice text.
// @Description Sleep advice.
type AdviceResponse struct {
	Advice string `json:"advice" example:"Reduce caffeine intake. Reduce screen time before sleep."`
	Source string `json:"source" example:"rules" enums:"rules,llm"`
	// Langfuse trace for rating the advice (LLM advice only)
	TraceID string `json:"traceId,omitempty"`
}

// AdviceContext is what the LLM receives to write advice.
type AdviceContext struct {
	Features SleepSessionFeatures `json:"features"`
	Summary  *SleepSummary        `json:"summary,omitempty"`
}

// LLMAdviceOutput is the structured advice returned by the LLM.
type LLMAdviceOutput struct {
	Advice string   `json:"advice"`
	Tips   []string `json:"tips"`
}

// AdviceFeedbackRequest rates a piece of LLM advice.
type AdviceFeedbackRequest struct {
	TraceID string `json:"traceId" validate:"required"`
	Score   int    `json:"score" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty" validate:"omitempty,max=1000"`
}

// ChatRequest is a message to the sleep coach.
type ChatRequest struct {
	Message string `json:"message" validate:"required,max=2000" example:"How is my sleep?"`
}

// ChatResponse is the coach's reply.
type ChatResponse struct {
	Reply string `json:"reply" example:"You're averaging 7.5 hours with a score of 80/100. Trend: stable."`
}

// AdviceTrace records which user an advice trace was issued to, so only
// that user can rate it.
type AdviceTrace struct {
	TraceID   string    `gorm:"type:varchar(64);primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (AdviceTrace) TableName() string {
	return "advice_traces"
}
