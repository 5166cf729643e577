package domain

import (
	"time"

	"github.com/google/uuid"
)

// ModelFallbackFormula tags predictions computed locally by the fallback formula.
const ModelFallbackFormula = "fallback_formula"

// SleepSessionFeatures are the seven numeric inputs describing one sleep session.
// @Description Sleep session inputs used for scoring.
type SleepSessionFeatures struct {
	// Sleep duration in hours (0-24)
	Duration float64 `gorm:"not null" json:"duration" validate:"gte=0,lte=24" example:"7.5"`
	// Number of awakenings during the night (0-20)
	Awakenings int `gorm:"type:smallint;not null" json:"awakenings" validate:"gte=0,lte=20" example:"1"`
	// Stress level from 1 (relaxed) to 10 (very stressed)
	Stress int `gorm:"type:smallint;not null" json:"stress" validate:"gte=1,lte=10" example:"3"`
	// Caffeine consumed in mg (0-500)
	Caffeine int `gorm:"type:smallint;not null" json:"caffeine" validate:"gte=0,lte=500" example:"100"`
	// Screen time before bed in minutes (0-180)
	ScreenTime int `gorm:"type:smallint;not null" json:"screenTime" validate:"gte=0,lte=180" example:"60"`
	// Exercise in minutes (0-120)
	Exercise int `gorm:"type:smallint;not null" json:"exercise" validate:"gte=0,lte=120" example:"30"`
	// Mood from 1 (very bad) to 10 (excellent)
	Mood int `gorm:"type:smallint;not null" json:"mood" validate:"gte=1,lte=10" example:"7"`
}

// PredictionResult is a sleep score together with the model that produced it.
// @Description Sleep score prediction.
type PredictionResult struct {
	// Sleep score (0-100)
	SleepScore float64 `gorm:"column:sleep_score;not null" json:"sleepScore" example:"82"`
	// Source of the score: the remote model name or "fallback_formula"
	Model string `gorm:"column:model;type:varchar(64);not null" json:"model" example:"random_forest"`
	// Features the score was computed from (fallback only)
	Features *SleepSessionFeatures `gorm:"column:features;serializer:json" json:"features,omitempty"`
}

// IsFallback reports whether the score was computed locally.
func (p PredictionResult) IsFallback() bool {
	return p.Model == ModelFallbackFormula
}

// SleepLog is a persisted, immutable sleep session with its prediction.
type SleepLog struct {
	ID         uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID            `gorm:"type:uuid;not null;index:idx_sleep_logs_user_date" json:"userId"`
	Date       time.Time            `gorm:"not null;index:idx_sleep_logs_user_date,sort:desc" json:"date"`
	Features   SleepSessionFeatures `gorm:"embedded" json:"-"`
	Prediction PredictionResult     `gorm:"embedded;embeddedPrefix:prediction_" json:"prediction"`
	CreatedAt  time.Time            `gorm:"autoCreateTime" json:"createdAt"`
}

func (SleepLog) TableName() string {
	return "sleep_logs"
}

// CreateSleepLogRequest is the request body for submitting a sleep log.
// Pointer fields distinguish a missing value from a legitimate zero.
// @Description Request payload for recording a sleep session.
type CreateSleepLogRequest struct {
	// Sleep duration in hours
	Duration *float64 `json:"duration" validate:"required,gte=0,lte=24" example:"7.5" minimum:"0" maximum:"24"`
	// Number of awakenings
	Awakenings *int `json:"awakenings" validate:"required,gte=0,lte=20" example:"1" minimum:"0" maximum:"20"`
	// Stress level
	Stress *int `json:"stress" validate:"required,gte=1,lte=10" example:"3" minimum:"1" maximum:"10"`
	// Caffeine in mg
	Caffeine *int `json:"caffeine" validate:"required,gte=0,lte=500" example:"100" minimum:"0" maximum:"500"`
	// Screen time before bed in minutes
	ScreenTime *int `json:"screenTime" validate:"required,gte=0,lte=180" example:"60" minimum:"0" maximum:"180"`
	// Exercise in minutes
	Exercise *int `json:"exercise" validate:"required,gte=0,lte=120" example:"30" minimum:"0" maximum:"120"`
	// Mood level
	Mood *int `json:"mood" validate:"required,gte=1,lte=10" example:"7" minimum:"1" maximum:"10"`
	// Optional session date (RFC3339), defaults to now
	Date *time.Time `json:"date,omitempty" example:"2025-12-18T07:00:00Z"`
}

// Features converts a validated request into session features.
// Must only be called after validation has passed.
func (r *CreateSleepLogRequest) Features() SleepSessionFeatures {
	return SleepSessionFeatures{
		Duration:   *r.Duration,
		Awakenings: *r.Awakenings,
		Stress:     *r.Stress,
		Caffeine:   *r.Caffeine,
		ScreenTime: *r.ScreenTime,
		Exercise:   *r.Exercise,
		Mood:       *r.Mood,
	}
}

// SleepLogResponse is the response body for sleep log endpoints.
// @Description Persisted sleep session with its score.
type SleepLogResponse struct {
	ID     uuid.UUID `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	UserID uuid.UUID `json:"userId" example:"660e8400-e29b-41d4-a716-446655440001"`
	Date   time.Time `json:"date" example:"2025-12-18T07:00:00Z"`
	SleepSessionFeatures
	Prediction PredictionResult `json:"prediction"`
	CreatedAt  time.Time        `json:"createdAt" example:"2025-12-18T07:05:00Z"`
}

func (s *SleepLog) ToResponse() SleepLogResponse {
	return SleepLogResponse{
		ID:                   s.ID,
		UserID:               s.UserID,
		Date:                 s.Date,
		SleepSessionFeatures: s.Features,
		Prediction:           s.Prediction,
		CreatedAt:            s.CreatedAt,
	}
}

// SleepLogListResponse is the response body for listing sleep logs.
// @Description Paginated list of sleep logs.
type SleepLogListResponse struct {
	Data       []SleepLogResponse `json:"data"`
	Pagination PaginationResponse `json:"pagination"`
}

// PaginationResponse contains pagination metadata.
// @Description Cursor-based pagination info.
type PaginationResponse struct {
	// Cursor for fetching the next page (empty if no more pages)
	NextCursor string `json:"nextCursor,omitempty"`
	// True if more results are available
	HasMore bool `json:"hasMore" example:"true"`
}

// SleepLogFilter contains filter parameters for listing sleep logs
type SleepLogFilter struct {
	Limit  int
	Cursor string
}
