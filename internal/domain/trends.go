package domain

import "time"

// Trend directions comparing the latest two scores.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// TrendPoint is a single charted session.
// @Description Score and duration of one session for charting.
type TrendPoint struct {
	Date     time.Time `json:"date" example:"2025-12-18T07:00:00Z"`
	Duration float64   `json:"duration" example:"7.5"`
	Score    float64   `json:"score" example:"82"`
}

// TrendsResponse is the response body for the weekly trends endpoint.
// @Description Most recent sessions, newest first.
type TrendsResponse struct {
	Data []TrendPoint `json:"data"`
}

// DescriptiveStats holds basic statistical measures.
// @Description Basic statistical measures for a metric.
type DescriptiveStats struct {
	Avg float64 `json:"avg" example:"7.2"`
	Std float64 `json:"std" example:"0.8"`
	Min float64 `json:"min" example:"5.5"`
	Max float64 `json:"max" example:"9.0"`
}

// SleepSummary aggregates the recent window of sessions.
// @Description Recent score and duration statistics.
type SleepSummary struct {
	// Number of sessions in the window
	Count int `json:"count" example:"7"`
	// Score statistics (0-100)
	Score DescriptiveStats `json:"score"`
	// Duration statistics in hours
	Duration DescriptiveStats `json:"duration"`
	// Latest score compared to the one before it
	Trend string `json:"trend" example:"improving" enums:"improving,declining,stable"`
}
