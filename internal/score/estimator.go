// Package score implements the local sleep-score formula used when no remote
// prediction is available.
package score

import (
	"math"

	"github.com/blaisecz/sleep-ai/internal/domain"
)

// Contribution caps for each stage of the formula.
const (
	MaxDurationBase      = 100.0
	MaxAwakeningsPenalty = 30.0
	MaxStressPenalty     = 20.0
	MaxCaffeinePenalty   = 15.0
	MaxScreenPenalty     = 20.0
	MaxExerciseBonus     = 15.0

	MinScore = 0
	MaxScore = 100
)

// Breakdown holds the clamped contribution of each stage.
type Breakdown struct {
	DurationBase      float64 `json:"duration_base"`
	AwakeningsPenalty float64 `json:"awakenings_penalty"`
	StressPenalty     float64 `json:"stress_penalty"`
	CaffeinePenalty   float64 `json:"caffeine_penalty"`
	ScreenPenalty     float64 `json:"screen_penalty"`
	ExerciseBonus     float64 `json:"exercise_bonus"`
	MoodAdjustment    float64 `json:"mood_adjustment"`
}

// Raw is the unrounded, unclamped sum of all contributions.
func (b Breakdown) Raw() float64 {
	return b.DurationBase -
		b.AwakeningsPenalty -
		b.StressPenalty -
		b.CaffeinePenalty -
		b.ScreenPenalty +
		b.ExerciseBonus +
		b.MoodAdjustment
}

// Analyze computes every stage of the formula for f.
func Analyze(f domain.SleepSessionFeatures) Breakdown {
	return Breakdown{
		DurationBase:      clamp(DurationBase(f.Duration), 0, MaxDurationBase),
		AwakeningsPenalty: clamp(float64(f.Awakenings)*5, 0, MaxAwakeningsPenalty),
		StressPenalty:     clamp(math.Max(0, float64(f.Stress-2))*5, 0, MaxStressPenalty),
		CaffeinePenalty:   clamp(float64(f.Caffeine)/100*5, 0, MaxCaffeinePenalty),
		ScreenPenalty:     clamp(float64(f.ScreenTime)/60*10, 0, MaxScreenPenalty),
		ExerciseBonus:     clamp(float64(f.Exercise)/30*10, 0, MaxExerciseBonus),
		MoodAdjustment:    float64(f.Mood-3) * 5,
	}
}

// Compute returns the 0-100 sleep score for f.
func Compute(f domain.SleepSessionFeatures) int {
	raw := Analyze(f).Raw()
	if math.IsNaN(raw) {
		return MinScore
	}
	return int(clamp(math.Round(raw), MinScore, MaxScore))
}

// Estimate wraps Compute into a prediction tagged as the fallback formula.
func Estimate(f domain.SleepSessionFeatures) domain.PredictionResult {
	features := f
	return domain.PredictionResult{
		SleepScore: float64(Compute(f)),
		Model:      domain.ModelFallbackFormula,
		Features:   &features,
	}
}

// DurationBase is the piecewise base score for a night of d hours, before clamping.
// It peaks at 8h and degrades towards 40 for very short and 60 for very long sleep.
func DurationBase(d float64) float64 {
	switch {
	case d < 6:
		return 40 + d*10
	case d < 7:
		return 70 + (d-6)*15
	case d <= 9:
		return 85 + (8-math.Abs(d-8))*5
	case d <= 10:
		return 80 + (10-d)*5
	case d <= 11:
		return 75 + (11-d)*5
	default:
		return 60
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
