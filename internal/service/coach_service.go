package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/blaisecz/sleep-ai/internal/domain"
	"github.com/google/uuid"
)

// CoachService answers chat messages from a scripted rule table.
type CoachService interface {
	Reply(ctx context.Context, userID uuid.UUID, message string) (*domain.ChatResponse, error)
}

type coachService struct {
	trends TrendsService
}

func NewCoachService(trends TrendsService) CoachService {
	return &coachService{trends: trends}
}

type coachRule struct {
	match func(words map[string]bool, msg string) bool
	reply func(s *domain.SleepSummary) string
}

var coachRules = []coachRule{
	{
		match: func(w map[string]bool, _ string) bool { return w["hello"] || w["hi"] || w["hey"] },
		reply: func(*domain.SleepSummary) string {
			return "Hi! I'm your sleep coach. How's your sleep going?"
		},
	},
	{
		match: func(_ map[string]bool, m string) bool {
			return strings.Contains(m, "how") && strings.Contains(m, "sleep")
		},
		reply: func(s *domain.SleepSummary) string {
			if s.Count == 0 {
				return "I don't see any sleep data yet. Did you log your sleep?"
			}
			return fmt.Sprintf("You're averaging %.1f hours with a score of %d/100. Trend: %s.",
				s.Duration.Avg, roundScore(s.Score.Avg), s.Trend)
		},
	},
	{
		match: containsAny("tip", "advice", "help"),
		reply: func(*domain.SleepSummary) string {
			return "Here are 3 quick tips:\n\n1. No phones 30 mins before bed\n2. Cool room (68°F)\n3. 4-7-8 breathing\n\nTry these tonight!"
		},
	},
	{
		match: containsAny("score", "quality"),
		reply: func(s *domain.SleepSummary) string {
			if s.Count == 0 {
				return "No sleep scores yet. Log your sleep first!"
			}
			avg := roundScore(s.Score.Avg)
			feedback := "Needs work!"
			switch {
			case avg >= 80:
				feedback = "Excellent!"
			case avg >= 60:
				feedback = "Good!"
			}
			return fmt.Sprintf("Your score: %d/100. %s", avg, feedback)
		},
	},
	{
		match: containsAny("goal", "target"),
		reply: func(*domain.SleepSummary) string {
			return "Here's what I suggest:\n\nBedtime: 10:00 PM\nWake: 6:00 AM\n\nCan you try this for a week?"
		},
	},
	{
		match: containsAny("trend", "progress"),
		reply: func(s *domain.SleepSummary) string {
			if s.Count == 0 {
				return "Need more data. Log more sleeps!"
			}
			encouragement := "Steady progress."
			switch s.Trend {
			case domain.TrendImproving:
				encouragement = "Getting better!"
			case domain.TrendDeclining:
				encouragement = "Let's fix this."
			}
			return fmt.Sprintf("Trend: %s. %s %d nights logged.", s.Trend, encouragement, s.Count)
		},
	},
	{
		match: containsAny("thank"),
		reply: func(*domain.SleepSummary) string {
			return "You're welcome! Sweet dreams!"
		},
	},
}

const coachDefaultReply = "Ask me about:\n\nSleep scores\nTips for better sleep\nGoals\nYour trends\n\nWhat do you want to know?"

func containsAny(keywords ...string) func(map[string]bool, string) bool {
	return func(_ map[string]bool, msg string) bool {
		for _, k := range keywords {
			if strings.Contains(msg, k) {
				return true
			}
		}
		return false
	}
}

func roundScore(v float64) int {
	return int(math.Round(v))
}

func (s *coachService) Reply(ctx context.Context, userID uuid.UUID, message string) (*domain.ChatResponse, error) {
	msg := strings.ToLower(message)
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(msg, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		words[w] = true
	}

	for _, rule := range coachRules {
		if !rule.match(words, msg) {
			continue
		}
		summary, err := s.trends.Summary(ctx, userID, MaxTrendWindow)
		if err != nil {
			return nil, err
		}
		return &domain.ChatResponse{Reply: rule.reply(summary)}, nil
	}

	return &domain.ChatResponse{Reply: coachDefaultReply}, nil
}
