package service

import (
	"context"
	"strings"
	"testing"

	"github.com/blaisecz/sleep-ai/internal/domain"
	"github.com/google/uuid"
)

func TestCoachService_Reply(t *testing.T) {
	userID := uuid.New()
	logs := NewMockSleepLogRepository()

	// Newest first: 8h/100, 6h/... so the latest night improved.
	older := referenceFeatures
	older.Duration = 6
	older.Stress = 8
	logs.add(userID, day(0), older)
	logs.add(userID, day(1), referenceFeatures)

	svc := NewCoachService(NewTrendsService(logs, newMockTrendsCache()))

	tests := []struct {
		message string
		want    string
	}{
		{"Hey there", "Hi! I'm your sleep coach."},
		{"How did I sleep this week?", "You're averaging 6.8 hours with a score of"},
		{"Any tips?", "Here are 3 quick tips"},
		{"What's my score", "Your score:"},
		{"set a goal", "Bedtime: 10:00 PM"},
		{"show my trend", "Trend: improving. Getting better! 2 nights logged."},
		{"thanks!", "You're welcome!"},
		{"this is unrelated", "Ask me about:"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			resp, err := svc.Reply(context.Background(), userID, tt.message)
			if err != nil {
				t.Fatalf("Reply() error = %v", err)
			}
			if !strings.Contains(resp.Reply, tt.want) {
				t.Errorf("Reply(%q) = %q, want it to contain %q", tt.message, resp.Reply, tt.want)
			}
		})
	}
}

func TestCoachService_Reply_NoData(t *testing.T) {
	svc := NewCoachService(NewTrendsService(NewMockSleepLogRepository(), newMockTrendsCache()))

	tests := map[string]string{
		"how do I sleep":  "I don't see any sleep data yet.",
		"my score":        "No sleep scores yet.",
		"progress please": "Need more data.",
	}
	for msg, want := range tests {
		resp, err := svc.Reply(context.Background(), uuid.New(), msg)
		if err != nil {
			t.Fatalf("Reply(%q) error = %v", msg, err)
		}
		if !strings.HasPrefix(resp.Reply, want) {
			t.Errorf("Reply(%q) = %q, want prefix %q", msg, resp.Reply, want)
		}
	}
}

func TestCoachService_ScoreFeedback(t *testing.T) {
	tests := []struct {
		avg  float64
		want string
	}{
		{85, "Excellent!"},
		{79.6, "Excellent!"},
		{65, "Good!"},
		{40, "Needs work!"},
	}
	rule := coachRules[3]
	for _, tt := range tests {
		got := rule.reply(&domain.SleepSummary{Count: 1, Score: domain.DescriptiveStats{Avg: tt.avg}})
		if !strings.HasSuffix(got, tt.want) {
			t.Errorf("score reply for %v = %q, want suffix %q", tt.avg, got, tt.want)
		}
	}
}
