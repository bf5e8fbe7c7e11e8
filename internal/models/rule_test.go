package models

import (
	"testing"
	"time"
)

func TestInCooldown(t *testing.T) {
	now := time.Now()
	triggeredAt := now.Add(-30 * time.Minute)

	tests := []struct {
		name            string
		lastTriggeredAt *time.Time
		cooldownHours   int
		expected        bool
	}{
		{
			name:            "Never triggered",
			lastTriggeredAt: nil,
			cooldownHours:   1,
			expected:        false,
		},
		{
			name:            "Triggered 30 minutes ago with 1h cooldown",
			lastTriggeredAt: &triggeredAt,
			cooldownHours:   1,
			expected:        true,
		},
		{
			name:            "Triggered 61 minutes ago with 1h cooldown",
			lastTriggeredAt: timePtr(now.Add(-61 * time.Minute)),
			cooldownHours:   1,
			expected:        false,
		},
		{
			name:            "Triggered exactly at cooldown boundary",
			lastTriggeredAt: timePtr(now.Add(-1 * time.Hour)),
			cooldownHours:   1,
			expected:        false,
		},
		{
			name:            "Long cooldown still holding after a day",
			lastTriggeredAt: timePtr(now.Add(-24 * time.Hour)),
			cooldownHours:   72,
			expected:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := &AdaptationRule{
				Name:            "test-rule",
				CooldownHours:   tt.cooldownHours,
				LastTriggeredAt: tt.lastTriggeredAt,
			}
			if got := rule.InCooldown(now); got != tt.expected {
				t.Errorf("Expected InCooldown=%v, got %v", tt.expected, got)
			}
		})
	}
}

func TestEvaluateConditions(t *testing.T) {
	rctx := RuleContext{UserID: "user-1"}

	tests := []struct {
		name      string
		condition string
		metrics   LearningMetrics
		expected  bool
	}{
		{
			name:      "Struggling learner matches",
			condition: ConditionStrugglingLearner,
			metrics:   LearningMetrics{SessionsCount: 4, StruggleScore: 0.7},
			expected:  true,
		},
		{
			name:      "Struggling learner needs activity",
			condition: ConditionStrugglingLearner,
			metrics:   LearningMetrics{SessionsCount: 0, StruggleScore: 0.9},
			expected:  false,
		},
		{
			name:      "Fast learner matches",
			condition: ConditionFastLearner,
			metrics:   LearningMetrics{AverageScore: 92, CompletionRate: 0.85},
			expected:  true,
		},
		{
			name:      "Fast learner with low completion does not match",
			condition: ConditionFastLearner,
			metrics:   LearningMetrics{AverageScore: 92, CompletionRate: 0.5},
			expected:  false,
		},
		{
			name:      "Low completion matches",
			condition: ConditionLowCompletion,
			metrics:   LearningMetrics{SessionsCount: 5, CompletionRate: 0.1},
			expected:  true,
		},
		{
			name:      "Re-engagement matches idle user",
			condition: ConditionReEngagement,
			metrics:   LearningMetrics{SessionsCount: 0, StreakDays: 0},
			expected:  true,
		},
		{
			name:      "Unknown condition never matches",
			condition: "does_not_exist",
			metrics:   LearningMetrics{SessionsCount: 10, StruggleScore: 1.0},
			expected:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := &AdaptationRule{Name: "test", Condition: tt.condition}
			if got := rule.Evaluate(tt.metrics, rctx); got != tt.expected {
				t.Errorf("Expected Evaluate=%v, got %v", tt.expected, got)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
