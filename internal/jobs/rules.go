package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"mentora/internal/models"
)

// evaluateRules runs every applicable adaptation rule against the user's
// latest analytics. Rules are independent: a failing rule is logged and the
// rest still evaluate. Without a snapshot there is nothing to evaluate.
func (e *Engine) evaluateRules(ctx context.Context, user models.UserRef, now time.Time) error {
	userID := user.UserID()

	latest, err := e.deps.Analytics.LatestForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("latest analytics for rules: %w", err)
	}
	if latest == nil {
		return nil
	}

	rules, err := e.deps.Rules.ApplicableRules(ctx, models.RuleCategoryGeneral)
	if err != nil {
		return fmt.Errorf("applicable rules: %w", err)
	}

	rctx := models.RuleContext{UserID: userID}
	for i := range rules {
		rule := &rules[i]

		if !rule.Evaluate(latest.Metrics, rctx) {
			continue
		}
		if rule.InCooldown(now) {
			continue
		}

		log.Printf("🎯 [ADAPTIVE] Rule %q triggered for user %s", rule.Name, userID)
		e.dispatchActions(ctx, user, rule.Actions)

		// The rule fired, so the trigger is recorded even if a sub-action
		// failed above.
		if err := e.deps.Rules.RecordTrigger(ctx, rule.ID, now); err != nil {
			log.Printf("⚠️  [ADAPTIVE] Failed to record trigger for rule %q: %v", rule.Name, err)
		}
		if e.deps.Metrics != nil {
			e.deps.Metrics.RulesTriggered.WithLabelValues(rule.Name).Inc()
		}
	}

	return nil
}

// dispatchActions fans a matched rule's bundle out to its sub-handlers.
// Absent actions are skipped; each present one is independently best-effort,
// so one handler's failure never blocks its siblings. Returns how many
// handlers ran cleanly.
func (e *Engine) dispatchActions(ctx context.Context, user models.UserRef, bundle models.ActionBundle) int {
	userID := user.UserID()

	handlers := []struct {
		kind    string
		present bool
		run     func(context.Context) error
	}{
		{"content", bundle.Content != nil, func(ctx context.Context) error {
			return e.deps.Content.ApplyContentActions(ctx, userID, *bundle.Content)
		}},
		{"aiPersonality", bundle.AIPersonality != nil, func(ctx context.Context) error {
			return e.applyPersonality(ctx, user, *bundle.AIPersonality)
		}},
		{"pace", bundle.Pace != nil, func(ctx context.Context) error {
			return e.deps.Planner.AdjustPace(ctx, userID, *bundle.Pace)
		}},
		{"intervention", bundle.Intervention != nil, func(ctx context.Context) error {
			return e.applyIntervention(ctx, userID, *bundle.Intervention)
		}},
		{"recommendations", bundle.Recommendations != nil, func(ctx context.Context) error {
			return e.applyRecommendationAction(ctx, userID, *bundle.Recommendations)
		}},
	}

	applied := 0
	for _, h := range handlers {
		if !h.present {
			continue
		}
		if err := h.run(ctx); err != nil {
			log.Printf("⚠️  [ADAPTIVE] %s action failed for user %s: %v", h.kind, userID, err)
			continue
		}
		applied++
	}
	return applied
}

// applyPersonality mutates learningProfile.aiPersonality unless the action
// carries the "auto" sentinel (or nothing at all).
func (e *Engine) applyPersonality(ctx context.Context, user models.UserRef, action models.AIPersonalityAction) error {
	if action.SwitchTo == "" || action.SwitchTo == models.AIPersonalityAuto {
		return nil
	}
	if user.LearningProfile.AIPersonality == action.SwitchTo {
		return nil
	}
	return e.deps.Profiles.SetAIPersonality(ctx, user.UserID(), action.SwitchTo)
}

// applyIntervention fires the notification and the check-in independently;
// both may run for the same bundle and either may fail alone.
func (e *Engine) applyIntervention(ctx context.Context, userID string, action models.InterventionAction) error {
	var firstErr error

	if action.SendNotification {
		kind := action.NotificationKind
		if kind == "" {
			kind = "intervention"
		}
		if err := e.deps.Notifier.Notify(ctx, userID, kind); err != nil {
			firstErr = fmt.Errorf("notify: %w", err)
		}
	}

	if action.ScheduleCheckin {
		if err := e.deps.Planner.ScheduleCheckin(ctx, userID); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("schedule checkin: %w", err)
		}
	}

	return firstErr
}

// applyRecommendationAction generates up to two learning-path suggestions
func (e *Engine) applyRecommendationAction(ctx context.Context, userID string, action models.RecommendationAction) error {
	if !action.SuggestNewPath {
		return nil
	}
	_, err := e.deps.Recommendations.Generate(ctx, userID, models.GenerateOptions{
		MaxCount: 2,
		Type:     models.RecommendationLearningPath,
	})
	return err
}
