package services

import (
	"time"

	"mentora/internal/models"
)

// builtinAdaptationRules returns the default policy set. Rules are matched by
// name on seeding, so renaming one here creates a new rule rather than
// migrating the old document.
func builtinAdaptationRules() []models.AdaptationRule {
	now := time.Now()
	return []models.AdaptationRule{
		{
			Name:          "struggling-learner-support",
			Description:   "Ease difficulty and reach out when a learner keeps scoring low",
			Category:      models.RuleCategoryGeneral,
			Condition:     models.ConditionStrugglingLearner,
			CooldownHours: 24,
			Enabled:       true,
			Actions: models.ActionBundle{
				Content:       &models.ContentAction{AdjustDifficulty: "easier"},
				AIPersonality: &models.AIPersonalityAction{SwitchTo: "encouraging"},
				Pace:          &models.PaceAction{Adjust: "slow_down"},
				Intervention: &models.InterventionAction{
					SendNotification: true,
					NotificationKind: "support",
					ScheduleCheckin:  true,
				},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			Name:          "fast-learner-acceleration",
			Description:   "Raise difficulty and suggest new paths for high performers",
			Category:      models.RuleCategoryGeneral,
			Condition:     models.ConditionFastLearner,
			CooldownHours: 72,
			Enabled:       true,
			Actions: models.ActionBundle{
				Content:         &models.ContentAction{AdjustDifficulty: "harder"},
				Pace:            &models.PaceAction{Adjust: "speed_up"},
				Recommendations: &models.RecommendationAction{SuggestNewPath: true},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			Name:          "low-completion-intervention",
			Description:   "Nudge learners who start a lot but finish little",
			Category:      models.RuleCategoryGeneral,
			Condition:     models.ConditionLowCompletion,
			CooldownHours: 48,
			Enabled:       true,
			Actions: models.ActionBundle{
				// "auto" keeps whatever personality the tutor already picked
				AIPersonality: &models.AIPersonalityAction{SwitchTo: models.AIPersonalityAuto},
				Intervention: &models.InterventionAction{
					SendNotification: true,
					NotificationKind: "nudge",
				},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			Name:          "re-engagement",
			Description:   "Win back learners whose streak has lapsed",
			Category:      models.RuleCategoryGeneral,
			Condition:     models.ConditionReEngagement,
			CooldownHours: 168,
			Enabled:       true,
			Actions: models.ActionBundle{
				Intervention: &models.InterventionAction{
					SendNotification: true,
					NotificationKind: "re_engagement",
				},
				Recommendations: &models.RecommendationAction{SuggestNewPath: true},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}
