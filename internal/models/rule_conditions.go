package models

// Condition names persisted on adaptation_rules documents
const (
	ConditionStrugglingLearner = "struggling_learner"
	ConditionFastLearner       = "fast_learner"
	ConditionLowCompletion     = "low_completion"
	ConditionReEngagement      = "re_engagement"
)

// ruleConditions maps persisted condition names to predicates. Rules whose
// condition is missing here simply never fire, so removing an entry is a safe
// way to retire a policy without touching stored trigger state.
var ruleConditions = map[string]RuleConditionFunc{
	// Consistently low scores and completion while still showing up.
	ConditionStrugglingLearner: func(m LearningMetrics, _ RuleContext) bool {
		return m.SessionsCount > 0 && m.StruggleScore >= 0.6
	},

	// High scores with most material completed: ready for harder content.
	ConditionFastLearner: func(m LearningMetrics, _ RuleContext) bool {
		return m.AverageScore >= 85 && m.CompletionRate >= 0.8
	},

	// Active enough, but finishing very little of what was started.
	ConditionLowCompletion: func(m LearningMetrics, _ RuleContext) bool {
		return m.SessionsCount >= 3 && m.CompletionRate < 0.3
	},

	// Barely any recent activity and the streak is gone.
	ConditionReEngagement: func(m LearningMetrics, _ RuleContext) bool {
		return m.SessionsCount <= 1 && m.StreakDays == 0
	},
}

// KnownCondition reports whether name resolves to a registered predicate
func KnownCondition(name string) bool {
	_, ok := ruleConditions[name]
	return ok
}
