package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RuleCategoryGeneral is the base category applying to every user. Narrower
// targeting (per-cohort categories) is a configuration concern.
const RuleCategoryGeneral = "general"

// RuleContext carries per-evaluation context into rule conditions
type RuleContext struct {
	UserID string
}

// RuleConditionFunc decides whether a rule matches a user's latest metrics
type RuleConditionFunc func(m LearningMetrics, rctx RuleContext) bool

// ContentAction adjusts what content the learner is served
type ContentAction struct {
	AdjustDifficulty string   `bson:"adjustDifficulty,omitempty" json:"adjust_difficulty,omitempty"` // "easier" or "harder"
	SuggestTopics    []string `bson:"suggestTopics,omitempty" json:"suggest_topics,omitempty"`
}

// AIPersonalityAction switches the tutor personality. SwitchTo of "auto" (or
// empty) is a no-op sentinel.
type AIPersonalityAction struct {
	SwitchTo string `bson:"switchTo,omitempty" json:"switch_to,omitempty"`
}

// PaceAction asks the scheduling collaborator to retune the learner's pace
type PaceAction struct {
	Adjust string `bson:"adjust" json:"adjust"` // "slow_down" or "speed_up"
}

// InterventionAction reaches out to the learner. Notification and check-in
// fire independently within the same bundle.
type InterventionAction struct {
	SendNotification bool   `bson:"sendNotification,omitempty" json:"send_notification,omitempty"`
	NotificationKind string `bson:"notificationKind,omitempty" json:"notification_kind,omitempty"`
	ScheduleCheckin  bool   `bson:"scheduleCheckin,omitempty" json:"schedule_checkin,omitempty"`
}

// RecommendationAction triggers extra recommendation generation
type RecommendationAction struct {
	SuggestNewPath bool `bson:"suggestNewPath,omitempty" json:"suggest_new_path,omitempty"`
}

// ActionBundle is the set of optional effects applied when a rule fires.
// Absent keys are skipped; each present action is independently best-effort.
type ActionBundle struct {
	Content         *ContentAction        `bson:"content,omitempty" json:"content,omitempty"`
	AIPersonality   *AIPersonalityAction  `bson:"aiPersonality,omitempty" json:"ai_personality,omitempty"`
	Pace            *PaceAction           `bson:"pace,omitempty" json:"pace,omitempty"`
	Intervention    *InterventionAction   `bson:"intervention,omitempty" json:"intervention,omitempty"`
	Recommendations *RecommendationAction `bson:"recommendations,omitempty" json:"recommendations,omitempty"`
}

// AdaptationRule is a configured adaptation policy. Condition names resolve
// to Go predicates via the condition registry; documents only persist the
// name plus trigger state.
type AdaptationRule struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"` // unique
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	Category        string             `bson:"category" json:"category"`
	Condition       string             `bson:"condition" json:"condition"`
	CooldownHours   int                `bson:"cooldownHours" json:"cooldown_hours"`
	LastTriggeredAt *time.Time         `bson:"lastTriggeredAt,omitempty" json:"last_triggered_at,omitempty"`
	TriggerCount    int64              `bson:"triggerCount" json:"trigger_count"`
	Enabled         bool               `bson:"enabled" json:"enabled"`
	Actions         ActionBundle       `bson:"actions" json:"actions"`
	CreatedAt       time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updated_at"`
}

// CooldownDuration returns the minimum gap between two firings of the rule
func (r *AdaptationRule) CooldownDuration() time.Duration {
	return time.Duration(r.CooldownHours) * time.Hour
}

// InCooldown reports whether the rule fired too recently to fire again.
// A rule that never triggered is never in cooldown.
func (r *AdaptationRule) InCooldown(now time.Time) bool {
	if r.LastTriggeredAt == nil {
		return false
	}
	return now.Sub(*r.LastTriggeredAt) < r.CooldownDuration()
}

// Evaluate runs the rule's registered condition against the metrics.
// Unknown condition names never match.
func (r *AdaptationRule) Evaluate(m LearningMetrics, rctx RuleContext) bool {
	cond, ok := ruleConditions[r.Condition]
	if !ok {
		return false
	}
	return cond(m, rctx)
}
