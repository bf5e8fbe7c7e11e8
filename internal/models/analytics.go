package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Granularity is the aggregation period of an analytics snapshot
type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

// Valid reports whether g is a known granularity
func (g Granularity) Valid() bool {
	switch g {
	case GranularityDaily, GranularityWeekly, GranularityMonthly:
		return true
	}
	return false
}

// Window returns the trailing aggregation window for the granularity
func (g Granularity) Window() time.Duration {
	switch g {
	case GranularityWeekly:
		return 7 * 24 * time.Hour
	case GranularityMonthly:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// LearningMetrics are the aggregates computed per snapshot
type LearningMetrics struct {
	SessionsCount  int     `bson:"sessionsCount" json:"sessions_count"`
	TotalMinutes   int     `bson:"totalMinutes" json:"total_minutes"`
	ItemsCompleted int     `bson:"itemsCompleted" json:"items_completed"`
	CompletionRate float64 `bson:"completionRate" json:"completion_rate"` // mean across courses, 0.0-1.0
	AverageScore   float64 `bson:"averageScore" json:"average_score"`     // mean of graded sessions, 0-100
	StreakDays     int     `bson:"streakDays" json:"streak_days"`         // consecutive days with a session, counting back from the window end
	StruggleScore  float64 `bson:"struggleScore" json:"struggle_score"`   // 0.0 (thriving) - 1.0 (struggling)
}

// LearningAnalytics is one immutable point-in-time aggregate for a user at a
// granularity. Snapshots accumulate append-only; "latest" is the one with the
// most recent computedAt. The retention sweep deletes snapshots past 365 days.
type LearningAnalytics struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      string             `bson:"userId" json:"user_id"`
	Granularity Granularity        `bson:"granularity" json:"granularity"`
	ComputedAt  time.Time          `bson:"computedAt" json:"computed_at"`
	Metrics     LearningMetrics    `bson:"metrics" json:"metrics"`
}
