package jobs

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"mentora/internal/models"
)

// The engine only sees its collaborators through these interfaces so sweeps
// can be exercised with fakes. internal/services provides the production
// implementations.

// UserDirectory resolves the working set of users
type UserDirectory interface {
	ActiveUsers(ctx context.Context) ([]models.UserRef, error)
	AllUsers(ctx context.Context) ([]models.UserRef, error)
}

// AnalyticsEngine recomputes and serves analytics snapshots
type AnalyticsEngine interface {
	ComputeUserAnalytics(ctx context.Context, userID string, granularity models.Granularity) (*models.LearningAnalytics, error)
	LatestForUser(ctx context.Context, userID string) (*models.LearningAnalytics, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RecommendationEngine generates and maintains recommendations
type RecommendationEngine interface {
	CountActive(ctx context.Context, userID string) (int64, error)
	Generate(ctx context.Context, userID string, opts models.GenerateOptions) ([]models.Recommendation, error)
	ExpireStale(ctx context.Context) (int64, error)
}

// RuleStore serves adaptation rules and records their trigger state
type RuleStore interface {
	ApplicableRules(ctx context.Context, category string) ([]models.AdaptationRule, error)
	RecordTrigger(ctx context.Context, ruleID primitive.ObjectID, at time.Time) error
}

// ProfileUpdater applies the aiPersonality adaptation action
type ProfileUpdater interface {
	SetAIPersonality(ctx context.Context, userID, personality string) error
}

// Notifier is the fire-and-forget notification collaborator
type Notifier interface {
	Notify(ctx context.Context, userID, kind string) error
}

// StudyPlanner is the scheduling collaborator: check-ins and pace changes
type StudyPlanner interface {
	ScheduleCheckin(ctx context.Context, userID string) error
	AdjustPace(ctx context.Context, userID string, action models.PaceAction) error
}

// ContentDelivery is the content-adaptation collaborator
type ContentDelivery interface {
	ApplyContentActions(ctx context.Context, userID string, action models.ContentAction) error
}

// Clock abstracts wall-clock reads so time-window decisions are testable
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
