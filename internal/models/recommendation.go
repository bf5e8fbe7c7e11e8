package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecommendationStatus tracks learner interaction with a recommendation
type RecommendationStatus string

const (
	RecommendationPending   RecommendationStatus = "pending"
	RecommendationViewed    RecommendationStatus = "viewed"
	RecommendationAccepted  RecommendationStatus = "accepted"
	RecommendationDismissed RecommendationStatus = "dismissed"
	RecommendationExpired   RecommendationStatus = "expired"
)

// RecommendationType categorizes what a recommendation suggests
type RecommendationType string

const (
	RecommendationContent      RecommendationType = "content"
	RecommendationPace         RecommendationType = "pace"
	RecommendationReview       RecommendationType = "review"
	RecommendationLearningPath RecommendationType = "learning_path"
)

const (
	// ActiveRecommendationCap is the most simultaneously active
	// recommendations a user should accumulate. Generation tops up to the
	// cap instead of emitting fixed batches.
	ActiveRecommendationCap = 5

	// RecommendationTopUpThreshold is the active count below which the
	// insight step generates new recommendations.
	RecommendationTopUpThreshold = 3
)

// Recommendation is a generated suggestion tied to one user
type Recommendation struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID     string               `bson:"userId" json:"user_id"`
	Type       RecommendationType   `bson:"type" json:"type"`
	Title      string               `bson:"title" json:"title"`
	Reason     string               `bson:"reason,omitempty" json:"reason,omitempty"`
	Status     RecommendationStatus `bson:"status" json:"status"`
	ValidUntil time.Time            `bson:"validUntil" json:"valid_until"`
	CreatedAt  time.Time            `bson:"createdAt" json:"created_at"`
}

// GenerateOptions steers one recommendation generation request
type GenerateOptions struct {
	Context  *LearningAnalytics // latest snapshot, nil when unavailable
	MaxCount int
	Type     RecommendationType // optional; zero value means metric-driven mix
}

// Active reports whether the recommendation still counts toward the cap:
// pending or viewed, and not past its validity window.
func (r *Recommendation) Active(now time.Time) bool {
	if r.Status != RecommendationPending && r.Status != RecommendationViewed {
		return false
	}
	return r.ValidUntil.After(now)
}
