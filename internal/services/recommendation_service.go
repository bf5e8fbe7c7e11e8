package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"mentora/internal/database"
	"mentora/internal/models"
)

// RecommendationValidity is how long a generated recommendation stays actionable
const RecommendationValidity = 14 * 24 * time.Hour

// activeStatuses are the interaction states that count toward the cap
var activeStatuses = []models.RecommendationStatus{
	models.RecommendationPending,
	models.RecommendationViewed,
}

// RecommendationService generates and maintains per-user recommendations
type RecommendationService struct {
	mongoDB         *database.MongoDB
	recommendations *mongo.Collection
}

// NewRecommendationService creates a new recommendation service
func NewRecommendationService(mongoDB *database.MongoDB) *RecommendationService {
	return &RecommendationService{
		mongoDB:         mongoDB,
		recommendations: mongoDB.Collection(database.CollectionRecommendations),
	}
}

// CountActive counts the user's pending/viewed recommendations still inside
// their validity window.
func (s *RecommendationService) CountActive(ctx context.Context, userID string) (int64, error) {
	count, err := s.recommendations.CountDocuments(ctx, bson.M{
		"userId":     userID,
		"status":     bson.M{"$in": activeStatuses},
		"validUntil": bson.M{"$gt": time.Now()},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count active recommendations: %w", err)
	}
	return count, nil
}

// Generate builds up to opts.MaxCount new recommendations from the user's
// latest metrics and persists them. Requesting zero or fewer is a no-op.
func (s *RecommendationService) Generate(ctx context.Context, userID string, opts models.GenerateOptions) ([]models.Recommendation, error) {
	if opts.MaxCount <= 0 {
		return nil, nil
	}

	now := time.Now()
	recs := buildCandidates(userID, opts, now)
	if len(recs) == 0 {
		return nil, nil
	}

	docs := make([]interface{}, len(recs))
	for i := range recs {
		docs[i] = recs[i]
	}
	if _, err := s.recommendations.InsertMany(ctx, docs); err != nil {
		return nil, fmt.Errorf("failed to insert recommendations: %w", err)
	}

	log.Printf("💡 [RECOMMEND] Generated %d recommendations for user %s", len(recs), userID)
	return recs, nil
}

// ExpireStale flips pending/viewed recommendations past their validity window
// to expired. Runs as part of retention.
func (s *RecommendationService) ExpireStale(ctx context.Context) (int64, error) {
	result, err := s.recommendations.UpdateMany(ctx,
		bson.M{
			"status":     bson.M{"$in": activeStatuses},
			"validUntil": bson.M{"$lt": time.Now()},
		},
		bson.M{"$set": bson.M{"status": models.RecommendationExpired}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to expire stale recommendations: %w", err)
	}
	return result.ModifiedCount, nil
}

// buildCandidates derives recommendation candidates from the snapshot
// metrics, most urgent first, truncated to MaxCount.
func buildCandidates(userID string, opts models.GenerateOptions, now time.Time) []models.Recommendation {
	validUntil := now.Add(RecommendationValidity)

	newRec := func(recType models.RecommendationType, title, reason string) models.Recommendation {
		return models.Recommendation{
			UserID:     userID,
			Type:       recType,
			Title:      title,
			Reason:     reason,
			Status:     models.RecommendationPending,
			ValidUntil: validUntil,
			CreatedAt:  now,
		}
	}

	var recs []models.Recommendation

	if opts.Type == models.RecommendationLearningPath {
		recs = append(recs,
			newRec(models.RecommendationLearningPath, "Explore a new learning path", "An adaptation rule suggested branching out"),
			newRec(models.RecommendationLearningPath, "Try a project-based track", "Applied practice reinforces what you already know"),
		)
	} else if opts.Context != nil {
		m := opts.Context.Metrics
		if m.StruggleScore >= 0.6 {
			recs = append(recs, newRec(models.RecommendationReview, "Revisit recent material", "Recent scores suggest a refresher would help"))
		}
		if m.CompletionRate > 0 && m.CompletionRate < 0.4 {
			recs = append(recs, newRec(models.RecommendationPace, "Shorten your study sessions", "Smaller units are easier to finish"))
		}
		if m.AverageScore >= 85 {
			recs = append(recs, newRec(models.RecommendationContent, "Advance to harder material", "You are scoring well above target"))
		}
		if m.StreakDays >= 7 {
			recs = append(recs, newRec(models.RecommendationContent, "Keep your streak with a daily challenge", fmt.Sprintf("%d days and counting", m.StreakDays)))
		}
		if len(recs) == 0 {
			recs = append(recs, newRec(models.RecommendationContent, "Continue where you left off", "Steady progress beats bursts"))
		}
	} else {
		recs = append(recs, newRec(models.RecommendationContent, "Continue where you left off", "Steady progress beats bursts"))
	}

	if len(recs) > opts.MaxCount {
		recs = recs[:opts.MaxCount]
	}
	return recs
}
