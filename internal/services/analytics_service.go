package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mentora/internal/database"
	"mentora/internal/models"
)

// AnalyticsService recomputes per-user learning analytics snapshots.
// Snapshots are append-only: recomputing twice in a day inserts two documents
// and never touches earlier ones; readers always resolve "latest" by
// computedAt.
type AnalyticsService struct {
	mongoDB   *database.MongoDB
	analytics *mongo.Collection
	sessions  *mongo.Collection
	progress  *mongo.Collection
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(mongoDB *database.MongoDB) *AnalyticsService {
	return &AnalyticsService{
		mongoDB:   mongoDB,
		analytics: mongoDB.Collection(database.CollectionLearningAnalytics),
		sessions:  mongoDB.Collection(database.CollectionLearningSessions),
		progress:  mongoDB.Collection(database.CollectionUserProgress),
	}
}

// ComputeUserAnalytics aggregates the user's activity over the granularity's
// trailing window and inserts a fresh immutable snapshot.
func (s *AnalyticsService) ComputeUserAnalytics(ctx context.Context, userID string, granularity models.Granularity) (*models.LearningAnalytics, error) {
	if !granularity.Valid() {
		return nil, fmt.Errorf("unknown granularity %q", granularity)
	}

	now := time.Now()
	since := now.Add(-granularity.Window())

	cursor, err := s.sessions.Find(ctx, bson.M{
		"userId":    userID,
		"startTime": bson.M{"$gte": since},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}
	var sessions []models.LearningSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}

	cursor, err = s.progress.Find(ctx, bson.M{
		"userId":    userID,
		"updatedAt": bson.M{"$gte": since},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	var progress []models.UserProgress
	if err := cursor.All(ctx, &progress); err != nil {
		return nil, fmt.Errorf("failed to decode progress: %w", err)
	}

	snapshot := &models.LearningAnalytics{
		UserID:      userID,
		Granularity: granularity,
		ComputedAt:  now,
		Metrics:     computeMetrics(sessions, progress, now),
	}

	result, err := s.analytics.InsertOne(ctx, snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to insert analytics snapshot: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		snapshot.ID = oid
	}

	return snapshot, nil
}

// LatestForUser returns the user's most recent snapshot across all
// granularities, or nil when the user has never been aggregated.
func (s *AnalyticsService) LatestForUser(ctx context.Context, userID string) (*models.LearningAnalytics, error) {
	var snapshot models.LearningAnalytics
	err := s.analytics.FindOne(ctx,
		bson.M{"userId": userID},
		options.FindOne().SetSort(bson.D{{Key: "computedAt", Value: -1}}),
	).Decode(&snapshot)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load latest analytics: %w", err)
	}
	return &snapshot, nil
}

// DeleteOlderThan reaps snapshots whose computedAt is at or before the
// cutoff. A snapshot aged exactly at the cutoff is eligible.
func (s *AnalyticsService) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.analytics.DeleteMany(ctx, bson.M{
		"computedAt": bson.M{"$lte": cutoff},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete old analytics: %w", err)
	}
	if result.DeletedCount > 0 {
		log.Printf("🧹 [ANALYTICS] Deleted %d snapshots older than %s", result.DeletedCount, cutoff.Format(time.RFC3339))
	}
	return result.DeletedCount, nil
}

// computeMetrics folds raw activity into the snapshot aggregates
func computeMetrics(sessions []models.LearningSession, progress []models.UserProgress, now time.Time) models.LearningMetrics {
	m := models.LearningMetrics{
		SessionsCount: len(sessions),
	}

	gradedSessions := 0
	scoreSum := 0.0
	for _, sess := range sessions {
		m.TotalMinutes += sess.DurationMinutes
		m.ItemsCompleted += sess.CompletedItems
		if sess.AverageScore > 0 {
			gradedSessions++
			scoreSum += sess.AverageScore
		}
	}
	if gradedSessions > 0 {
		m.AverageScore = scoreSum / float64(gradedSessions)
	}

	if len(progress) > 0 {
		completionSum := 0.0
		for _, p := range progress {
			completionSum += p.CompletionRate
		}
		m.CompletionRate = completionSum / float64(len(progress))
	}

	m.StreakDays = streakDays(sessions, now)
	m.StruggleScore = struggleScore(m)

	return m
}

// streakDays counts consecutive days with at least one session, walking back
// from today. A streak broken today but alive through yesterday still counts
// from yesterday.
func streakDays(sessions []models.LearningSession, now time.Time) int {
	if len(sessions) == 0 {
		return 0
	}

	days := make(map[string]bool, len(sessions))
	for _, sess := range sessions {
		days[sess.StartTime.Format("2006-01-02")] = true
	}

	day := now
	if !days[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for days[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// struggleScore blends low scores with low completion into a 0-1 signal.
// No sessions means no signal, not maximal struggle.
func struggleScore(m models.LearningMetrics) float64 {
	if m.SessionsCount == 0 {
		return 0
	}

	scoreTerm := 1.0
	if m.AverageScore > 0 {
		scoreTerm = 1.0 - m.AverageScore/100.0
	}
	completionTerm := 1.0 - m.CompletionRate

	score := 0.6*scoreTerm + 0.4*completionTerm
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
