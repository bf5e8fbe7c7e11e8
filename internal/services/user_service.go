package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mentora/internal/database"
	"mentora/internal/models"
)

// ActivityWindow is the trailing window that makes a user "active"
const ActivityWindow = 24 * time.Hour

// userRefProjection keeps sweep queries off the full user document
var userRefProjection = bson.M{"email": 1, "learningProfile": 1}

// UserService resolves the engine's working set of users and applies
// profile-level adaptation writes
type UserService struct {
	mongoDB  *database.MongoDB
	users    *mongo.Collection
	sessions *mongo.Collection
	progress *mongo.Collection
}

// NewUserService creates a new user service
func NewUserService(mongoDB *database.MongoDB) *UserService {
	return &UserService{
		mongoDB:  mongoDB,
		users:    mongoDB.Collection(database.CollectionUsers),
		sessions: mongoDB.Collection(database.CollectionLearningSessions),
		progress: mongoDB.Collection(database.CollectionUserProgress),
	}
}

// ActiveUsers returns lightweight refs for every user with a learning session
// or a progress update inside the activity window. A user appearing in both
// sources counts once. An empty result is a normal quiet period, not an error.
func (s *UserService) ActiveUsers(ctx context.Context) ([]models.UserRef, error) {
	since := time.Now().Add(-ActivityWindow)

	sessionIDs, err := s.distinctUserIDs(ctx, s.sessions, bson.M{"startTime": bson.M{"$gte": since}})
	if err != nil {
		return nil, fmt.Errorf("failed to query recently active sessions: %w", err)
	}

	progressIDs, err := s.distinctUserIDs(ctx, s.progress, bson.M{"updatedAt": bson.M{"$gte": since}})
	if err != nil {
		return nil, fmt.Errorf("failed to query recently updated progress: %w", err)
	}

	userIDs := mergeDistinct(sessionIDs, progressIDs)
	if len(userIDs) == 0 {
		return nil, nil
	}

	objectIDs := make([]primitive.ObjectID, 0, len(userIDs))
	for _, id := range userIDs {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue // stale activity row pointing at a malformed id
		}
		objectIDs = append(objectIDs, oid)
	}

	cursor, err := s.users.Find(ctx,
		bson.M{"_id": bson.M{"$in": objectIDs}},
		options.Find().SetProjection(userRefProjection),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve active users: %w", err)
	}
	defer cursor.Close(ctx)

	var refs []models.UserRef
	if err := cursor.All(ctx, &refs); err != nil {
		return nil, fmt.Errorf("failed to decode active users: %w", err)
	}

	return refs, nil
}

// AllUsers returns lightweight refs for every user. Used by the daily
// comprehensive sweep.
func (s *UserService) AllUsers(ctx context.Context) ([]models.UserRef, error) {
	cursor, err := s.users.Find(ctx, bson.M{}, options.Find().SetProjection(userRefProjection))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	var refs []models.UserRef
	if err := cursor.All(ctx, &refs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	return refs, nil
}

// SetAIPersonality updates the single mutable profile field the adaptation
// engine owns. Atomic single-document write.
func (s *UserService) SetAIPersonality(ctx context.Context, userID, personality string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", userID, err)
	}

	result, err := s.users.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{
			"learningProfile.aiPersonality": personality,
			"updatedAt":                     time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update aiPersonality: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user %s not found", userID)
	}

	return nil
}

// distinctUserIDs runs a Distinct on userId with the given filter
func (s *UserService) distinctUserIDs(ctx context.Context, collection *mongo.Collection, filter bson.M) ([]string, error) {
	results, err := collection.Distinct(ctx, "userId", filter)
	if err != nil {
		return nil, err
	}

	userIDs := make([]string, 0, len(results))
	for _, result := range results {
		if userID, ok := result.(string); ok {
			userIDs = append(userIDs, userID)
		}
	}

	return userIDs, nil
}

// mergeDistinct unions two id lists preserving first-seen order
func mergeDistinct(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	merged := make([]string, 0, len(a)+len(b))
	for _, id := range a {
		if id != "" && !seen[id] {
			seen[id] = true
			merged = append(merged, id)
		}
	}
	for _, id := range b {
		if id != "" && !seen[id] {
			seen[id] = true
			merged = append(merged, id)
		}
	}
	return merged
}
