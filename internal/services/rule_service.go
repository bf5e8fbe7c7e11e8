package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/patrickmn/go-cache"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mentora/internal/database"
	"mentora/internal/models"
)

// ruleCacheTTL bounds how stale a cached rule set may get. Trigger recording
// flushes the cache so cooldown state is re-read promptly.
const ruleCacheTTL = 5 * time.Minute

// RuleService stores adaptation rules and their trigger state
type RuleService struct {
	mongoDB *database.MongoDB
	rules   *mongo.Collection
	cache   *cache.Cache
}

// NewRuleService creates a new rule service
func NewRuleService(mongoDB *database.MongoDB) *RuleService {
	return &RuleService{
		mongoDB: mongoDB,
		rules:   mongoDB.Collection(database.CollectionAdaptationRules),
		cache:   cache.New(ruleCacheTTL, 10*time.Minute),
	}
}

// EnsureSeedRules upserts the built-in rule set by name. Existing documents
// keep their trigger state and any operator edits to enabled/cooldown.
func (s *RuleService) EnsureSeedRules(ctx context.Context) error {
	seeded := 0
	for _, rule := range builtinAdaptationRules() {
		if !models.KnownCondition(rule.Condition) {
			return fmt.Errorf("seed rule %q references unknown condition %q", rule.Name, rule.Condition)
		}

		result, err := s.rules.UpdateOne(ctx,
			bson.M{"name": rule.Name},
			bson.M{"$setOnInsert": rule},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return fmt.Errorf("failed to seed rule %q: %w", rule.Name, err)
		}
		if result.UpsertedCount > 0 {
			seeded++
		}
	}

	if seeded > 0 {
		log.Printf("✅ [RULES] Seeded %d adaptation rules", seeded)
	}
	return nil
}

// ApplicableRules returns the enabled rules for a category, cached briefly
func (s *RuleService) ApplicableRules(ctx context.Context, category string) ([]models.AdaptationRule, error) {
	cacheKey := "rules:" + category
	if cached, found := s.cache.Get(cacheKey); found {
		if rules, ok := cached.([]models.AdaptationRule); ok {
			return rules, nil
		}
	}

	cursor, err := s.rules.Find(ctx, bson.M{"category": category, "enabled": true})
	if err != nil {
		return nil, fmt.Errorf("failed to query adaptation rules: %w", err)
	}
	defer cursor.Close(ctx)

	var rules []models.AdaptationRule
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, fmt.Errorf("failed to decode adaptation rules: %w", err)
	}

	s.cache.Set(cacheKey, rules, cache.DefaultExpiration)
	return rules, nil
}

// RecordTrigger persists that a rule fired: lastTriggeredAt moves to now and
// the trigger counter increments. Atomic single-document write; recorded even
// when a sub-action of the bundle failed, because the rule did fire.
func (s *RuleService) RecordTrigger(ctx context.Context, ruleID primitive.ObjectID, at time.Time) error {
	_, err := s.rules.UpdateOne(ctx,
		bson.M{"_id": ruleID},
		bson.M{
			"$set": bson.M{"lastTriggeredAt": at, "updatedAt": at},
			"$inc": bson.M{"triggerCount": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to record rule trigger: %w", err)
	}

	// Cached copies still carry the old lastTriggeredAt; flush so the next
	// evaluation sees the cooldown.
	s.cache.Flush()
	return nil
}
