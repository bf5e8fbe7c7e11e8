package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"mentora/internal/models"
)

// NotificationService publishes adaptation events to per-user Redis channels.
// The notification worker, the study planner, and the content service each
// subscribe to the event types they own; delivery is fire-and-forget,
// at-least-once at best.
type NotificationService struct {
	redis      *RedisService
	instanceID string
}

// AdaptationEvent is the message shape published on user:{id}:events
type AdaptationEvent struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	UserID     string                 `json:"userId"`
	InstanceID string                 `json:"instanceId"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	SentAt     time.Time              `json:"sentAt"`
}

// NewNotificationService creates a new notification service. redisService may
// be nil, in which case every publish degrades to a logged no-op.
func NewNotificationService(redisService *RedisService, instanceID string) *NotificationService {
	return &NotificationService{
		redis:      redisService,
		instanceID: instanceID,
	}
}

// Notify asks the notification worker to reach out to the user
func (s *NotificationService) Notify(ctx context.Context, userID, kind string) error {
	return s.publish(ctx, userID, "notification", map[string]interface{}{
		"kind": kind,
	})
}

// ScheduleCheckin asks the study planner to book a tutor check-in
func (s *NotificationService) ScheduleCheckin(ctx context.Context, userID string) error {
	return s.publish(ctx, userID, "checkin_scheduled", nil)
}

// AdjustPace hands a pace adjustment off to the study planner
func (s *NotificationService) AdjustPace(ctx context.Context, userID string, action models.PaceAction) error {
	return s.publish(ctx, userID, "pace_adjustment", map[string]interface{}{
		"adjust": action.Adjust,
	})
}

// ApplyContentActions hands content adaptations off to the content service
func (s *NotificationService) ApplyContentActions(ctx context.Context, userID string, action models.ContentAction) error {
	payload := map[string]interface{}{}
	if action.AdjustDifficulty != "" {
		payload["adjustDifficulty"] = action.AdjustDifficulty
	}
	if len(action.SuggestTopics) > 0 {
		payload["suggestTopics"] = action.SuggestTopics
	}
	return s.publish(ctx, userID, "content_adaptation", payload)
}

func (s *NotificationService) publish(ctx context.Context, userID, eventType string, payload map[string]interface{}) error {
	if s.redis == nil {
		log.Printf("⚠️  [EVENTS] Redis unavailable, dropping %s event for user %s", eventType, userID)
		return nil
	}

	event := AdaptationEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		UserID:     userID,
		InstanceID: s.instanceID,
		Payload:    payload,
		SentAt:     time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	channel := fmt.Sprintf("user:%s:events", userID)
	if err := s.redis.Client().Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	return nil
}
