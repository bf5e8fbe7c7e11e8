package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LearningSession records one study session. The adaptation engine only reads
// these: startTime drives the activity window, the rest feeds aggregation.
type LearningSession struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          string             `bson:"userId" json:"user_id"`
	CourseID        string             `bson:"courseId,omitempty" json:"course_id,omitempty"`
	StartTime       time.Time          `bson:"startTime" json:"start_time"`
	EndTime         *time.Time         `bson:"endTime,omitempty" json:"end_time,omitempty"`
	DurationMinutes int                `bson:"durationMinutes" json:"duration_minutes"`
	CompletedItems  int                `bson:"completedItems" json:"completed_items"`
	AverageScore    float64            `bson:"averageScore" json:"average_score"` // 0-100, 0 when nothing was graded
}

// UserProgress tracks a learner's standing in one course. Read-only here;
// updatedAt is the second activity signal next to session startTime.
type UserProgress struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         string             `bson:"userId" json:"user_id"`
	CourseID       string             `bson:"courseId" json:"course_id"`
	CompletionRate float64            `bson:"completionRate" json:"completion_rate"` // 0.0-1.0
	Score          float64            `bson:"score" json:"score"`                    // 0-100
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updated_at"`
}
