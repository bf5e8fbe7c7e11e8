package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AIPersonalityAuto is the sentinel personality value meaning "let the tutor
// pick". Adaptation actions carrying it leave the user's profile untouched.
const AIPersonalityAuto = "auto"

// User represents a learner account
type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email           string             `bson:"email" json:"email"`
	DisplayName     string             `bson:"displayName,omitempty" json:"display_name,omitempty"`
	LearningProfile LearningProfile    `bson:"learningProfile" json:"learning_profile"`
	CreatedAt       time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updated_at"`
	LastActiveAt    *time.Time         `bson:"lastActiveAt,omitempty" json:"last_active_at,omitempty"`
}

// LearningProfile holds per-learner tutoring preferences. The adaptation
// engine mutates aiPersonality; everything else is owned by the profile API.
type LearningProfile struct {
	AIPersonality    string `bson:"aiPersonality,omitempty" json:"ai_personality,omitempty"`       // "encouraging", "direct", "socratic", or "auto"
	PreferredPace    string `bson:"preferredPace,omitempty" json:"preferred_pace,omitempty"`       // "relaxed", "steady", "intense"
	LearningStyle    string `bson:"learningStyle,omitempty" json:"learning_style,omitempty"`       // "visual", "reading", "practice"
	DailyGoalMinutes int    `bson:"dailyGoalMinutes,omitempty" json:"daily_goal_minutes,omitempty"`
}

// UserRef is the lightweight projection the adaptation engine works with.
// Sweeps never load full user documents.
type UserRef struct {
	ID              primitive.ObjectID `bson:"_id" json:"id"`
	Email           string             `bson:"email" json:"email"`
	LearningProfile LearningProfile    `bson:"learningProfile" json:"learning_profile"`
}

// UserID returns the hex form used as the userId foreign key in every other
// collection.
func (u *UserRef) UserID() string {
	return u.ID.Hex()
}
