// models/leaderboard.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Scores are the per-user contribution counters the leaderboard is computed
// from. Field names double as the score keys used by increment requests.
type Scores struct {
	Uploads     int `bson:"uploads" json:"uploads"`
	Approvals   int `bson:"approvals" json:"approvals"`
	Views       int `bson:"views" json:"views"`
	Downloads   int `bson:"downloads" json:"downloads"`
	Validations int `bson:"validations" json:"validations"`
}

type Streaks struct {
	CurrentStreak    int        `bson:"currentStreak" json:"currentStreak"`
	LongestStreak    int        `bson:"longestStreak" json:"longestStreak"`
	LastActivityDate *time.Time `bson:"lastActivityDate,omitempty" json:"lastActivityDate,omitempty"`
}

// LeaderboardEntry holds one user's counters. TotalScore is a pure function
// of Scores and the fixed weights; Rank is assigned at read time.
type LeaderboardEntry struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User       primitive.ObjectID `bson:"user" json:"user"`
	Username   string             `bson:"username,omitempty" json:"username,omitempty"`
	Scores     Scores             `bson:"scores" json:"scores"`
	TotalScore int                `bson:"totalScore" json:"totalScore"`
	Rank       int                `bson:"rank,omitempty" json:"rank"`
	Streaks    Streaks            `bson:"streaks" json:"streaks"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
