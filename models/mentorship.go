// models/mentorship.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MentorshipActive    = "Active"
	MentorshipCompleted = "Completed"
	MentorshipCancelled = "Cancelled"
)

type Mentorship struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Mentor    primitive.ObjectID `bson:"mentor" json:"mentor"`
	Mentee    primitive.ObjectID `bson:"mentee" json:"mentee"`
	Focus     string             `bson:"focus,omitempty" json:"focus,omitempty"`
	Status    string             `bson:"status" json:"status"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
