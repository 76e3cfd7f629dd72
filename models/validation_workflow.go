// models/validation_workflow.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Validation workflow statuses.
const (
	ValidationPending           = "Pending"
	ValidationInReview          = "InReview"
	ValidationApproved          = "Approved"
	ValidationRejected          = "Rejected"
	ValidationRevisionRequested = "RevisionRequested"
)

// Priorities.
const (
	PriorityLow      = "Low"
	PriorityMedium   = "Medium"
	PriorityHigh     = "High"
	PriorityCritical = "Critical"
)

// ReviewEvent is one entry in the workflow's history. Every status change
// appends exactly one.
type ReviewEvent struct {
	Reviewer  primitive.ObjectID `bson:"reviewer" json:"reviewer"`
	Action    string             `bson:"action" json:"action"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

type ValidationWorkflow struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	KnowledgeItem    primitive.ObjectID  `bson:"knowledgeItem" json:"knowledgeItem"`
	AssignedReviewer *primitive.ObjectID `bson:"assignedReviewer,omitempty" json:"assignedReviewer,omitempty"`
	Status           string              `bson:"status" json:"status"`
	Priority         string              `bson:"priority" json:"priority"`
	ReviewNotes      string              `bson:"reviewNotes,omitempty" json:"reviewNotes,omitempty"`
	RevisionComments string              `bson:"revisionComments,omitempty" json:"revisionComments,omitempty"`
	ReviewHistory    []ReviewEvent       `bson:"reviewHistory" json:"reviewHistory"`
	CompletedAt      *time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}
