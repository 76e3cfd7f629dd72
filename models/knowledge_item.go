// models/knowledge_item.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Knowledge item statuses. Transitions go through the review path only,
// except Archived which the author or an admin can set directly.
const (
	ItemStatusPending  = "Pending"
	ItemStatusApproved = "Approved"
	ItemStatusRejected = "Rejected"
	ItemStatusRevision = "Revision"
	ItemStatusArchived = "Archived"
)

// Attachment is client-supplied file metadata. Actual file transport is
// handled outside this service; we only track identity and names.
type Attachment struct {
	ID         string    `bson:"id" json:"id"`
	FileName   string    `bson:"fileName" json:"fileName"`
	Size       int64     `bson:"size,omitempty" json:"size,omitempty"`
	UploadedAt time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

// ApprovalRecord is one reviewer decision mirrored onto the item.
type ApprovalRecord struct {
	Approver primitive.ObjectID `bson:"approver" json:"approver"`
	Status   string             `bson:"status" json:"status"`
	Comment  string             `bson:"comment,omitempty" json:"comment,omitempty"`
	Date     time.Time          `bson:"date" json:"date"`
}

type KnowledgeItem struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	Category     string             `bson:"category" json:"category"`
	Tags         []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Region       string             `bson:"region,omitempty" json:"region,omitempty"`
	Author       primitive.ObjectID `bson:"author" json:"author"`
	Status       string             `bson:"status" json:"status"`
	Attachments  []Attachment       `bson:"attachments,omitempty" json:"attachments,omitempty"`
	Approvals    []ApprovalRecord   `bson:"approvals,omitempty" json:"approvals,omitempty"`
	QualityFlag  bool               `bson:"qualityFlag" json:"qualityFlag"`
	QualityScore float64            `bson:"qualityScore,omitempty" json:"qualityScore,omitempty"`
	Views        int                `bson:"views" json:"views"`
	Version      int                `bson:"version" json:"version"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
