// models/audit_log.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditLog is an append-only record of a state-changing action. Rows are
// never mutated or deleted.
type AuditLog struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Action      string             `bson:"action" json:"action"` // e.g. "VALIDATION_APPROVED", "KNOWLEDGE_CREATED"
	Actor       primitive.ObjectID `bson:"actor" json:"actor"`
	ActorName   string             `bson:"actorName,omitempty" json:"actorName,omitempty"`
	ActorRole   string             `bson:"actorRole,omitempty" json:"actorRole,omitempty"`
	Target      primitive.ObjectID `bson:"target,omitempty" json:"target,omitempty"`
	TargetModel string             `bson:"targetModel" json:"targetModel"` // "KnowledgeItem", "ValidationWorkflow", ...
	Details     bson.M             `bson:"details,omitempty" json:"details,omitempty"`
	IPAddress   string             `bson:"ipAddress,omitempty" json:"ipAddress,omitempty"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
}
