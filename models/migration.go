// models/migration.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MigrationCompleted = "Completed"
	MigrationPartial   = "Partial"
	MigrationFailed    = "Failed"
)

// MigrationRun records one bulk import of legacy content.
type MigrationRun struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Source     string             `bson:"source" json:"source"`
	Status     string             `bson:"status" json:"status"`
	Total      int                `bson:"total" json:"total"`
	Imported   int                `bson:"imported" json:"imported"`
	Skipped    int                `bson:"skipped" json:"skipped"`
	Errors     []string           `bson:"errors,omitempty" json:"errors,omitempty"`
	StartedBy  primitive.ObjectID `bson:"startedBy" json:"startedBy"`
	StartedAt  time.Time          `bson:"startedAt" json:"startedAt"`
	FinishedAt time.Time          `bson:"finishedAt" json:"finishedAt"`
}
