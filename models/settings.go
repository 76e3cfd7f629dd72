// models/settings.go
package models

import "time"

// Settings is the single persisted application-settings document. Reads and
// writes go through the settings collection, never a process-global.
type Settings struct {
	ID                 string    `bson:"_id" json:"id"` // fixed key "app"
	DuplicateThreshold float64   `bson:"duplicateThreshold" json:"duplicateThreshold"`
	MaxAttachments     int       `bson:"maxAttachments" json:"maxAttachments"`
	SubmissionsPerDay  int       `bson:"submissionsPerDay" json:"submissionsPerDay"`
	UpdatedBy          string    `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	UpdatedAt          time.Time `bson:"updatedAt" json:"updatedAt"`
}

// SettingsDocID is the _id of the singleton settings document.
const SettingsDocID = "app"
