// handlers/settings_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"knowledgehub/models"
	"knowledgehub/utils"
)

// defaultSettings seeds the singleton document on first read.
func defaultSettings() models.Settings {
	return models.Settings{
		ID:                 models.SettingsDocID,
		DuplicateThreshold: appConfig.DuplicateThreshold,
		MaxAttachments:     10,
		SubmissionsPerDay:  20,
		UpdatedAt:          time.Now().UTC(),
	}
}

// GetSettings returns the persisted application settings, creating the
// document with defaults on first access.
func GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var settings models.Settings
	err := settingsCollection.FindOne(ctx, bson.M{"_id": models.SettingsDocID}).Decode(&settings)
	if err == mongo.ErrNoDocuments {
		settings = defaultSettings()
		if _, err := settingsCollection.InsertOne(ctx, settings); err != nil {
			logrus.Errorf("GetSettings - seed failed: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to initialize settings")
			return
		}
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch settings")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, settings)
}

// UpdateSettings applies partial changes to the settings document.
func UpdateSettings(w http.ResponseWriter, r *http.Request) {
	act, ok := actorFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req struct {
		DuplicateThreshold *float64 `json:"duplicateThreshold,omitempty"`
		MaxAttachments     *int     `json:"maxAttachments,omitempty"`
		SubmissionsPerDay  *int     `json:"submissionsPerDay,omitempty"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	set := bson.M{
		"updatedBy": act.ID.Hex(),
		"updatedAt": time.Now().UTC(),
	}
	if req.DuplicateThreshold != nil {
		if *req.DuplicateThreshold < 0 || *req.DuplicateThreshold > 1 {
			utils.RespondWithError(w, http.StatusBadRequest, "Duplicate threshold must be between 0 and 1")
			return
		}
		set["duplicateThreshold"] = *req.DuplicateThreshold
	}
	if req.MaxAttachments != nil {
		if *req.MaxAttachments < 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "Max attachments cannot be negative")
			return
		}
		set["maxAttachments"] = *req.MaxAttachments
	}
	if req.SubmissionsPerDay != nil {
		if *req.SubmissionsPerDay < 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "Submissions per day cannot be negative")
			return
		}
		set["submissionsPerDay"] = *req.SubmissionsPerDay
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// Upsert so the first write works without a prior read. Insert-time
	// defaults only cover fields this request did not set; overlapping keys
	// between $set and $setOnInsert are a conflict in Mongo.
	defaults := defaultSettings()
	onInsert := bson.M{}
	for field, value := range map[string]interface{}{
		"duplicateThreshold": defaults.DuplicateThreshold,
		"maxAttachments":     defaults.MaxAttachments,
		"submissionsPerDay":  defaults.SubmissionsPerDay,
	} {
		if _, present := set[field]; !present {
			onInsert[field] = value
		}
	}

	update := bson.M{"$set": set}
	if len(onInsert) > 0 {
		update["$setOnInsert"] = onInsert
	}

	_, err := settingsCollection.UpdateOne(ctx,
		bson.M{"_id": models.SettingsDocID},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		logrus.Errorf("UpdateSettings - update failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	recordAudit(ctx, r, AuditSettingsUpdated, "Settings", primitive.NilObjectID, bson.M{
		"settingsDoc": models.SettingsDocID,
		"fields":      updatedFieldNames(set),
	})

	var updated models.Settings
	if err := settingsCollection.FindOne(ctx, bson.M{"_id": models.SettingsDocID}).Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Settings updated but failed to fetch result")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, updated)
}
