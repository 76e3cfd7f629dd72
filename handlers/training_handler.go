// handlers/training_handler.go
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"knowledgehub/models"
	"knowledgehub/utils"
)

// CreateTrainingModule adds a module. Admin tier only (enforced on the route).
func CreateTrainingModule(w http.ResponseWriter, r *http.Request) {
	act, ok := actorFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description,omitempty"`
		Category    string `json:"category,omitempty"`
		Content     string `json:"content,omitempty"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Title is missing")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	now := time.Now().UTC()
	module := models.TrainingModule{
		ID:          primitive.NewObjectID(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    req.Category,
		Content:     req.Content,
		CreatedBy:   act.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := trainingModuleCollection.InsertOne(ctx, module); err != nil {
		logrus.Errorf("CreateTrainingModule - insert failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create training module")
		return
	}

	recordAudit(ctx, r, AuditTrainingCreated, "TrainingModule", module.ID, bson.M{
		"title": module.Title,
	})

	utils.RespondWithJSON(w, http.StatusCreated, module)
}

// ListTrainingModules lists modules, joined with the caller's progress.
func ListTrainingModules(w http.ResponseWriter, r *http.Request) {
	act, ok := actorFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := trainingModuleCollection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch modules")
		return
	}
	defer cursor.Close(ctx)

	var modules []models.TrainingModule
	if err := cursor.All(ctx, &modules); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode modules")
		return
	}
	if modules == nil {
		modules = []models.TrainingModule{}
	}

	progressCursor, err := trainingProgressCollection.Find(ctx, bson.M{"user": act.ID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch progress")
		return
	}
	var progress []models.TrainingProgress
	if err := progressCursor.All(ctx, &progress); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode progress")
		return
	}

	byModule := make(map[string]models.TrainingProgress, len(progress))
	for _, p := range progress {
		byModule[p.Module.Hex()] = p
	}

	type moduleWithProgress struct {
		models.TrainingModule
		Progress *models.TrainingProgress `json:"progress,omitempty"`
	}
	result := make([]moduleWithProgress, len(modules))
	for i, m := range modules {
		result[i] = moduleWithProgress{TrainingModule: m}
		if p, ok := byModule[m.ID.Hex()]; ok {
			p := p
			result[i].Progress = &p
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"modules": result,
		"count":   len(result),
	})
}

// UpdateTrainingProgress upserts the caller's progress on a module.
func UpdateTrainingProgress(w http.ResponseWriter, r *http.Request) {
	act, ok := actorFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req struct {
		ModuleID string `json:"moduleId"`
		Percent  int    `json:"percent"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	moduleID, err := primitive.ObjectIDFromHex(req.ModuleID)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid module ID")
		return
	}
	if req.Percent < 0 || req.Percent > 100 {
		utils.RespondWithError(w, http.StatusBadRequest, "Percent must be between 0 and 100")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := trainingModuleCollection.FindOne(ctx, bson.M{"_id": moduleID}).Err(); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Training module not found")
		return
	}

	now := time.Now().UTC()
	set := bson.M{
		"percent":   req.Percent,
		"completed": req.Percent == 100,
		"updatedAt": now,
	}
	if req.Percent == 100 {
		set["completedAt"] = now
	}

	after := options.After
	var progress models.TrainingProgress
	err = trainingProgressCollection.FindOneAndUpdate(ctx,
		bson.M{"user": act.ID, "module": moduleID},
		bson.M{
			"$set":         set,
			"$setOnInsert": bson.M{"user": act.ID, "module": moduleID},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(after),
	).Decode(&progress)
	if err != nil {
		logrus.Errorf("UpdateTrainingProgress - upsert failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update progress")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, progress)
}
