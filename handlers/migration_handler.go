// handlers/migration_handler.go
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"knowledgehub/database"
	"knowledgehub/models"
	"knowledgehub/utils"
)

type legacyItem struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags,omitempty"`
	Region      string   `json:"region,omitempty"`
}

// RunMigration bulk-imports legacy content. Every imported item starts
// Pending with its own validation workflow, so migrated content goes through
// the same review path as fresh uploads. Items that fail validation or
// duplicate checks are skipped, not aborted.
func RunMigration(w http.ResponseWriter, r *http.Request) {
	act, ok := actorFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req struct {
		Source string       `json:"source"`
		Items  []legacyItem `json:"items"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if strings.TrimSpace(req.Source) == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Source is missing")
		return
	}
	if len(req.Items) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "No items to import")
		return
	}

	// Bulk imports can be large; give them more room than a single request.
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	run := models.MigrationRun{
		ID:        primitive.NewObjectID(),
		Source:    strings.TrimSpace(req.Source),
		Status:    models.MigrationCompleted,
		Total:     len(req.Items),
		StartedBy: act.ID,
		StartedAt: time.Now().UTC(),
	}

	for i, legacy := range req.Items {
		if err := importLegacyItem(ctx, act, legacy); err != nil {
			run.Skipped++
			run.Errors = append(run.Errors, fmt.Sprintf("item %d (%s): %v", i, legacy.Title, err))
			continue
		}
		run.Imported++
	}

	run.FinishedAt = time.Now().UTC()
	switch {
	case run.Imported == 0:
		run.Status = models.MigrationFailed
	case run.Skipped > 0:
		run.Status = models.MigrationPartial
	}

	if _, err := migrationCollection.InsertOne(ctx, run); err != nil {
		logrus.Errorf("RunMigration - failed to record run: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Import finished but recording the run failed")
		return
	}

	recordAudit(ctx, r, AuditMigrationRun, "MigrationRun", run.ID, bson.M{
		"source":   run.Source,
		"total":    run.Total,
		"imported": run.Imported,
		"skipped":  run.Skipped,
	})

	logrus.WithFields(logrus.Fields{
		"source":   run.Source,
		"imported": run.Imported,
		"skipped":  run.Skipped,
	}).Info("migration run finished")

	utils.RespondWithJSON(w, http.StatusCreated, run)
}

// importLegacyItem creates one Pending item plus its workflow. The importing
// admin is recorded as the author of migrated content.
func importLegacyItem(ctx context.Context, act actor, legacy legacyItem) error {
	if strings.TrimSpace(legacy.Title) == "" {
		return fmt.Errorf("title is missing")
	}
	if strings.TrimSpace(legacy.Description) == "" {
		return fmt.Errorf("description is missing")
	}
	if strings.TrimSpace(legacy.Category) == "" {
		return fmt.Errorf("category is missing")
	}

	threshold := effectiveDuplicateThreshold(ctx)
	if dup, score, err := findDuplicate(ctx, legacy.Title, legacy.Category, threshold); err == nil && dup != nil {
		return fmt.Errorf("too similar to existing item %s (similarity %.2f)", dup.ID.Hex(), score)
	}

	now := time.Now().UTC()
	item := models.KnowledgeItem{
		ID:          primitive.NewObjectID(),
		Title:       strings.TrimSpace(legacy.Title),
		Description: legacy.Description,
		Category:    legacy.Category,
		Tags:        legacy.Tags,
		Region:      legacy.Region,
		Author:      act.ID,
		Status:      models.ItemStatusPending,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	return database.WithTransaction(ctx, mongoClient, func(txCtx context.Context) error {
		if _, err := knowledgeCollection.InsertOne(txCtx, item); err != nil {
			return err
		}
		_, err := createWorkflowForItem(txCtx, item.ID, nil, models.PriorityLow)
		return err
	})
}

// ListMigrations lists past runs, most recent first.
func ListMigrations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := migrationCollection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "startedAt", Value: -1}}))
	if err != nil {
		logrus.Errorf("ListMigrations - find failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch migration runs")
		return
	}
	defer cursor.Close(ctx)

	var runs []models.MigrationRun
	if err := cursor.All(ctx, &runs); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode migration runs")
		return
	}
	if runs == nil {
		runs = []models.MigrationRun{}
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"migrations": runs,
		"count":      len(runs),
	})
}
