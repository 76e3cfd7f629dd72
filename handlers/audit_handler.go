// handlers/audit_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"knowledgehub/models"
	"knowledgehub/utils"
)

// ListAuditLogs returns audit entries with filters for actor, action
// substring, target model and time range. Offset pagination.
func ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 12*time.Second)
	defer cancel()

	filter := bson.M{}
	query := r.URL.Query()

	if actorStr := query.Get("actor"); actorStr != "" {
		actorID, err := primitive.ObjectIDFromHex(actorStr)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid actor ID")
			return
		}
		filter["actor"] = actorID
	}
	if action := query.Get("action"); action != "" {
		filter["action"] = bson.M{"$regex": action, "$options": "i"}
	}
	if targetModel := query.Get("targetModel"); targetModel != "" {
		filter["targetModel"] = targetModel
	}
	if fromStr := query.Get("from"); fromStr != "" {
		if from, err := time.Parse(time.RFC3339, fromStr); err == nil {
			filter["timestamp"] = bson.M{"$gte": from}
		}
	}
	if toStr := query.Get("to"); toStr != "" {
		if to, err := time.Parse(time.RFC3339, toStr); err == nil {
			if existing, ok := filter["timestamp"].(bson.M); ok {
				existing["$lte"] = to
			} else {
				filter["timestamp"] = bson.M{"$lte": to}
			}
		}
	}

	limit, skip := pageParams(query.Get("limit"), query.Get("skip"))
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(skip))

	cursor, err := auditLogCollection.Find(ctx, filter, opts)
	if err != nil {
		logrus.Errorf("ListAuditLogs - find failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch audit logs")
		return
	}
	defer cursor.Close(ctx)

	var logs []models.AuditLog
	if err := cursor.All(ctx, &logs); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode audit logs")
		return
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}

	total, _ := auditLogCollection.CountDocuments(ctx, filter)

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
		"limit": limit,
		"skip":  skip,
	})
}

// GetContentAuditTrail returns the full trail for one knowledge item,
// including entries for its validation workflows.
func GetContentAuditTrail(w http.ResponseWriter, r *http.Request) {
	itemID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid knowledge item ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 12*time.Second)
	defer cancel()

	// Workflow entries reference the workflow id, so collect those first.
	wfCursor, err := validationCollection.Find(ctx,
		bson.M{"knowledgeItem": itemID},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch workflows")
		return
	}
	var workflows []models.ValidationWorkflow
	if err := wfCursor.All(ctx, &workflows); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode workflows")
		return
	}

	targets := []primitive.ObjectID{itemID}
	for _, wf := range workflows {
		targets = append(targets, wf.ID)
	}

	cursor, err := auditLogCollection.Find(ctx,
		bson.M{"target": bson.M{"$in": targets}},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}),
	)
	if err != nil {
		logrus.Errorf("GetContentAuditTrail - find failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch audit trail")
		return
	}
	defer cursor.Close(ctx)

	var logs []models.AuditLog
	if err := cursor.All(ctx, &logs); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode audit trail")
		return
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"knowledgeItem": itemID.Hex(),
		"trail":         logs,
		"count":         len(logs),
	})
}

// GetAuditStats aggregates entry counts by action and by target model.
func GetAuditStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	pipeline := []bson.M{
		{"$facet": bson.M{
			"byAction": []bson.M{
				{"$group": bson.M{"_id": "$action", "count": bson.M{"$sum": 1}}},
				{"$sort": bson.M{"count": -1}},
			},
			"byTargetModel": []bson.M{
				{"$group": bson.M{"_id": "$targetModel", "count": bson.M{"$sum": 1}}},
			},
			"recent": []bson.M{
				{"$sort": bson.M{"timestamp": -1}},
				{"$limit": 10},
			},
		}},
	}

	cursor, err := auditLogCollection.Aggregate(ctx, pipeline)
	if err != nil {
		logrus.Errorf("GetAuditStats - aggregate failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to calculate statistics")
		return
	}
	defer cursor.Close(ctx)

	var results []bson.M
	if err := cursor.All(ctx, &results); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode statistics")
		return
	}

	stats := bson.M{}
	if len(results) > 0 {
		stats = results[0]
	}
	utils.RespondWithJSON(w, http.StatusOK, stats)
}
