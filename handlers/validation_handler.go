// handlers/validation_handler.go
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"knowledgehub/database"
	"knowledgehub/models"
	"knowledgehub/utils"
	"knowledgehub/websocket"
)

// createWorkflowForItem inserts a Pending workflow for an item, assigning a
// reviewer if none is given. Callers are responsible for the duplicate check.
func createWorkflowForItem(ctx context.Context, itemID primitive.ObjectID, reviewerID *primitive.ObjectID, priority string) (*models.ValidationWorkflow, error) {
	if reviewerID == nil {
		picked, err := selectReviewer(ctx)
		if err != nil {
			return nil, err
		}
		reviewerID = &picked
	}
	if priority == "" {
		priority = models.PriorityMedium
	}

	now := time.Now().UTC()
	wf := models.ValidationWorkflow{
		ID:               primitive.NewObjectID(),
		KnowledgeItem:    itemID,
		AssignedReviewer: reviewerID,
		Status:           models.ValidationPending,
		Priority:         priority,
		ReviewHistory:    []models.ReviewEvent{newReviewEvent(*reviewerID, "Assigned", "")},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if _, err := validationCollection.InsertOne(ctx, wf); err != nil {
		return nil, fmt.Errorf("failed to insert workflow: %w", err)
	}
	return &wf, nil
}

// CreateValidation creates a validation workflow for an existing item.
// One active validation per item is an application-level check against the
// collection, not a schema constraint.
func CreateValidation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		KnowledgeItem string `json:"knowledgeItem"`
		ReviewerID    string `json:"reviewerId,omitempty"`
		Priority      string `json:"priority,omitempty"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	itemID, err := primitive.ObjectIDFromHex(req.KnowledgeItem)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid knowledge item ID")
		return
	}
	if req.Priority != "" && !models.ValidPriority(req.Priority) {
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown priority")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var item models.KnowledgeItem
	if err := knowledgeCollection.FindOne(ctx, bson.M{"_id": itemID}).Decode(&item); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Knowledge item not found")
		} else {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch knowledge item")
		}
		return
	}

	count, err := validationCollection.CountDocuments(ctx, bson.M{"knowledgeItem": itemID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to check existing validations")
		return
	}
	if count > 0 {
		utils.RespondWithError(w, http.StatusConflict, "A validation already exists for this item")
		return
	}

	var reviewerID *primitive.ObjectID
	if req.ReviewerID != "" {
		rid, err := primitive.ObjectIDFromHex(req.ReviewerID)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid reviewer ID")
			return
		}
		var reviewer models.User
		if err := userCollection.FindOne(ctx, bson.M{"_id": rid}).Decode(&reviewer); err != nil {
			utils.RespondWithError(w, http.StatusNotFound, "Reviewer not found")
			return
		}
		if !models.IsReviewerTier(reviewer.Role) {
			utils.RespondWithError(w, http.StatusBadRequest, "Reviewer must be a Knowledge Champion or above")
			return
		}
		reviewerID = &rid
	}

	wf, err := createWorkflowForItem(ctx, itemID, reviewerID, req.Priority)
	if err != nil {
		logrus.Errorf("CreateValidation - %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create validation")
		return
	}

	recordAudit(ctx, r, AuditValidationCreated, "ValidationWorkflow", wf.ID, bson.M{
		"knowledgeItem": itemID.Hex(),
		"reviewer":      wf.AssignedReviewer.Hex(),
		"priority":      wf.Priority,
	})

	utils.RespondWithJSON(w, http.StatusCreated, wf)
}

// ListValidations returns workflows for the review queue, filterable by
// status, priority and assignee.
func ListValidations(w http.ResponseWriter, r *http.Request) {
	act, ok := actorFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 12*time.Second)
	defer cancel()

	filter := bson.M{}
	query := r.URL.Query()

	if status := query.Get("status"); status != "" && status != "all" {
		filter["status"] = status
	}
	if priority := query.Get("priority"); priority != "" && priority != "all" {
		filter["priority"] = priority
	}
	if query.Get("assigned") == "me" {
		filter["assignedReviewer"] = act.ID
	}

	limit, skip := pageParams(query.Get("limit"), query.Get("skip"))
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(skip))

	cursor, err := validationCollection.Find(ctx, filter, opts)
	if err != nil {
		logrus.Errorf("ListValidations - find failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch validations")
		return
	}
	defer cursor.Close(ctx)

	var workflows []models.ValidationWorkflow
	if err := cursor.All(ctx, &workflows); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode validations")
		return
	}
	if workflows == nil {
		workflows = []models.ValidationWorkflow{}
	}

	total, _ := validationCollection.CountDocuments(ctx, filter)

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"validations": workflows,
		"total":       total,
		"limit":       limit,
		"skip":        skip,
	})
}

// GetValidation returns one workflow by id.
func GetValidation(w http.ResponseWriter, r *http.Request) {
	wfID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid validation ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var wf models.ValidationWorkflow
	if err := validationCollection.FindOne(ctx, bson.M{"_id": wfID}).Decode(&wf); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Validation not found")
		} else {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch validation")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, wf)
}

// UpdateValidation applies a reviewer decision to a workflow.
func UpdateValidation(w http.ResponseWriter, r *http.Request) {
	wfID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid validation ID")
		return
	}

	var req struct {
		Status string `json:"status"`
		Notes  string `json:"notes,omitempty"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 12*time.Second)
	defer cancel()

	var wf models.ValidationWorkflow
	if err := validationCollection.FindOne(ctx, bson.M{"_id": wfID}).Decode(&wf); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Validation not found")
		} else {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch validation")
		}
		return
	}

	applyWorkflowDecision(ctx, w, r, &wf, req.Status, req.Notes)
}

// applyWorkflowDecision is the single path for workflow status changes: it
// checks authorization and the transition table, then updates the workflow
// and mirrors the decision onto the knowledge item inside one transaction.
func applyWorkflowDecision(ctx context.Context, w http.ResponseWriter, r *http.Request, wf *models.ValidationWorkflow, newStatus, comment string) {
	act, ok := actorFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	switch newStatus {
	case models.ValidationInReview, models.ValidationApproved,
		models.ValidationRejected, models.ValidationRevisionRequested:
	default:
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown validation status")
		return
	}

	if !canActOnValidation(wf, act) {
		utils.RespondWithError(w, http.StatusForbidden, "Not authorized to act on this validation")
		return
	}
	if !transitionAllowed(wf.Status, newStatus) {
		utils.RespondWithError(w, http.StatusConflict,
			fmt.Sprintf("Cannot transition validation from %s to %s", wf.Status, newStatus))
		return
	}

	now := time.Now().UTC()
	oldStatus := wf.Status

	wfUpdate := workflowDecisionUpdate(newStatus, comment, now)

	event := newReviewEvent(act.ID, newStatus, comment)

	itemUpdate := bson.M{
		"status":    itemStatusFor(newStatus),
		"updatedAt": now,
	}

	err := database.WithTransaction(ctx, mongoClient, func(txCtx context.Context) error {
		// Conditional on the old status so concurrent decisions can't both win.
		res, err := validationCollection.UpdateOne(txCtx,
			bson.M{"_id": wf.ID, "status": oldStatus},
			bson.M{"$set": wfUpdate, "$push": bson.M{"reviewHistory": event}},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return errAlreadyProcessed
		}

		update := bson.M{"$set": itemUpdate}
		if newStatus != models.ValidationInReview {
			update["$push"] = bson.M{"approvals": models.ApprovalRecord{
				Approver: act.ID,
				Status:   newStatus,
				Comment:  comment,
				Date:     now,
			}}
		}
		_, err = knowledgeCollection.UpdateOne(txCtx, bson.M{"_id": wf.KnowledgeItem}, update)
		return err
	})
	if err != nil {
		if err == errAlreadyProcessed {
			utils.RespondWithError(w, http.StatusConflict, "Validation was already processed")
			return
		}
		logrus.Errorf("applyWorkflowDecision - transaction failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update validation")
		return
	}

	if terminalStatus(newStatus) {
		incrementScore(ctx, act.ID, "validations")
	}
	if newStatus == models.ValidationApproved {
		var item models.KnowledgeItem
		if err := knowledgeCollection.FindOne(ctx, bson.M{"_id": wf.KnowledgeItem}).Decode(&item); err == nil {
			incrementScore(ctx, item.Author, "approvals")
		}
	}

	recordAudit(ctx, r, validationAuditAction(newStatus), "ValidationWorkflow", wf.ID, bson.M{
		"knowledgeItem": wf.KnowledgeItem.Hex(),
		"oldStatus":     oldStatus,
		"newStatus":     newStatus,
		"comment":       comment,
	})
	websocket.SendValidationUpdated(wf.ID.Hex(), wf.KnowledgeItem.Hex(), oldStatus, newStatus)

	var updated models.ValidationWorkflow
	if err := validationCollection.FindOne(ctx, bson.M{"_id": wf.ID}).Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Validation updated but failed to fetch result")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, updated)
}

// ReassignValidation moves a workflow to a new reviewer and resets it to
// Pending. Admin tier only (enforced on the route).
func ReassignValidation(w http.ResponseWriter, r *http.Request) {
	act, ok := actorFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	wfID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid validation ID")
		return
	}

	var req struct {
		ReviewerID string `json:"reviewerId"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	newReviewer, err := primitive.ObjectIDFromHex(req.ReviewerID)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid reviewer ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 12*time.Second)
	defer cancel()

	var reviewer models.User
	if err := userCollection.FindOne(ctx, bson.M{"_id": newReviewer}).Decode(&reviewer); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Reviewer not found")
		return
	}
	if !models.IsReviewerTier(reviewer.Role) {
		utils.RespondWithError(w, http.StatusBadRequest, "Reviewer must be a Knowledge Champion or above")
		return
	}

	var wf models.ValidationWorkflow
	if err := validationCollection.FindOne(ctx, bson.M{"_id": wfID}).Decode(&wf); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Validation not found")
		} else {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch validation")
		}
		return
	}

	oldReviewer := "unassigned"
	if wf.AssignedReviewer != nil {
		oldReviewer = wf.AssignedReviewer.Hex()
	}

	now := time.Now().UTC()
	event := newReviewEvent(act.ID, "Reassigned",
		fmt.Sprintf("from %s to %s", oldReviewer, newReviewer.Hex()))

	err = database.WithTransaction(ctx, mongoClient, func(txCtx context.Context) error {
		_, err := validationCollection.UpdateOne(txCtx,
			bson.M{"_id": wf.ID},
			bson.M{
				"$set": bson.M{
					"assignedReviewer": newReviewer,
					"status":           models.ValidationPending,
					"updatedAt":        now,
				},
				"$unset": bson.M{"completedAt": ""},
				"$push":  bson.M{"reviewHistory": event},
			},
		)
		if err != nil {
			return err
		}
		_, err = knowledgeCollection.UpdateOne(txCtx,
			bson.M{"_id": wf.KnowledgeItem},
			bson.M{"$set": bson.M{"status": models.ItemStatusPending, "updatedAt": now}},
		)
		return err
	})
	if err != nil {
		logrus.Errorf("ReassignValidation - transaction failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to reassign validation")
		return
	}

	recordAudit(ctx, r, "VALIDATION_REASSIGNED", "ValidationWorkflow", wf.ID, bson.M{
		"oldReviewer": oldReviewer,
		"newReviewer": newReviewer.Hex(),
	})
	websocket.SendValidationUpdated(wf.ID.Hex(), wf.KnowledgeItem.Hex(), wf.Status, models.ValidationPending)

	var updated models.ValidationWorkflow
	if err := validationCollection.FindOne(ctx, bson.M{"_id": wf.ID}).Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Validation reassigned but failed to fetch result")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, updated)
}

// GetValidationStats aggregates queue counts by status, priority and reviewer.
func GetValidationStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	pipeline := []bson.M{
		{"$facet": bson.M{
			"byStatus": []bson.M{
				{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
			},
			"byPriority": []bson.M{
				{"$group": bson.M{"_id": "$priority", "count": bson.M{"$sum": 1}}},
			},
			"openByReviewer": []bson.M{
				{"$match": bson.M{"status": bson.M{"$in": []string{models.ValidationPending, models.ValidationInReview}}}},
				{"$group": bson.M{"_id": "$assignedReviewer", "count": bson.M{"$sum": 1}}},
			},
		}},
	}

	cursor, err := validationCollection.Aggregate(ctx, pipeline)
	if err != nil {
		logrus.Errorf("GetValidationStats - aggregate failed: %v", err)
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

// errAlreadyProcessed signals a lost conditional update on the workflow.
var errAlreadyProcessed = fmt.Errorf("validation already processed")

// pageParams parses limit/skip query values with the configured cap.
func pageParams(limitStr, skipStr string) (int, int) {
	limit := 50
	skip := 0
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= appConfig.MaxPageSize {
			limit = l
		}
	}
	if skipStr != "" {
		if s, err := strconv.Atoi(skipStr); err == nil && s >= 0 {
			skip = s
		}
	}
	return limit, skip
}
