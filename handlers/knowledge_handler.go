// handlers/knowledge_handler.go
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
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

// attachmentInput is client-supplied metadata for a new attachment.
type attachmentInput struct {
	FileName string `json:"fileName"`
	Size     int64  `json:"size,omitempty"`
}

// CreateKnowledgeItem uploads a new item. The item starts Pending and a
// validation workflow is created for it in the same request.
func CreateKnowledgeItem(w http.ResponseWriter, r *http.Request) {
	act, ok := actorFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req struct {
		Title       string            `json:"title"`
		Description string            `json:"description"`
		Category    string            `json:"category"`
		Tags        []string          `json:"tags"`
		Region      string            `json:"region,omitempty"`
		Priority    string            `json:"priority,omitempty"`
		Attachments []attachmentInput `json:"attachments,omitempty"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Title is missing")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Description is missing")
		return
	}
	if strings.TrimSpace(req.Category) == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Category is missing")
		return
	}
	if len(req.Tags) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Tags are missing")
		return
	}
	if req.Priority != "" && !models.ValidPriority(req.Priority) {
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown priority")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	threshold := effectiveDuplicateThreshold(ctx)
	dup, score, err := findDuplicate(ctx, req.Title, req.Category, threshold)
	if err != nil {
		logrus.Errorf("CreateKnowledgeItem - duplicate scan failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to check for duplicates")
		return
	}
	if dup != nil {
		utils.RespondWithError(w, http.StatusConflict,
			fmt.Sprintf("Too similar to existing item %s (similarity %.2f)", dup.ID.Hex(), score))
		return
	}

	now := time.Now().UTC()
	item := models.KnowledgeItem{
		ID:          primitive.NewObjectID(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    req.Category,
		Tags:        req.Tags,
		Region:      req.Region,
		Author:      act.ID,
		Status:      models.ItemStatusPending,
		Attachments: buildAttachments(req.Attachments, now),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var wf *models.ValidationWorkflow
	err = database.WithTransaction(ctx, mongoClient, func(txCtx context.Context) error {
		if _, err := knowledgeCollection.InsertOne(txCtx, item); err != nil {
			return err
		}
		created, err := createWorkflowForItem(txCtx, item.ID, nil, req.Priority)
		if err != nil {
			return err
		}
		wf = created
		return nil
	})
	if err != nil {
		logrus.Errorf("CreateKnowledgeItem - create failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create knowledge item")
		return
	}

	incrementScore(ctx, act.ID, "uploads")
	recordAudit(ctx, r, AuditKnowledgeCreated, "KnowledgeItem", item.ID, bson.M{
		"title":    item.Title,
		"category": item.Category,
		"workflow": wf.ID.Hex(),
	})
	websocket.Broadcast(websocket.Event{
		Type:     "KNOWLEDGE_CREATED",
		TargetID: item.ID.Hex(),
		Data:     bson.M{"title": item.Title, "author": act.Name},
	})

	utils.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"item":       item,
		"validation": wf,
	})
}

// ListKnowledgeItems lists items scoped by role visibility, with filtering
// and pagination.
func ListKnowledgeItems(w http.ResponseWriter, r *http.Request) {
	act, ok := actorFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 12*time.Second)
	defer cancel()

	filter := visibilityFilter(act)
	query := r.URL.Query()

	if status := query.Get("status"); status != "" && status != "all" {
		filter["status"] = status
	}
	if category := query.Get("category"); category != "" {
		filter["category"] = category
	}
	if tag := query.Get("tag"); tag != "" {
		filter["tags"] = tag
	}
	if region := query.Get("region"); region != "" {
		filter["region"] = region
	}
	if search := query.Get("search"); search != "" {
		filter["$or"] = []bson.M{
			{"title": bson.M{"$regex": search, "$options": "i"}},
			{"description": bson.M{"$regex": search, "$options": "i"}},
			{"tags": bson.M{"$regex": search, "$options": "i"}},
		}
	}

	limit, skip := pageParams(query.Get("limit"), query.Get("skip"))
	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(skip))

	cursor, err := knowledgeCollection.Find(ctx, filter, opts)
	if err != nil {
		logrus.Errorf("ListKnowledgeItems - find failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch knowledge items")
		return
	}
	defer cursor.Close(ctx)

	var items []models.KnowledgeItem
	if err := cursor.All(ctx, &items); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode knowledge items")
		return
	}
	if items == nil {
		items = []models.KnowledgeItem{}
	}

	total, _ := knowledgeCollection.CountDocuments(ctx, filter)

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": total,
		"limit": limit,
		"skip":  skip,
	})
}

// GetKnowledgeItem returns one item, honoring role visibility.
func GetKnowledgeItem(w http.ResponseWriter, r *http.Request) {
	act, ok := actorFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	itemID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid knowledge item ID")
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

	if item.Status != models.ItemStatusApproved &&
		!models.IsReviewerTier(act.Role) && item.Author != act.ID {
		utils.RespondWithError(w, http.StatusForbidden, "Not authorized to view this item")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, item)
}

// UpdateKnowledgeItem edits an item. Author only. Editing an item that has
// left Pending resets it to Pending for re-review and bumps the version.
func UpdateKnowledgeItem(w http.ResponseWriter, r *http.Request) {
	act, ok := actorFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	itemID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid knowledge item ID")
		return
	}

	var req struct {
		Title           *string           `json:"title,omitempty"`
		Description     *string           `json:"description,omitempty"`
		Category        *string           `json:"category,omitempty"`
		Tags            []string          `json:"tags,omitempty"`
		Region          *string           `json:"region,omitempty"`
		KeepAttachments []string          `json:"keepAttachments,omitempty"`
		NewAttachments  []attachmentInput `json:"newAttachments,omitempty"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
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

	if item.Author != act.ID {
		utils.RespondWithError(w, http.StatusForbidden, "Only the author can edit this item")
		return
	}
	if item.Status == models.ItemStatusArchived {
		utils.RespondWithError(w, http.StatusConflict, "Archived items cannot be edited")
		return
	}

	now := time.Now().UTC()
	set := bson.M{"updatedAt": now}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			utils.RespondWithError(w, http.StatusBadRequest, "Title is missing")
			return
		}
		set["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		if strings.TrimSpace(*req.Description) == "" {
			utils.RespondWithError(w, http.StatusBadRequest, "Description is missing")
			return
		}
		set["description"] = *req.Description
	}
	if req.Category != nil {
		set["category"] = *req.Category
	}
	if req.Tags != nil {
		set["tags"] = req.Tags
	}
	if req.Region != nil {
		set["region"] = *req.Region
	}

	// Attachment list is rebuilt from the client's kept ids plus new uploads.
	if req.KeepAttachments != nil || len(req.NewAttachments) > 0 {
		kept := make(map[string]bool, len(req.KeepAttachments))
		for _, id := range req.KeepAttachments {
			kept[id] = true
		}
		attachments := make([]models.Attachment, 0, len(item.Attachments)+len(req.NewAttachments))
		for _, a := range item.Attachments {
			if kept[a.ID] {
				attachments = append(attachments, a)
			}
		}
		attachments = append(attachments, buildAttachments(req.NewAttachments, now)...)
		set["attachments"] = attachments
	}

	// Leaving a reviewed state re-enters the queue.
	resubmit := resubmissionUpdate(set, item.Status, item.Version)

	err = database.WithTransaction(ctx, mongoClient, func(txCtx context.Context) error {
		if _, err := knowledgeCollection.UpdateOne(txCtx, bson.M{"_id": itemID}, bson.M{"$set": set}); err != nil {
			return err
		}
		if !resubmit {
			return nil
		}
		return resubmitWorkflow(txCtx, itemID, act.ID)
	})
	if err != nil {
		logrus.Errorf("UpdateKnowledgeItem - update failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update knowledge item")
		return
	}

	recordAudit(ctx, r, AuditKnowledgeUpdated, "KnowledgeItem", itemID, bson.M{
		"resubmitted": resubmit,
		"fields":      updatedFieldNames(set),
	})

	var updated models.KnowledgeItem
	if err := knowledgeCollection.FindOne(ctx, bson.M{"_id": itemID}).Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Item updated but failed to fetch result")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, updated)
}

// resubmitWorkflow resets the item's workflow to Pending, or creates one if
// the item never had one.
func resubmitWorkflow(ctx context.Context, itemID, author primitive.ObjectID) error {
	var wf models.ValidationWorkflow
	err := validationCollection.FindOne(ctx,
		bson.M{"knowledgeItem": itemID},
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	).Decode(&wf)
	if err == mongo.ErrNoDocuments {
		_, err := createWorkflowForItem(ctx, itemID, nil, "")
		return err
	}
	if err != nil {
		return err
	}

	_, err = validationCollection.UpdateOne(ctx,
		bson.M{"_id": wf.ID},
		bson.M{
			"$set":   bson.M{"status": models.ValidationPending, "updatedAt": time.Now().UTC()},
			"$unset": bson.M{"completedAt": ""},
			"$push":  bson.M{"reviewHistory": newReviewEvent(author, "Resubmitted", "")},
		},
	)
	return err
}

// ApproveKnowledgeItem approves the item via its workflow.
func ApproveKnowledgeItem(w http.ResponseWriter, r *http.Request) {
	decideByItem(w, r, models.ValidationApproved)
}

// RejectKnowledgeItem rejects the item via its workflow.
func RejectKnowledgeItem(w http.ResponseWriter, r *http.Request) {
	decideByItem(w, r, models.ValidationRejected)
}

// RequestKnowledgeRevision sends the item back to its author for revision.
func RequestKnowledgeRevision(w http.ResponseWriter, r *http.Request) {
	decideByItem(w, r, models.ValidationRevisionRequested)
}

// decideByItem resolves the item's latest workflow and routes the decision
// through the same path as PUT /api/validations/{id}.
func decideByItem(w http.ResponseWriter, r *http.Request, status string) {
	itemID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid knowledge item ID")
		return
	}

	var req struct {
		Comment string `json:"comment,omitempty"`
	}
	// Body is optional for these endpoints.
	_ = utils.ParseJSON(r, &req)

	ctx, cancel := context.WithTimeout(r.Context(), 12*time.Second)
	defer cancel()

	var wf models.ValidationWorkflow
	err = validationCollection.FindOne(ctx,
		bson.M{"knowledgeItem": itemID},
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	).Decode(&wf)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "No validation exists for this item")
		} else {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch validation")
		}
		return
	}

	applyWorkflowDecision(ctx, w, r, &wf, status, req.Comment)
}

// ArchiveKnowledgeItem archives an item directly, outside the review path.
// Allowed for the author and admin-tier roles.
func ArchiveKnowledgeItem(w http.ResponseWriter, r *http.Request) {
	act, ok := actorFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	itemID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid knowledge item ID")
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

	if item.Author != act.ID && !models.IsAdminTier(act.Role) {
		utils.RespondWithError(w, http.StatusForbidden, "Not authorized to archive this item")
		return
	}
	if item.Status == models.ItemStatusArchived {
		utils.RespondWithError(w, http.StatusConflict, "Item is already archived")
		return
	}

	_, err = knowledgeCollection.UpdateOne(ctx,
		bson.M{"_id": itemID},
		bson.M{"$set": bson.M{"status": models.ItemStatusArchived, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		logrus.Errorf("ArchiveKnowledgeItem - update failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to archive item")
		return
	}

	recordAudit(ctx, r, AuditKnowledgeArchived, "KnowledgeItem", itemID, bson.M{
		"previousStatus": item.Status,
	})

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Item archived",
	})
}

// RecordKnowledgeView bumps the item's view counter and the author's views
// score. Single-document $inc, safe under concurrency.
func RecordKnowledgeView(w http.ResponseWriter, r *http.Request) {
	recordCounter(w, r, "views")
}

// RecordKnowledgeDownload credits the author's downloads score.
func RecordKnowledgeDownload(w http.ResponseWriter, r *http.Request) {
	recordCounter(w, r, "downloads")
}

func recordCounter(w http.ResponseWriter, r *http.Request, field string) {
	itemID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid knowledge item ID")
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

	if field == "views" {
		_, err = knowledgeCollection.UpdateOne(ctx, bson.M{"_id": itemID}, bson.M{"$inc": bson.M{"views": 1}})
		if err != nil {
			logrus.Errorf("RecordKnowledgeView - inc failed: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to record view")
			return
		}
	}

	incrementScore(ctx, item.Author, field)

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Recorded",
	})
}

func buildAttachments(inputs []attachmentInput, now time.Time) []models.Attachment {
	if len(inputs) == 0 {
		return nil
	}
	attachments := make([]models.Attachment, 0, len(inputs))
	for _, in := range inputs {
		if strings.TrimSpace(in.FileName) == "" {
			continue
		}
		attachments = append(attachments, models.Attachment{
			ID:         uuid.NewString(),
			FileName:   in.FileName,
			Size:       in.Size,
			UploadedAt: now,
		})
	}
	return attachments
}

// updatedFieldNames lists the domain fields a $set document changes,
// excluding bookkeeping keys.
func updatedFieldNames(set bson.M) []string {
	fields := make([]string, 0, len(set))
	for k := range set {
		if k == "updatedAt" || k == "updatedBy" {
			continue
		}
		fields = append(fields, k)
	}
	return fields
}
