// handlers/mentorship_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"knowledgehub/models"
	"knowledgehub/utils"
)

// CreateMentorship pairs a mentor with a mentee. The mentor must hold
// Knowledge Champion or above.
func CreateMentorship(w http.ResponseWriter, r *http.Request) {
	act, ok := actorFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req struct {
		MentorID string `json:"mentorId"`
		MenteeID string `json:"menteeId"`
		Focus    string `json:"focus,omitempty"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	mentorID, err := primitive.ObjectIDFromHex(req.MentorID)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid mentor ID")
		return
	}
	menteeID, err := primitive.ObjectIDFromHex(req.MenteeID)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid mentee ID")
		return
	}
	if mentorID == menteeID {
		utils.RespondWithError(w, http.StatusBadRequest, "Mentor and mentee must differ")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var mentor models.User
	if err := userCollection.FindOne(ctx, bson.M{"_id": mentorID}).Decode(&mentor); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Mentor not found")
		return
	}
	if !models.IsReviewerTier(mentor.Role) {
		utils.RespondWithError(w, http.StatusBadRequest, "Mentor must be a Knowledge Champion or above")
		return
	}
	if err := userCollection.FindOne(ctx, bson.M{"_id": menteeID}).Err(); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Mentee not found")
		return
	}

	count, err := mentorshipCollection.CountDocuments(ctx, bson.M{
		"mentor": mentorID,
		"mentee": menteeID,
		"status": models.MentorshipActive,
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to check existing mentorships")
		return
	}
	if count > 0 {
		utils.RespondWithError(w, http.StatusConflict, "An active mentorship already exists for this pair")
		return
	}

	now := time.Now().UTC()
	mentorship := models.Mentorship{
		ID:        primitive.NewObjectID(),
		Mentor:    mentorID,
		Mentee:    menteeID,
		Focus:     req.Focus,
		Status:    models.MentorshipActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := mentorshipCollection.InsertOne(ctx, mentorship); err != nil {
		logrus.Errorf("CreateMentorship - insert failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create mentorship")
		return
	}

	recordAudit(ctx, r, AuditMentorshipCreated, "Mentorship", mentorship.ID, bson.M{
		"mentor":    mentorID.Hex(),
		"mentee":    menteeID.Hex(),
		"createdBy": act.ID.Hex(),
	})

	utils.RespondWithJSON(w, http.StatusCreated, mentorship)
}

// ListMentorships lists pairings; non-admin callers only see their own.
func ListMentorships(w http.ResponseWriter, r *http.Request) {
	act, ok := actorFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if !models.IsAdminTier(act.Role) {
		filter["$or"] = []bson.M{{"mentor": act.ID}, {"mentee": act.ID}}
	}
	if status := r.URL.Query().Get("status"); status != "" && status != "all" {
		filter["status"] = status
	}

	cursor, err := mentorshipCollection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch mentorships")
		return
	}
	defer cursor.Close(ctx)

	var mentorships []models.Mentorship
	if err := cursor.All(ctx, &mentorships); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode mentorships")
		return
	}
	if mentorships == nil {
		mentorships = []models.Mentorship{}
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"mentorships": mentorships,
		"count":       len(mentorships),
	})
}

// UpdateMentorship changes status or notes. Allowed for the mentor and
// admin-tier roles.
func UpdateMentorship(w http.ResponseWriter, r *http.Request) {
	act, ok := actorFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	mentorshipID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid mentorship ID")
		return
	}

	var req struct {
		Status string `json:"status,omitempty"`
		Notes  string `json:"notes,omitempty"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if req.Status != "" {
		switch req.Status {
		case models.MentorshipActive, models.MentorshipCompleted, models.MentorshipCancelled:
		default:
			utils.RespondWithError(w, http.StatusBadRequest, "Unknown mentorship status")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var mentorship models.Mentorship
	if err := mentorshipCollection.FindOne(ctx, bson.M{"_id": mentorshipID}).Decode(&mentorship); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Mentorship not found")
		} else {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch mentorship")
		}
		return
	}

	if mentorship.Mentor != act.ID && !models.IsAdminTier(act.Role) {
		utils.RespondWithError(w, http.StatusForbidden, "Not authorized to update this mentorship")
		return
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if req.Status != "" {
		set["status"] = req.Status
	}
	if req.Notes != "" {
		set["notes"] = req.Notes
	}

	if _, err := mentorshipCollection.UpdateOne(ctx, bson.M{"_id": mentorshipID}, bson.M{"$set": set}); err != nil {
		logrus.Errorf("UpdateMentorship - update failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update mentorship")
		return
	}

	recordAudit(ctx, r, AuditMentorshipUpdated, "Mentorship", mentorshipID, bson.M{
		"status": req.Status,
	})

	var updated models.Mentorship
	if err := mentorshipCollection.FindOne(ctx, bson.M{"_id": mentorshipID}).Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Mentorship updated but failed to fetch result")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, updated)
}
