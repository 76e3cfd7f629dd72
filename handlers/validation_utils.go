// handlers/validation_utils.go
package handlers

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"knowledgehub/models"
)

// workflowTransitions is the allowed state machine for validation workflows.
// Approved and Rejected are terminal; reassignment resets to Pending through
// its own path, not through this table.
var workflowTransitions = map[string][]string{
	models.ValidationPending: {
		models.ValidationInReview,
		models.ValidationApproved,
		models.ValidationRejected,
		models.ValidationRevisionRequested,
	},
	models.ValidationInReview: {
		models.ValidationApproved,
		models.ValidationRejected,
		models.ValidationRevisionRequested,
	},
	models.ValidationRevisionRequested: {
		models.ValidationPending,
		models.ValidationInReview,
	},
	models.ValidationApproved: {},
	models.ValidationRejected: {},
}

func transitionAllowed(from, to string) bool {
	for _, next := range workflowTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func terminalStatus(status string) bool {
	return status == models.ValidationApproved || status == models.ValidationRejected
}

// itemStatusFor maps a workflow status to the knowledge item status it
// mirrors. InReview keeps the item Pending.
func itemStatusFor(workflowStatus string) string {
	switch workflowStatus {
	case models.ValidationApproved:
		return models.ItemStatusApproved
	case models.ValidationRejected:
		return models.ItemStatusRejected
	case models.ValidationRevisionRequested:
		return models.ItemStatusRevision
	default:
		return models.ItemStatusPending
	}
}

// canActOnValidation applies the update authorization rule: the assigned
// reviewer, any Knowledge Champion, or an admin-tier role.
func canActOnValidation(wf *models.ValidationWorkflow, act actor) bool {
	if models.IsReviewerTier(act.Role) {
		return true
	}
	return wf.AssignedReviewer != nil && *wf.AssignedReviewer == act.ID
}

// pickReviewer selects the candidate with the fewest open assignments,
// breaking ties by lowest id so assignment is deterministic.
func pickReviewer(candidates []primitive.ObjectID, openCounts map[string]int) (primitive.ObjectID, bool) {
	if len(candidates) == 0 {
		return primitive.NilObjectID, false
	}

	sorted := make([]primitive.ObjectID, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Hex() < sorted[j].Hex()
	})

	best := sorted[0]
	bestCount := openCounts[best.Hex()]
	for _, c := range sorted[1:] {
		if openCounts[c.Hex()] < bestCount {
			best = c
			bestCount = openCounts[c.Hex()]
		}
	}
	return best, true
}

// selectReviewer finds the least-loaded Knowledge Champion. Open assignments
// are workflows still Pending or InReview.
func selectReviewer(ctx context.Context) (primitive.ObjectID, error) {
	cursor, err := userCollection.Find(ctx, bson.M{"role": models.RoleChampion})
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to list reviewers: %w", err)
	}
	defer cursor.Close(ctx)

	var champions []models.User
	if err := cursor.All(ctx, &champions); err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to decode reviewers: %w", err)
	}
	if len(champions) == 0 {
		return primitive.NilObjectID, fmt.Errorf("no Knowledge Champions available")
	}

	pipeline := []bson.M{
		{"$match": bson.M{
			"status":           bson.M{"$in": []string{models.ValidationPending, models.ValidationInReview}},
			"assignedReviewer": bson.M{"$ne": nil},
		}},
		{"$group": bson.M{"_id": "$assignedReviewer", "count": bson.M{"$sum": 1}}},
	}
	aggCursor, err := validationCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to count open assignments: %w", err)
	}
	defer aggCursor.Close(ctx)

	var rows []struct {
		ID    primitive.ObjectID `bson:"_id"`
		Count int                `bson:"count"`
	}
	if err := aggCursor.All(ctx, &rows); err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to decode assignment counts: %w", err)
	}

	openCounts := make(map[string]int, len(rows))
	for _, row := range rows {
		openCounts[row.ID.Hex()] = row.Count
	}

	candidates := make([]primitive.ObjectID, len(champions))
	for i, c := range champions {
		candidates[i] = c.ID
	}

	reviewer, _ := pickReviewer(candidates, openCounts)
	return reviewer, nil
}

// workflowDecisionUpdate builds the $set document for a status change.
// completedAt is present iff the new status is terminal. Revision feedback
// lands in revisionComments, everything else in reviewNotes.
func workflowDecisionUpdate(newStatus, comment string, now time.Time) bson.M {
	set := bson.M{
		"status":    newStatus,
		"updatedAt": now,
	}
	if newStatus == models.ValidationRevisionRequested {
		set["revisionComments"] = comment
	} else {
		set["reviewNotes"] = comment
	}
	if terminalStatus(newStatus) {
		set["completedAt"] = now
	}
	return set
}

// newReviewEvent builds a history entry; every status change appends exactly one.
func newReviewEvent(reviewer primitive.ObjectID, action, comment string) models.ReviewEvent {
	return models.ReviewEvent{
		Reviewer:  reviewer,
		Action:    action,
		Comment:   comment,
		Timestamp: time.Now().UTC(),
	}
}
