package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"knowledgehub/models"
)

func TestTransitionAllowed(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want bool
	}{
		{models.ValidationPending, models.ValidationInReview, true},
		{models.ValidationPending, models.ValidationApproved, true},
		{models.ValidationPending, models.ValidationRejected, true},
		{models.ValidationPending, models.ValidationRevisionRequested, true},
		{models.ValidationInReview, models.ValidationApproved, true},
		{models.ValidationInReview, models.ValidationRejected, true},
		{models.ValidationInReview, models.ValidationRevisionRequested, true},
		{models.ValidationInReview, models.ValidationPending, false},
		{models.ValidationRevisionRequested, models.ValidationPending, true},
		{models.ValidationRevisionRequested, models.ValidationInReview, true},
		{models.ValidationRevisionRequested, models.ValidationApproved, false},
		{models.ValidationApproved, models.ValidationRejected, false},
		{models.ValidationApproved, models.ValidationInReview, false},
		{models.ValidationRejected, models.ValidationApproved, false},
		{"Bogus", models.ValidationApproved, false},
	}
	for _, tt := range tests {
		t.Run(tt.from+"_to_"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, transitionAllowed(tt.from, tt.to))
		})
	}
}

func TestTerminalStatus(t *testing.T) {
	assert.True(t, terminalStatus(models.ValidationApproved))
	assert.True(t, terminalStatus(models.ValidationRejected))
	assert.False(t, terminalStatus(models.ValidationPending))
	assert.False(t, terminalStatus(models.ValidationInReview))
	assert.False(t, terminalStatus(models.ValidationRevisionRequested))
}

func TestItemStatusFor(t *testing.T) {
	assert.Equal(t, models.ItemStatusApproved, itemStatusFor(models.ValidationApproved))
	assert.Equal(t, models.ItemStatusRejected, itemStatusFor(models.ValidationRejected))
	assert.Equal(t, models.ItemStatusRevision, itemStatusFor(models.ValidationRevisionRequested))
	assert.Equal(t, models.ItemStatusPending, itemStatusFor(models.ValidationInReview))
	assert.Equal(t, models.ItemStatusPending, itemStatusFor(models.ValidationPending))
}

func TestCanActOnValidation(t *testing.T) {
	reviewerID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()
	wf := &models.ValidationWorkflow{AssignedReviewer: &reviewerID}

	tests := []struct {
		name string
		act  actor
		want bool
	}{
		{"assigned consultant", actor{ID: reviewerID, Role: models.RoleConsultant}, true},
		{"unassigned consultant", actor{ID: otherID, Role: models.RoleConsultant}, false},
		{"unassigned project manager", actor{ID: otherID, Role: models.RoleProjectManager}, false},
		{"any champion", actor{ID: otherID, Role: models.RoleChampion}, true},
		{"any administrator", actor{ID: otherID, Role: models.RoleAdministrator}, true},
		{"any governance", actor{ID: otherID, Role: models.RoleGovernance}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, canActOnValidation(wf, tt.act))
		})
	}
}

func TestCanActOnValidationUnassigned(t *testing.T) {
	wf := &models.ValidationWorkflow{}
	act := actor{ID: primitive.NewObjectID(), Role: models.RoleConsultant}
	assert.False(t, canActOnValidation(wf, act))
}

func TestPickReviewerLeastLoaded(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	c := primitive.NewObjectID()

	open := map[string]int{
		a.Hex(): 5,
		b.Hex(): 1,
		c.Hex(): 3,
	}

	picked, ok := pickReviewer([]primitive.ObjectID{a, b, c}, open)
	assert.True(t, ok)
	assert.Equal(t, b, picked)
}

func TestPickReviewerTieBreak(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	lowest := a
	if b.Hex() < a.Hex() {
		lowest = b
	}

	// Equal load: the lowest id wins regardless of candidate order.
	open := map[string]int{a.Hex(): 2, b.Hex(): 2}

	picked1, ok1 := pickReviewer([]primitive.ObjectID{a, b}, open)
	picked2, ok2 := pickReviewer([]primitive.ObjectID{b, a}, open)

	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, lowest, picked1)
	assert.Equal(t, picked1, picked2)
}

func TestPickReviewerMissingCountsAsZero(t *testing.T) {
	loaded := primitive.NewObjectID()
	fresh := primitive.NewObjectID()

	picked, ok := pickReviewer(
		[]primitive.ObjectID{loaded, fresh},
		map[string]int{loaded.Hex(): 1},
	)
	assert.True(t, ok)
	assert.Equal(t, fresh, picked)
}

func TestPickReviewerNoCandidates(t *testing.T) {
	_, ok := pickReviewer(nil, map[string]int{})
	assert.False(t, ok)
}

func TestWorkflowDecisionUpdate(t *testing.T) {
	now := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		status        string
		wantCompleted bool
		commentField  string
	}{
		{models.ValidationApproved, true, "reviewNotes"},
		{models.ValidationRejected, true, "reviewNotes"},
		{models.ValidationInReview, false, "reviewNotes"},
		{models.ValidationRevisionRequested, false, "revisionComments"},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			set := workflowDecisionUpdate(tt.status, "needs work", now)

			assert.Equal(t, tt.status, set["status"])
			assert.Equal(t, now, set["updatedAt"])
			assert.Equal(t, "needs work", set[tt.commentField])

			completedAt, present := set["completedAt"]
			assert.Equal(t, tt.wantCompleted, present,
				"completedAt must be set iff the status is terminal")
			if tt.wantCompleted {
				assert.Equal(t, now, completedAt)
			}
		})
	}
}
