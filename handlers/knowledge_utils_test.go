package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"knowledgehub/models"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"simple", "Cloud Migration Guide", []string{"cloud", "migration", "guide"}},
		{"punctuation", "API-first: design, v2!", []string{"api", "first", "design", "v2"}},
		{"empty", "", nil},
		{"only separators", "--- !!!", nil},
		{"mixed case", "SAP HANA Setup", []string{"sap", "hana", "setup"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(tt.input)
			if tt.want == nil {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestTitleSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"identical", "Cloud Migration Guide", "Cloud Migration Guide", 1.0},
		{"identical ignoring case and punctuation", "cloud migration guide", "Cloud: Migration-Guide", 1.0},
		{"disjoint", "Kubernetes Networking", "Payroll Onboarding", 0.0},
		{"empty side", "", "Cloud Guide", 0.0},
		{"both empty", "", "", 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, titleSimilarity(tt.a, tt.b), 0.0001)
		})
	}
}

func TestTitleSimilarityPartialOverlap(t *testing.T) {
	// {cloud, migration, guide} vs {cloud, migration, checklist}:
	// intersection 2, union 4.
	got := titleSimilarity("Cloud Migration Guide", "Cloud Migration Checklist")
	assert.InDelta(t, 0.5, got, 0.0001)
}

func TestTitleSimilaritySymmetric(t *testing.T) {
	a, b := "Azure Landing Zone Setup", "Landing Zone Review"
	assert.Equal(t, titleSimilarity(a, b), titleSimilarity(b, a))
}

func TestVisibilityFilter(t *testing.T) {
	userID := primitive.NewObjectID()

	for _, role := range []string{models.RoleChampion, models.RoleAdministrator, models.RoleGovernance} {
		filter := visibilityFilter(actor{ID: userID, Role: role})
		assert.Empty(t, filter, "reviewer tier role %s should see everything", role)
	}

	for _, role := range []string{models.RoleConsultant, models.RoleProjectManager} {
		filter := visibilityFilter(actor{ID: userID, Role: role})
		or, ok := filter["$or"].([]bson.M)
		if assert.True(t, ok, "role %s should get a scoped filter", role) {
			assert.Contains(t, or, bson.M{"status": models.ItemStatusApproved})
			assert.Contains(t, or, bson.M{"author": userID})
		}
	}
}

func TestResubmissionUpdate(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{models.ItemStatusPending, false},
		{models.ItemStatusApproved, true},
		{models.ItemStatusRejected, true},
		{models.ItemStatusRevision, true},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			set := bson.M{}
			got := resubmissionUpdate(set, tt.status, 3)

			assert.Equal(t, tt.want, got)
			if tt.want {
				assert.Equal(t, models.ItemStatusPending, set["status"])
				assert.Equal(t, 4, set["version"], "version must bump by exactly one")
			} else {
				assert.NotContains(t, set, "status")
				assert.NotContains(t, set, "version")
			}
		})
	}
}

func TestUpdatedFieldNames(t *testing.T) {
	set := bson.M{
		"updatedAt":          "bookkeeping",
		"updatedBy":          "bookkeeping",
		"title":              "New title",
		"duplicateThreshold": 0.7,
	}
	assert.ElementsMatch(t, []string{"title", "duplicateThreshold"}, updatedFieldNames(set))
}

func TestValidationAuditAction(t *testing.T) {
	assert.Equal(t, "VALIDATION_APPROVED", validationAuditAction(models.ValidationApproved))
	assert.Equal(t, "VALIDATION_REJECTED", validationAuditAction(models.ValidationRejected))
	assert.Equal(t, "VALIDATION_REVISION_REQUESTED", validationAuditAction(models.ValidationRevisionRequested))
	assert.Equal(t, "VALIDATION_IN_REVIEW", validationAuditAction(models.ValidationInReview))
	assert.Equal(t, "VALIDATION_REASSIGNED", validationAuditAction(models.ValidationPending))
}
