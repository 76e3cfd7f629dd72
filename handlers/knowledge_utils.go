// handlers/knowledge_utils.go
package handlers

import (
	"context"
	"strings"
	"unicode"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"knowledgehub/models"
)

// tokenize lowercases and splits on non-alphanumeric runes.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// titleSimilarity is the Jaccard coefficient over the two titles' token sets.
func titleSimilarity(a, b string) float64 {
	setA := make(map[string]bool)
	for _, tok := range tokenize(a) {
		setA[tok] = true
	}
	setB := make(map[string]bool)
	for _, tok := range tokenize(b) {
		setB[tok] = true
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// effectiveDuplicateThreshold prefers the persisted settings override, then
// the startup config value.
func effectiveDuplicateThreshold(ctx context.Context) float64 {
	var settings models.Settings
	err := settingsCollection.FindOne(ctx, bson.M{"_id": models.SettingsDocID}).Decode(&settings)
	if err == nil && settings.DuplicateThreshold > 0 {
		return settings.DuplicateThreshold
	}
	return appConfig.DuplicateThreshold
}

// findDuplicate scans recent items in the same category for a title too
// similar to the candidate. Returns the best match at or above the threshold.
func findDuplicate(ctx context.Context, title, category string, threshold float64) (*models.KnowledgeItem, float64, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(200).
		SetProjection(bson.M{"title": 1, "status": 1})

	cursor, err := knowledgeCollection.Find(ctx, bson.M{
		"category": category,
		"status":   bson.M{"$ne": models.ItemStatusArchived},
	}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var items []models.KnowledgeItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, err
	}

	var best *models.KnowledgeItem
	bestScore := 0.0
	for i := range items {
		score := titleSimilarity(title, items[i].Title)
		if score > bestScore {
			best = &items[i]
			bestScore = score
		}
	}
	if best != nil && bestScore >= threshold {
		return best, bestScore, nil
	}
	return nil, bestScore, nil
}

// resubmissionUpdate extends an edit's $set document when the item has left
// Pending: it re-enters the review queue and the version is bumped by exactly
// one. Returns whether the edit is a resubmission.
func resubmissionUpdate(set bson.M, currentStatus string, version int) bool {
	if currentStatus == models.ItemStatusPending {
		return false
	}
	set["status"] = models.ItemStatusPending
	set["version"] = version + 1
	return true
}

// visibilityFilter scopes listing by role: reviewer-tier roles see every
// status; everyone else sees Approved items plus their own submissions.
func visibilityFilter(act actor) bson.M {
	if models.IsReviewerTier(act.Role) {
		return bson.M{}
	}
	return bson.M{"$or": []bson.M{
		{"status": models.ItemStatusApproved},
		{"author": act.ID},
	}}
}
