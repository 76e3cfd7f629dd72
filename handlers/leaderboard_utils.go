// handlers/leaderboard_utils.go
package handlers

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"knowledgehub/models"
)

// Fixed score weights. totalScore is always the dot product of the counters
// and these weights.
var scoreWeights = map[string]int{
	"uploads":     10,
	"approvals":   5,
	"views":       1,
	"downloads":   2,
	"validations": 8,
}

func calculateTotalScore(s models.Scores) int {
	return s.Uploads*scoreWeights["uploads"] +
		s.Approvals*scoreWeights["approvals"] +
		s.Views*scoreWeights["views"] +
		s.Downloads*scoreWeights["downloads"] +
		s.Validations*scoreWeights["validations"]
}

// applyStreak advances streak state for an activity happening at now.
// Same calendar day: unchanged. Next day: increment. Longer gap: reset to 1.
func applyStreak(s models.Streaks, now time.Time) models.Streaks {
	today := truncateToDay(now)

	if s.LastActivityDate == nil {
		s.CurrentStreak = 1
	} else {
		last := truncateToDay(*s.LastActivityDate)
		gap := int(today.Sub(last).Hours() / 24)
		switch {
		case gap == 0:
			// Second activity on the same day, streak unchanged.
		case gap == 1:
			s.CurrentStreak++
		default:
			s.CurrentStreak = 1
		}
	}

	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}
	s.LastActivityDate = &today
	return s
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// rankEntries sorts by total score descending and assigns ranks. Equal totals
// are ordered by entry id so repeated reads yield identical ranks.
func rankEntries(entries []models.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].ID.Hex() < entries[j].ID.Hex()
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}

// incrementScore bumps one counter for one user and recomputes that user's
// total and streaks. Only the affected entry is touched; ranks are assigned
// at read time.
func incrementScore(ctx context.Context, userID primitive.ObjectID, field string) {
	if _, ok := scoreWeights[field]; !ok {
		logrus.Warnf("incrementScore: unknown score field %q", field)
		return
	}

	now := time.Now().UTC()
	after := options.After
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(after)

	var entry models.LeaderboardEntry
	err := leaderboardCollection.FindOneAndUpdate(ctx,
		bson.M{"user": userID},
		bson.M{
			"$inc":         bson.M{"scores." + field: 1},
			"$set":         bson.M{"updatedAt": now},
			"$setOnInsert": bson.M{"user": userID},
		},
		opts,
	).Decode(&entry)
	if err != nil {
		logrus.Errorf("incrementScore: upsert for user %s failed: %v", userID.Hex(), err)
		return
	}

	update := bson.M{
		"totalScore": calculateTotalScore(entry.Scores),
		"streaks":    applyStreak(entry.Streaks, now),
	}

	if entry.Username == "" {
		var user models.User
		if err := userCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err == nil {
			update["username"] = user.Username
		}
	}

	if _, err := leaderboardCollection.UpdateOne(ctx, bson.M{"_id": entry.ID}, bson.M{"$set": update}); err != nil {
		logrus.Errorf("incrementScore: total update for user %s failed: %v", userID.Hex(), err)
	}
}
