// handlers/leaderboard_handler.go
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"knowledgehub/models"
	"knowledgehub/utils"
)

// GetLeaderboard returns all entries ranked by total score. The read never
// writes: entries are maintained incrementally as scoring events happen, and
// ranks are assigned here in the response.
func GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 12*time.Second)
	defer cancel()

	cursor, err := leaderboardCollection.Find(ctx, bson.M{})
	if err != nil {
		logrus.Errorf("GetLeaderboard - find failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch leaderboard")
		return
	}
	defer cursor.Close(ctx)

	var entries []models.LeaderboardEntry
	if err := cursor.All(ctx, &entries); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode leaderboard")
		return
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}

	rankEntries(entries)

	if topStr := r.URL.Query().Get("top"); topStr != "" {
		if top, err := strconv.Atoi(topStr); err == nil && top > 0 && top < len(entries) {
			entries = entries[:top]
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"leaderboard": entries,
		"count":       len(entries),
	})
}

// GetMyLeaderboardEntry returns the caller's entry with its current rank.
func GetMyLeaderboardEntry(w http.ResponseWriter, r *http.Request) {
	act, ok := actorFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 12*time.Second)
	defer cancel()

	var entry models.LeaderboardEntry
	err := leaderboardCollection.FindOne(ctx, bson.M{"user": act.ID}).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "No leaderboard entry yet")
		} else {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch entry")
		}
		return
	}

	// Rank = 1 + number of entries strictly ahead (higher total, or equal
	// total with a lower id).
	ahead, err := leaderboardCollection.CountDocuments(ctx, bson.M{"$or": []bson.M{
		{"totalScore": bson.M{"$gt": entry.TotalScore}},
		{"totalScore": entry.TotalScore, "_id": bson.M{"$lt": entry.ID}},
	}})
	if err == nil {
		entry.Rank = int(ahead) + 1
	}

	utils.RespondWithJSON(w, http.StatusOK, entry)
}
