package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"knowledgehub/models"
)

func TestCalculateTotalScore(t *testing.T) {
	tests := []struct {
		name   string
		scores models.Scores
		want   int
	}{
		{"zero", models.Scores{}, 0},
		{"single upload", models.Scores{Uploads: 1}, 10},
		{"single approval", models.Scores{Approvals: 1}, 5},
		{"single view", models.Scores{Views: 1}, 1},
		{"single download", models.Scores{Downloads: 1}, 2},
		{"single validation", models.Scores{Validations: 1}, 8},
		{
			"mixed",
			models.Scores{Uploads: 3, Approvals: 2, Views: 15, Downloads: 4, Validations: 5},
			3*10 + 2*5 + 15*1 + 4*2 + 5*8,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calculateTotalScore(tt.scores))
		})
	}
}

func TestApplyStreak(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	day := func(offset int) *time.Time {
		d := now.AddDate(0, 0, offset)
		return &d
	}

	tests := []struct {
		name        string
		in          models.Streaks
		wantCurrent int
		wantLongest int
	}{
		{"first activity", models.Streaks{}, 1, 1},
		{
			"same day keeps streak",
			models.Streaks{CurrentStreak: 4, LongestStreak: 6, LastActivityDate: day(0)},
			4, 6,
		},
		{
			"next day increments",
			models.Streaks{CurrentStreak: 4, LongestStreak: 6, LastActivityDate: day(-1)},
			5, 6,
		},
		{
			"next day sets new longest",
			models.Streaks{CurrentStreak: 6, LongestStreak: 6, LastActivityDate: day(-1)},
			7, 7,
		},
		{
			"two day gap resets",
			models.Streaks{CurrentStreak: 9, LongestStreak: 9, LastActivityDate: day(-2)},
			1, 9,
		},
		{
			"long gap resets",
			models.Streaks{CurrentStreak: 3, LongestStreak: 5, LastActivityDate: day(-30)},
			1, 5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applyStreak(tt.in, now)
			assert.Equal(t, tt.wantCurrent, got.CurrentStreak)
			assert.Equal(t, tt.wantLongest, got.LongestStreak)
			if assert.NotNil(t, got.LastActivityDate) {
				assert.Equal(t, truncateToDay(now), *got.LastActivityDate)
			}
		})
	}
}

func TestApplyStreakSameDayTwice(t *testing.T) {
	morning := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)

	s := applyStreak(models.Streaks{}, morning)
	s = applyStreak(s, evening)

	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, 1, s.LongestStreak)
}

func TestRankEntries(t *testing.T) {
	idA := primitive.NewObjectID()
	idB := primitive.NewObjectID()
	idC := primitive.NewObjectID()

	entries := []models.LeaderboardEntry{
		{ID: idA, TotalScore: 50},
		{ID: idB, TotalScore: 120},
		{ID: idC, TotalScore: 80},
	}

	rankEntries(entries)

	assert.Equal(t, idB, entries[0].ID)
	assert.Equal(t, idC, entries[1].ID)
	assert.Equal(t, idA, entries[2].ID)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
	}
}

func TestRankEntriesTieBreakByID(t *testing.T) {
	low := primitive.NewObjectID()
	high := primitive.NewObjectID()
	if low.Hex() > high.Hex() {
		low, high = high, low
	}

	entries := []models.LeaderboardEntry{
		{ID: high, TotalScore: 40},
		{ID: low, TotalScore: 40},
	}
	rankEntries(entries)

	assert.Equal(t, low, entries[0].ID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, high, entries[1].ID)
	assert.Equal(t, 2, entries[1].Rank)

	// Ranking again must not change anything.
	before := make([]models.LeaderboardEntry, len(entries))
	copy(before, entries)
	rankEntries(entries)
	assert.Equal(t, before, entries)
}

func TestScoreWeights(t *testing.T) {
	assert.Equal(t, 10, scoreWeights["uploads"])
	assert.Equal(t, 5, scoreWeights["approvals"])
	assert.Equal(t, 1, scoreWeights["views"])
	assert.Equal(t, 2, scoreWeights["downloads"])
	assert.Equal(t, 8, scoreWeights["validations"])
}
