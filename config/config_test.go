package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "knowledgehub", cfg.DatabaseName)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration)
	assert.InDelta(t, 0.85, cfg.DuplicateThreshold, 0.0001)
	assert.Equal(t, 100, cfg.MaxPageSize)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_NAME", "knowledgehub_test")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("DUPLICATE_THRESHOLD", "0.6")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "knowledgehub_test", cfg.DatabaseName)
	assert.Equal(t, "env-secret", cfg.JWTSecret)
	assert.InDelta(t, 0.6, cfg.DuplicateThreshold, 0.0001)
}
