package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledgehub/config"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:     "test-secret",
		JWTExpiration: time.Hour,
	}
}

func TestJWTRoundTrip(t *testing.T) {
	cfg := testConfig()

	token, err := GenerateJWT(cfg, "64f0c1a2b3c4d5e6f7a8b9c0", "asha", "Knowledge Champion")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "64f0c1a2b3c4d5e6f7a8b9c0", claims.UserID)
	assert.Equal(t, "asha", claims.Username)
	assert.Equal(t, "Knowledge Champion", claims.Role)
}

func TestValidateJWTWrongSecret(t *testing.T) {
	cfg := testConfig()
	token, err := GenerateJWT(cfg, "64f0c1a2b3c4d5e6f7a8b9c0", "asha", "Consultant")
	require.NoError(t, err)

	other := &config.Config{JWTSecret: "different-secret", JWTExpiration: time.Hour}
	_, err = ValidateJWT(other, token)
	assert.Error(t, err)
}

func TestValidateJWTExpired(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiration: -time.Minute}
	token, err := GenerateJWT(cfg, "64f0c1a2b3c4d5e6f7a8b9c0", "asha", "Consultant")
	require.NoError(t, err)

	_, err = ValidateJWT(cfg, token)
	assert.Error(t, err)
}

func TestValidateJWTGarbage(t *testing.T) {
	_, err := ValidateJWT(testConfig(), "not-a-token")
	assert.Error(t, err)
}
