package auth

import (
	"testing"

	"campustalk_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	config.AppConfig = &config.Config{}
	config.AppConfig.JWT.Secret = "test-secret"
	config.AppConfig.JWT.TTL = 60

	token, err := GenerateToken("u1")
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	config.AppConfig = &config.Config{}
	config.AppConfig.JWT.Secret = "test-secret"

	_, err := ParseToken("not-a-token")
	assert.Error(t, err)

	// A token signed with a different secret fails verification.
	token, err := GenerateToken("u1")
	require.NoError(t, err)
	config.AppConfig.JWT.Secret = "rotated"
	_, err = ParseToken(token)
	assert.Error(t, err)
}
