package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() JWTConfig {
	return JWTConfig{
		AccessKey:     "access-secret",
		RefreshKey:    "refresh-secret",
		AccessExpire:  15 * time.Minute,
		RefreshExpire: 24 * time.Hour,
	}
}

func TestGenerateAndExtractTokens(t *testing.T) {
	cfg := testConfig()

	tokens, err := GenerateTokens(cfg, "42", false)
	require.NoError(t, err)
	require.NotEmpty(t, tokens.Access)
	require.NotEmpty(t, tokens.Refresh)

	claims, err := CheckAndExtractTokenMetadata(tokens.Access, cfg.AccessKey)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Id)
	assert.False(t, claims.Otp)
	assert.Greater(t, claims.Exp, time.Now().Unix())

	refresh, err := CheckAndExtractTokenMetadata(tokens.Refresh, cfg.RefreshKey)
	require.NoError(t, err)
	assert.Equal(t, "42", refresh.Id)
}

func TestExtractRejectsWrongKey(t *testing.T) {
	cfg := testConfig()

	tokens, err := GenerateTokens(cfg, "42", true)
	require.NoError(t, err)

	_, err = CheckAndExtractTokenMetadata(tokens.Access, "some-other-key")
	assert.Error(t, err)

	// Access tokens do not validate against the refresh key either.
	_, err = CheckAndExtractTokenMetadata(tokens.Access, cfg.RefreshKey)
	assert.Error(t, err)
}

func TestOtpFlagRoundTrips(t *testing.T) {
	cfg := testConfig()

	tokens, err := GenerateTokens(cfg, "7", true)
	require.NoError(t, err)

	claims, err := CheckAndExtractTokenMetadata(tokens.Access, cfg.AccessKey)
	require.NoError(t, err)
	assert.True(t, claims.Otp)
}
