package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pavangundu/ai-helper/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	config.AppConfig = &config.Config{JWTSecret: "test_secret_key_12345"}

	token, err := GenerateToken("profile-1")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "profile-1", claims.ProfileID)
	assert.NotEmpty(t, claims.GetJTI())
	assert.False(t, claims.GetExpiresAt().IsZero())
}

func TestValidateTokenRejectsOtherSecret(t *testing.T) {
	config.AppConfig = &config.Config{JWTSecret: "first"}
	token, err := GenerateToken("profile-1")
	require.NoError(t, err)

	config.AppConfig = &config.Config{JWTSecret: "second"}
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestEmptySecretIsRejected(t *testing.T) {
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		ProfileID: "victim-id",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := forged.SignedString([]byte(""))
	require.NoError(t, err)

	config.AppConfig = &config.Config{}
	_, err = ValidateToken(signed)
	assert.ErrorIs(t, err, ErrNoSecret)
	_, err = GenerateToken("profile-1")
	assert.ErrorIs(t, err, ErrNoSecret)

	config.AppConfig = nil
	_, err = ValidateToken(signed)
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Backend Developer", CleanText("  <b>Backend</b> Developer ", 50))
	assert.Equal(t, "Pyth", CleanText("Python", 4))
	assert.Equal(t, "a@b.com", NormalizeEmail(" A@B.com "))
}

func TestIsUUID(t *testing.T) {
	assert.True(t, IsUUID(GenerateID()))
	assert.False(t, IsUUID("not-a-uuid"))
}
