package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()

	signed, expiresAt, err := GenerateToken(userID, 42, "sam@example.com", "user", "test-secret", "wealth_service", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, signed)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := ValidateToken(signed, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, int64(42), claims.ClientID)
	assert.Equal(t, "sam@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, "wealth_service", claims.Issuer)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	signed, _, err := GenerateToken(uuid.New(), 1, "a@b.c", "user", "right-secret", "wealth_service", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(signed, "wrong-secret")
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	signed, _, err := GenerateToken(uuid.New(), 1, "a@b.c", "user", "secret", "wealth_service", -time.Minute)
	require.NoError(t, err)

	claims, err := ValidateToken(signed, "secret")
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	claims, err := ValidateToken("not.a.token", "secret")
	assert.Error(t, err)
	assert.Nil(t, claims)
}
