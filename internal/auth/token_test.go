package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helli-it/support-tracker/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 30)
	user := &domain.User{ID: "user-001", Role: domain.RoleOperator}

	token, expiresAt, err := tm.GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, time.Minute)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-001", claims.UserID)
	assert.Equal(t, domain.RoleOperator, claims.Role)
}

func TestTokenWrongSecretRejected(t *testing.T) {
	tm := NewTokenManager("secret-a", 30)
	token, _, err := tm.GenerateToken(&domain.User{ID: "u", Role: domain.RoleAdmin})
	require.NoError(t, err)

	other := NewTokenManager("secret-b", 30)
	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "s3cret"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}
