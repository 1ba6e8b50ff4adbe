// internal/pkg/auth/jwt_test.go
package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/pos-backend/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "pos-test"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-key-that-is-long-enough-1",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: 4},
	}
}

func TestJWTRoundTrip(t *testing.T) {
	manager := NewJWTManager(testConfig())

	token, err := manager.GenerateAccessToken(42, "cashier", true)
	require.NoError(t, err)

	claims, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "cashier", claims.Username)
	assert.True(t, claims.IsAdmin)
}

func TestJWTTokenTypeEnforced(t *testing.T) {
	manager := NewJWTManager(testConfig())

	refresh, err := manager.GenerateRefreshToken(42, "cashier")
	require.NoError(t, err)

	_, err = manager.ValidateAccessToken(refresh)
	assert.Error(t, err)

	claims, err := manager.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin) // Admin status is never carried in refresh tokens
}

func TestJWTRejectsTampering(t *testing.T) {
	manager := NewJWTManager(testConfig())

	token, err := manager.GenerateAccessToken(1, "cashier", false)
	require.NoError(t, err)

	otherCfg := testConfig()
	otherCfg.JWT.Secret = "a-completely-different-secret-key-123"
	other := NewJWTManager(otherCfg)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Equal(t, "abc", ExtractTokenFromHeader("bearer abc"))
	assert.Equal(t, "", ExtractTokenFromHeader("abc"))
	assert.Equal(t, "", ExtractTokenFromHeader(""))
	assert.Equal(t, "", ExtractTokenFromHeader("Basic abc"))
}

func TestPasswordManager(t *testing.T) {
	manager := NewPasswordManager(testConfig())

	hash, err := manager.HashPassword("Secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret123", hash)

	assert.NoError(t, manager.VerifyPassword("Secret123", hash))
	assert.Error(t, manager.VerifyPassword("Wrong999", hash))

	// Strength rules
	assert.Error(t, manager.ValidatePassword("short"))
	assert.Error(t, manager.ValidatePassword("alllowercase1"))
	assert.Error(t, manager.ValidatePassword("ALLUPPERCASE1"))
	assert.Error(t, manager.ValidatePassword("NoNumbersHere"))
	assert.NoError(t, manager.ValidatePassword("Secret123"))
}
