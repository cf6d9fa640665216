package auth

import (
	"testing"
	"time"

	"passwordless/config"
	"passwordless/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig(accessTTL, refreshTTL time.Duration) *config.Config {
	return &config.Config{
		JWT: &config.JWTConfig{
			Issuer:          "passwordless-test",
			AccessTokenTTL:  accessTTL,
			RefreshTokenTTL: refreshTTL,
		},
	}
}

func TestJWTService_IssueAndValidateTokens(t *testing.T) {
	jwtService, err := NewJWTService(testJWTConfig(15*time.Minute, 30*24*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, jwtService)

	accountID := uuid.New()

	accessToken, err := jwtService.IssueAccessToken(accountID, "alice@example.com")
	assert.NoError(t, err)
	assert.NotEmpty(t, accessToken)

	refreshToken, err := jwtService.IssueRefreshToken(accountID)
	assert.NoError(t, err)
	assert.NotEmpty(t, refreshToken)

	// Validate access token
	accessClaims, err := jwtService.ValidateToken(accessToken)
	assert.NoError(t, err)
	assert.NotNil(t, accessClaims)
	assert.Equal(t, accountID, accessClaims.AccountID)
	assert.Equal(t, "alice@example.com", accessClaims.Email)
	assert.Equal(t, service.TokenTypeAccess, accessClaims.TokenType)
	assert.Equal(t, "passwordless-test", accessClaims.Issuer)

	// Validate refresh token
	refreshClaims, err := jwtService.ValidateToken(refreshToken)
	assert.NoError(t, err)
	assert.NotNil(t, refreshClaims)
	assert.Equal(t, accountID, refreshClaims.AccountID)
	assert.Empty(t, refreshClaims.Email) // Refresh tokens carry no profile claims
	assert.Equal(t, service.TokenTypeRefresh, refreshClaims.TokenType)
}

func TestJWTService_InvalidToken(t *testing.T) {
	jwtService, err := NewJWTService(testJWTConfig(15*time.Minute, 30*24*time.Hour))
	require.NoError(t, err)

	claims, err := jwtService.ValidateToken("clearly-not-a-jwt-token-format")
	assert.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, service.ErrTokenInvalid)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	jwtService, err := NewJWTService(testJWTConfig(-time.Minute, 30*24*time.Hour))
	require.NoError(t, err)

	token, err := jwtService.IssueAccessToken(uuid.New(), "alice@example.com")
	require.NoError(t, err)

	claims, err := jwtService.ValidateToken(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, service.ErrTokenExpired)
}

func TestJWTService_RejectsForeignSignature(t *testing.T) {
	// Tokens signed by one process must not validate on another keypair.
	first, err := NewJWTService(testJWTConfig(15*time.Minute, 30*24*time.Hour))
	require.NoError(t, err)
	second, err := NewJWTService(testJWTConfig(15*time.Minute, 30*24*time.Hour))
	require.NoError(t, err)

	token, err := first.IssueAccessToken(uuid.New(), "alice@example.com")
	require.NoError(t, err)

	claims, err := second.ValidateToken(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, service.ErrTokenInvalid)
}

func TestJWTService_HashTokenIsStable(t *testing.T) {
	jwtService, err := NewJWTService(testJWTConfig(15*time.Minute, 30*24*time.Hour))
	require.NoError(t, err)

	hash := jwtService.HashToken("some-token")
	assert.Len(t, hash, 64) // hex SHA-256
	assert.Equal(t, hash, jwtService.HashToken("some-token"))
	assert.NotEqual(t, hash, jwtService.HashToken("another-token"))
}

func TestJWTService_MissingConfig(t *testing.T) {
	jwtService, err := NewJWTService(&config.Config{})
	assert.Error(t, err)
	assert.Nil(t, jwtService)
	assert.Contains(t, err.Error(), "jwt config must be provided")
}
