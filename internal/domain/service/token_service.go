package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Token kind discriminators carried in the "type" claim. Callers enforce
// kind: an access token presented where a refresh token is expected is
// rejected by the use case, not by the signer.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Verification errors. ErrTokenExpired means the token was well-formed and
// correctly signed but past expiry; everything else is ErrTokenInvalid.
var (
	ErrTokenInvalid = errors.New("token is malformed or has an invalid signature")
	ErrTokenExpired = errors.New("token has expired")
)

// Claims defines the custom claims for the issued JWTs.
type Claims struct {
	AccountID uuid.UUID
	Email     string
	TokenType string
	jwt.RegisteredClaims
}

// TokenService signs and verifies the self-contained bearer tokens.
// The signing keypair lives for the process lifetime; the public key may be
// distributed for offline verification.
type TokenService interface {
	// IssueAccessToken mints a short-lived access token carrying the account
	// id and non-secret profile claims.
	IssueAccessToken(accountID uuid.UUID, email string) (string, error)

	// IssueRefreshToken mints a longer-lived refresh token carrying only the
	// account id.
	IssueRefreshToken(accountID uuid.UUID) (string, error)

	// ValidateToken checks signature and structure, returning the parsed
	// claims. Fails with ErrTokenExpired or ErrTokenInvalid.
	ValidateToken(tokenString string) (*Claims, error)

	// HashToken returns the hex SHA-256 digest used to look tokens up in the
	// ledger. The input already has full JWT entropy; no slow hashing needed.
	HashToken(token string) string

	// AccessTokenTTL returns the configured access token lifetime.
	AccessTokenTTL() time.Duration

	// RefreshTokenTTL returns the configured refresh token lifetime.
	RefreshTokenTTL() time.Duration
}
