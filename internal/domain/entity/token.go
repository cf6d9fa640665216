package entity

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is the persisted side of an issued refresh token. Only a
// SHA-256 hash of the plaintext is stored; the plaintext belongs to the
// caller from the moment of issuance.
type RefreshToken struct {
	ID            uuid.UUID  // The unique ID for this token record.
	AccountID     uuid.UUID  // The account this session belongs to.
	TokenHash     string     // Hex SHA-256 of the raw refresh token.
	ParentTokenID *uuid.UUID // Lineage pointer to the record this token rotated from, if any.
	Revoked       bool       // Terminal: set on rotation, explicit revoke, or lazy expiry detection.
	ExpiresAt     time.Time  // Hard expiry, checked lazily on use.
	IPAddress     string     // Origin address captured at issuance.
	UserAgent     string     // Client string captured at issuance.
	CreatedAt     time.Time  // Timestamp of issuance.
}

// TokenPair is what a successful login or refresh returns to the caller.
// The shape is fixed by the API contract: bearer access token, its TTL in
// seconds, and the rotating refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	TokenType    string `json:"tokenType"`
}
