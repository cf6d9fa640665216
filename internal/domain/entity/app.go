package entity

import (
	"time"

	"github.com/google/uuid"
)

// RegisteredApp is an API caller. The API key is returned exactly once at
// registration time; only its SHA-256 hash is persisted. The per-window
// rate caps feed the admission-control limiter.
type RegisteredApp struct {
	ID                 uuid.UUID
	Name               string // Unique, human-readable caller name.
	Description        string
	APIKey             string // Plaintext key, populated only on the registration response.
	APIKeyHash         string // Hex SHA-256 of the key; the lookup index for callers.
	Active             bool
	RateLimitPerMinute int // Short-window bucket capacity.
	RateLimitPerHour   int // Long-window bucket capacity.
	LastUsedAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// AuditEvent records one authenticated API call. Events are append-only and
// retained for review rather than hard-deleted.
type AuditEvent struct {
	ID        uuid.UUID
	AppID     uuid.UUID // The registered app that made the call.
	Operation string    // e.g. "otp.send", "auth.login.totp".
	Subject   string    // Destination or principal the call concerned, if any.
	Outcome   string    // "allowed", "denied", "success", "failure".
	IPAddress string
	CreatedAt time.Time
}
