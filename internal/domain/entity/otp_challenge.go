package entity

import (
	"time"

	"github.com/google/uuid"
)

// OtpChallenge represents a one-time code sent to a destination (email or
// phone). The code itself is stored only as a bcrypt hash; the plaintext
// exists solely in the delivery message.
type OtpChallenge struct {
	SessionID   uuid.UUID // Opaque handle returned to the caller for verification.
	Destination string    // Where the code was sent. Not unique; history is kept.
	CodeHash    string    // bcrypt hash of the code. The plaintext is never persisted.
	Attempts    int       // Failed verification attempts consumed so far.
	MaxAttempts int       // Attempt budget; reaching it invalidates the challenge.
	Used        bool      // Set once a verification succeeds; challenges are single-use.
	ExpiresAt   time.Time // Hard expiry regardless of attempts.
	LastSentAt  time.Time // Drives the resend-cooldown guard per destination.
	CreatedAt   time.Time // Timestamp of issuance.
}

// IsConsumable reports whether the challenge can still accept a verification
// attempt: not used, not expired, and under the attempt budget.
func (c *OtpChallenge) IsConsumable(now time.Time) bool {
	return !c.Used && c.Attempts < c.MaxAttempts && c.ExpiresAt.After(now)
}
