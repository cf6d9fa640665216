// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// MfaMethod identifies which verification method an account prefers for login.
type MfaMethod string

const (
	// MfaMethodOtp is a one-time code delivered to the account's email or phone.
	MfaMethodOtp MfaMethod = "otp"
	// MfaMethodTotp is a time-based code from an enrolled authenticator app.
	MfaMethodTotp MfaMethod = "totp"
	// MfaMethodWebAuthn is a FIDO2 hardware or platform authenticator assertion.
	MfaMethodWebAuthn MfaMethod = "webauthn"
)

// Account is the core identity in the system. It carries the lockout
// bookkeeping that the login flow mutates on every verification attempt.
type Account struct {
	ID                  uuid.UUID  // The unique identifier for the account.
	Email               string     // Primary contact address, used as the login identifier.
	Phone               string     // Optional phone destination for OTP delivery.
	PreferredMfa        MfaMethod  // The verification method this account prefers.
	FailedLoginAttempts int        // Consecutive failed verifications since the last success.
	LockedUntil         *time.Time // When set and in the future, login attempts are refused.
	LastLoginAt         *time.Time // Timestamp of the most recent successful login.
	LastLoginIP         string     // Origin address of the most recent successful login.
	CreatedAt           time.Time  // Timestamp of account creation.
	UpdatedAt           time.Time  // Timestamp of the last modification.
}

// IsLocked reports whether the account is currently suspended from
// authentication attempts.
func (a *Account) IsLocked(now time.Time) bool {
	return a.LockedUntil != nil && a.LockedUntil.After(now)
}
