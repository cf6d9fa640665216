package entity

import "time"

// TotpStepNone is the sentinel for "no time step accepted yet".
const TotpStepNone int64 = -1

// TotpEnrollment stores the shared secret for authenticator-app codes.
// LastUsedStep only ever moves forward; a code for a step at or below it is
// a replay and must be rejected even while still inside the skew window.
type TotpEnrollment struct {
	Username     string    // Principal identifier; one enrollment per principal.
	Secret       string    // Base32-encoded shared secret for provisioning URIs.
	LastUsedStep int64     // Highest time step that has produced a successful verification.
	CreatedAt    time.Time // Timestamp of enrollment. Re-enrollment overwrites the record.
	UpdatedAt    time.Time // Timestamp of the last successful verification.
}
