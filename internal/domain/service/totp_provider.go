package service

import "time"

// TotpProvisioning is the material handed back to an enrolling client.
type TotpProvisioning struct {
	Secret string
	URI    string
}

// TotpProvider wraps the RFC 6238 math. Secrets are opaque base32 strings;
// steps are the counter values used for monotonic replay checks.
type TotpProvider interface {
	// Enroll generates a fresh shared secret and the otpauth:// provisioning
	// URI for the given account name.
	Enroll(username string) (*TotpProvisioning, error)

	// MatchStep checks the code against the secret across the configured skew
	// window around now. On success it returns the matched step so the caller
	// can enforce that each step is accepted at most once.
	MatchStep(secret, code string, now time.Time) (step int64, ok bool, err error)
}
