package entity

import "time"

// WebAuthnCredential is an authenticator public key registered for a
// principal. The signature counter is the replay defense: a successful
// authentication must present a counter strictly greater than the stored
// one, except for authenticators that never report a counter (both zero).
type WebAuthnCredential struct {
	CredentialID    string    // Authenticator-supplied identifier, base64url, unique.
	Username        string    // Principal this credential belongs to.
	PublicKey       []byte    // COSE public key material from the registration ceremony.
	AttestationType string    // Attestation conveyance recorded at registration.
	Transports      []string  // Transport hints (usb, nfc, ble, internal).
	SignCount       uint32    // Monotonic signature counter; zero means counter-less.
	UserVerified    bool      // Whether the authenticator performed user verification.
	BackupEligible  bool      // Whether the credential may be synced across devices.
	BackedUp        bool      // Whether the credential is currently backed up.
	LastUsedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
