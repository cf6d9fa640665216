package model

import "time"

// WebAuthnCredentialModel mirrors the 'webauthn_credentials' table. The
// credential id is the authenticator-assigned handle, base64url encoded.
// Transports is a comma-separated list.
type WebAuthnCredentialModel struct {
	CredentialID    string `gorm:"type:varchar(512);primary_key"`
	Username        string `gorm:"type:varchar(255);not null;index"`
	PublicKey       []byte `gorm:"type:bytea;not null"`
	AttestationType string `gorm:"type:varchar(50)"`
	Transports      string `gorm:"type:varchar(255)"`
	SignCount       uint32 `gorm:"not null;default:0"`
	UserVerified    bool   `gorm:"not null;default:false"`
	BackupEligible  bool   `gorm:"not null;default:false"`
	BackedUp        bool   `gorm:"not null;default:false"`
	LastUsedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName explicitly sets the table name for GORM.
func (WebAuthnCredentialModel) TableName() string {
	return "webauthn_credentials"
}
