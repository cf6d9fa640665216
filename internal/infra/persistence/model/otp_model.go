package model

import (
	"time"

	"github.com/google/uuid"
)

// OtpChallengeModel mirrors the 'otp_challenges' table. Codes are stored
// hashed; the session id is the public handle clients verify against.
type OtpChallengeModel struct {
	SessionID   uuid.UUID `gorm:"type:uuid;primary_key"`
	Destination string    `gorm:"type:varchar(255);not null;index"`
	CodeHash    string    `gorm:"type:varchar(255);not null"`
	Attempts    int       `gorm:"not null;default:0"`
	MaxAttempts int       `gorm:"not null"`
	Used        bool      `gorm:"not null;default:false"`
	ExpiresAt   time.Time `gorm:"not null;index"`
	LastSentAt  time.Time `gorm:"not null"`
	CreatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (OtpChallengeModel) TableName() string {
	return "otp_challenges"
}
