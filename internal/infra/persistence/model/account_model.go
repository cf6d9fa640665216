package model

import (
	"time"

	"github.com/google/uuid"
)

// AccountModel mirrors the 'accounts' table. Lockout state lives on the row
// so concurrent verification attempts share one counter.
type AccountModel struct {
	ID                  uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Email               string    `gorm:"type:varchar(255);unique;not null"`
	Phone               string    `gorm:"type:varchar(50);index"`
	PreferredMfa        string    `gorm:"type:varchar(20);not null;default:'otp'"`
	FailedLoginAttempts int       `gorm:"not null;default:0"`
	LockedUntil         *time.Time
	LastLoginAt         *time.Time
	LastLoginIP         string `gorm:"type:varchar(45)"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TableName explicitly sets the table name for GORM.
func (AccountModel) TableName() string {
	return "accounts"
}
