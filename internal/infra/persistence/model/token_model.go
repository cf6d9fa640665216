package model

import (
	"time"

	"github.com/google/uuid"
)

// RefreshTokenModel mirrors the 'refresh_tokens' table. Rows are looked up
// by the SHA-256 hash of the presented token; ParentTokenID records the
// rotation chain.
type RefreshTokenModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	AccountID     uuid.UUID `gorm:"type:uuid;not null;index"`
	TokenHash     string    `gorm:"type:varchar(64);unique;not null"`
	ParentTokenID *uuid.UUID `gorm:"type:uuid"`
	Revoked       bool      `gorm:"not null;default:false"`
	ExpiresAt     time.Time `gorm:"not null"`
	IPAddress     string    `gorm:"type:varchar(45)"`
	UserAgent     string    `gorm:"type:varchar(512)"`
	CreatedAt     time.Time
}

// TableName explicitly sets the table name for GORM.
func (RefreshTokenModel) TableName() string {
	return "refresh_tokens"
}
