package model

import (
	"time"

	"github.com/google/uuid"
)

// RegisteredAppModel mirrors the 'registered_apps' table. API keys are
// stored hashed; the plaintext is shown once at registration.
type RegisteredAppModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Name               string    `gorm:"type:varchar(255);unique;not null"`
	Description        string    `gorm:"type:varchar(1024)"`
	APIKeyHash         string    `gorm:"type:varchar(64);unique;not null"`
	Active             bool      `gorm:"not null;default:true"`
	RateLimitPerMinute int       `gorm:"not null"`
	RateLimitPerHour   int       `gorm:"not null"`
	LastUsedAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName explicitly sets the table name for GORM.
func (RegisteredAppModel) TableName() string {
	return "registered_apps"
}

// AuditEventModel mirrors the 'audit_events' table.
type AuditEventModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	AppID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Operation string    `gorm:"type:varchar(100);not null"`
	Subject   string    `gorm:"type:varchar(255)"`
	Outcome   string    `gorm:"type:varchar(20);not null"`
	IPAddress string    `gorm:"type:varchar(45)"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (AuditEventModel) TableName() string {
	return "audit_events"
}
