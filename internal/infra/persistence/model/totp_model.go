package model

import "time"

// TotpEnrollmentModel mirrors the 'totp_enrollments' table. LastUsedStep is
// -1 until the first successful verification.
type TotpEnrollmentModel struct {
	Username     string `gorm:"type:varchar(255);primary_key"`
	Secret       string `gorm:"type:varchar(255);not null"`
	LastUsedStep int64  `gorm:"not null;default:-1"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (TotpEnrollmentModel) TableName() string {
	return "totp_enrollments"
}
