package repository

import (
	"context"

	"passwordless/internal/domain/entity"

	"github.com/pkg/errors"
)

// ErrTotpNotEnrolled is returned when the principal has no enrolled secret.
var ErrTotpNotEnrolled = errors.New("totp enrollment not found")

// ErrTotpStepRegression is returned when a conditional step advance loses
// to a concurrent verification that already accepted the same or a later step.
var ErrTotpStepRegression = errors.New("totp step already used")

// TotpRepository persists authenticator-app enrollments.
type TotpRepository interface {
	// Upsert creates or overwrites the enrollment for a principal,
	// resetting the last-used step.
	Upsert(ctx context.Context, enrollment *entity.TotpEnrollment) error

	// FindByUsername retrieves the enrollment for a principal.
	FindByUsername(ctx context.Context, username string) (*entity.TotpEnrollment, error)

	// AdvanceLastUsedStep moves the last-used step forward, guarded so the
	// stored value only ever increases. Returns ErrTotpStepRegression when a
	// concurrent verification already advanced past the given step.
	AdvanceLastUsedStep(ctx context.Context, username string, step int64) error
}
