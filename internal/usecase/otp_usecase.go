// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// IssueOtpInput defines the data required to issue a one-time code.
type IssueOtpInput struct {
	Destination string
}

// --- Output DTOs ---

// IssueOtpOutput returns the public handle of the created challenge. The
// code itself travels only through the delivery transport.
type IssueOtpOutput struct {
	SessionID uuid.UUID
	ExpiresAt time.Time
}

// OtpUsecase defines the interface for one-time code challenge operations.
// Verification is part of the login flow in AuthUsecase.
type OtpUsecase interface {
	// IssueChallenge generates a code, stores its hash, and hands the
	// plaintext to the delivery transport. Re-requesting within the resend
	// cooldown fails with ErrOtpResendThrottled.
	IssueChallenge(ctx context.Context, input IssueOtpInput) (*IssueOtpOutput, error)

	// CleanupExpired removes challenges that expired before now minus the
	// retention window. Intended for a background sweeper.
	CleanupExpired(ctx context.Context) error
}
