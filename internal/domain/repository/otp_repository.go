package repository

import (
	"context"
	"time"

	"passwordless/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrOtpChallengeNotFound is returned when no consumable challenge matches
// the lookup. Expired, used, and attempt-exhausted challenges all surface as
// not-found so the caller learns nothing about why.
var ErrOtpChallengeNotFound = errors.New("otp challenge not found")

// OtpChallengeRepository persists one-time code challenges.
type OtpChallengeRepository interface {
	// Create persists a freshly issued challenge.
	Create(ctx context.Context, challenge *entity.OtpChallenge) error

	// FindBySessionID retrieves a consumable challenge by its session handle.
	FindBySessionID(ctx context.Context, sessionID uuid.UUID) (*entity.OtpChallenge, error)

	// FindLatestByDestination retrieves the most recently issued consumable
	// challenge for a destination.
	FindLatestByDestination(ctx context.Context, destination string) (*entity.OtpChallenge, error)

	// FindRecentByDestination retrieves the most recently created unused,
	// unexpired challenge for a destination, for the resend-cooldown guard.
	// A consumed or expired challenge never throttles a fresh issue.
	FindRecentByDestination(ctx context.Context, destination string) (*entity.OtpChallenge, error)

	// Update persists attempt-counter and used-flag mutations.
	Update(ctx context.Context, challenge *entity.OtpChallenge) error

	// IncrementAttempts atomically bumps the attempt counter of a still
	// consumable challenge. Returns ErrOtpChallengeNotFound when the
	// challenge is gone or no longer consumable.
	IncrementAttempts(ctx context.Context, sessionID uuid.UUID) error

	// Consume atomically marks a consumable challenge used. Exactly one of
	// any set of concurrent callers succeeds; the rest get
	// ErrOtpChallengeNotFound.
	Consume(ctx context.Context, sessionID uuid.UUID) error

	// DeleteExpiredBefore removes challenges that expired before the cutoff.
	// Background cleanup only; verification relies on lazy expiry checks.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) error
}
