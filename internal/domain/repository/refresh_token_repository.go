package repository

import (
	"context"

	"passwordless/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for refresh token persistence.
var (
	// ErrRefreshTokenNotFound is returned when no active record matches the hash.
	// Revoked records surface as not-found: redeeming a rotated token must
	// fail the same way as redeeming one that never existed.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	// ErrRefreshTokenExpired is returned when the matching record is past expiry.
	ErrRefreshTokenExpired = errors.New("refresh token has expired")
)

// RefreshTokenRepository is the ledger of issued refresh tokens. Records are
// retained after revocation for audit rather than hard-deleted.
type RefreshTokenRepository interface {
	// Create persists a new refresh token record.
	Create(ctx context.Context, token *entity.RefreshToken) error

	// FindActiveByHash retrieves the active (non-revoked) record for a token
	// hash. Expired records are reported with ErrRefreshTokenExpired so the
	// caller can opportunistically revoke them.
	FindActiveByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error)

	// Revoke marks an active record revoked by its ID. Returns
	// ErrRefreshTokenNotFound when the record is absent or already revoked,
	// so concurrent redeemers of the same token race for a single winner.
	Revoke(ctx context.Context, id uuid.UUID) error

	// RevokeByHash marks the active record for a hash revoked. No-ops when
	// absent or already revoked.
	RevokeByHash(ctx context.Context, tokenHash string) error

	// RevokeAllByAccountID marks every active record for the account revoked
	// ("log out everywhere").
	RevokeAllByAccountID(ctx context.Context, accountID uuid.UUID) error

	// FindActiveByAccountID retrieves all active records for an account.
	FindActiveByAccountID(ctx context.Context, accountID uuid.UUID) ([]*entity.RefreshToken, error)

	// CountActiveByAccountID returns the number of active sessions for an account.
	CountActiveByAccountID(ctx context.Context, accountID uuid.UUID) (int, error)
}
