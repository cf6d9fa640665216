package usecase

import (
	"context"

	"github.com/google/uuid"

	"passwordless/internal/domain/entity"
)

// SessionUsecase defines the interface for managing an account's active
// refresh-token sessions.
type SessionUsecase interface {
	// GetActiveSessions returns the account's active sessions, newest first.
	GetActiveSessions(ctx context.Context, accountID uuid.UUID) ([]*entity.RefreshToken, error)

	// RevokeSession invalidates one session by its ledger ID. The session
	// must belong to the account.
	RevokeSession(ctx context.Context, accountID, sessionID uuid.UUID) error

	// RevokeAllSessions invalidates every active session for the account.
	RevokeAllSessions(ctx context.Context, accountID uuid.UUID) error
}
