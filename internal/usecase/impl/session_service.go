package impl

import (
	"context"
	"log/slog"

	deliverycontext "passwordless/internal/delivery/context"
	"passwordless/internal/domain/entity"
	domainerrors "passwordless/internal/domain/errors"
	"passwordless/internal/domain/repository"
	"passwordless/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	refreshTokenRepo repository.RefreshTokenRepository
	logger           *slog.Logger
}

// SessionServiceParams holds dependencies for sessionService, injected by Fx.
type SessionServiceParams struct {
	fx.In

	RefreshTokenRepo repository.RefreshTokenRepository
	Logger           *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	return &sessionService{
		refreshTokenRepo: params.RefreshTokenRepo,
		logger:           params.Logger,
	}
}

func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetActiveSessions returns the account's active sessions, newest first.
func (srv *sessionService) GetActiveSessions(ctx context.Context, accountID uuid.UUID) ([]*entity.RefreshToken, error) {
	sessions, err := srv.refreshTokenRepo.FindActiveByAccountID(ctx, accountID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list active sessions")
	}

	return sessions, nil
}

// RevokeSession invalidates one session after checking ownership.
func (srv *sessionService) RevokeSession(ctx context.Context, accountID, sessionID uuid.UUID) error {
	sessions, err := srv.refreshTokenRepo.FindActiveByAccountID(ctx, accountID)
	if err != nil {
		return errors.Wrap(err, "failed to list active sessions")
	}

	for _, session := range sessions {
		if session.ID == sessionID {
			if err := srv.refreshTokenRepo.Revoke(ctx, sessionID); err != nil &&
				!errors.Is(err, repository.ErrRefreshTokenNotFound) {
				return errors.Wrap(err, "failed to revoke session")
			}
			srv.log(ctx).Info("Session revoked",
				slog.Any("accountID", accountID), slog.Any("sessionID", sessionID))

			return nil
		}
	}

	return domainerrors.ErrNotFound.WrapMessage("session not found for this account")
}

// RevokeAllSessions invalidates every active session for the account.
func (srv *sessionService) RevokeAllSessions(ctx context.Context, accountID uuid.UUID) error {
	if err := srv.refreshTokenRepo.RevokeAllByAccountID(ctx, accountID); err != nil {
		return errors.Wrap(err, "failed to revoke account sessions")
	}

	srv.log(ctx).Info("All sessions revoked", slog.Any("accountID", accountID))

	return nil
}
