// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	"passwordless/config"
	deliverycontext "passwordless/internal/delivery/context"
	"passwordless/internal/domain/entity"
	domainerrors "passwordless/internal/domain/errors"
	"passwordless/internal/domain/repository"
	"passwordless/internal/domain/service"
	"passwordless/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	defaultOtpTTL         = 5 * time.Minute
	defaultOtpCooldown    = time.Minute
	defaultOtpMaxAttempts = 3
	// Expired challenges are kept around for a day before the sweeper
	// deletes them, to support abuse investigations.
	otpRetention = 24 * time.Hour
)

// otpService implements the OtpUsecase interface.
type otpService struct {
	otpRepo     repository.OtpChallengeRepository
	generator   service.OtpGenerator
	hasher      service.CodeHasher
	sender      service.OtpSender
	ttl         time.Duration
	cooldown    time.Duration
	maxAttempts int
	logger      *slog.Logger
}

// OtpServiceParams holds dependencies for otpService, injected by Fx.
type OtpServiceParams struct {
	fx.In

	OtpRepo   repository.OtpChallengeRepository
	Generator service.OtpGenerator
	Hasher    service.CodeHasher
	Sender    service.OtpSender
	Config    *config.Config
	Logger    *slog.Logger
}

// NewOtpService is the constructor for otpService.
func NewOtpService(params OtpServiceParams) usecase.OtpUsecase {
	ttl := defaultOtpTTL
	cooldown := defaultOtpCooldown
	maxAttempts := defaultOtpMaxAttempts
	if params.Config != nil && params.Config.Otp != nil {
		if params.Config.Otp.TTL > 0 {
			ttl = params.Config.Otp.TTL
		}
		if params.Config.Otp.ResendCooldown > 0 {
			cooldown = params.Config.Otp.ResendCooldown
		}
		if params.Config.Otp.MaxAttempts > 0 {
			maxAttempts = params.Config.Otp.MaxAttempts
		}
	}

	return &otpService{
		otpRepo:     params.OtpRepo,
		generator:   params.Generator,
		hasher:      params.Hasher,
		sender:      params.Sender,
		ttl:         ttl,
		cooldown:    cooldown,
		maxAttempts: maxAttempts,
		logger:      params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *otpService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// IssueChallenge generates a fresh code for the destination and hands the
// plaintext to the delivery transport. Only the hash is stored.
func (srv *otpService) IssueChallenge(ctx context.Context, input usecase.IssueOtpInput) (*usecase.IssueOtpOutput, error) {
	now := time.Now()

	recent, err := srv.otpRepo.FindRecentByDestination(ctx, input.Destination)
	if err != nil && !errors.Is(err, repository.ErrOtpChallengeNotFound) {
		return nil, errors.Wrap(err, "failed to check resend cooldown")
	}
	if recent != nil && now.Sub(recent.LastSentAt) < srv.cooldown {
		srv.log(ctx).Warn("OTP resend throttled", slog.String("destination", input.Destination))

		return nil, domainerrors.ErrOtpResendThrottled
	}

	code, err := srv.generator.Generate()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate otp code")
	}

	codeHash, err := srv.hasher.Hash(code)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash otp code")
	}

	challenge := &entity.OtpChallenge{
		SessionID:   uuid.New(),
		Destination: input.Destination,
		CodeHash:    codeHash,
		MaxAttempts: srv.maxAttempts,
		ExpiresAt:   now.Add(srv.ttl),
		LastSentAt:  now,
	}

	if err := srv.otpRepo.Create(ctx, challenge); err != nil {
		return nil, errors.Wrap(err, "failed to store otp challenge")
	}

	if err := srv.sender.Send(ctx, input.Destination, code); err != nil {
		srv.log(ctx).Error("Failed to deliver otp code",
			slog.String("destination", input.Destination), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to deliver otp code")
	}

	srv.log(ctx).Info("OTP challenge issued",
		slog.String("destination", input.Destination),
		slog.Any("sessionID", challenge.SessionID))

	return &usecase.IssueOtpOutput{
		SessionID: challenge.SessionID,
		ExpiresAt: challenge.ExpiresAt,
	}, nil
}

// CleanupExpired removes challenges whose expiry passed the retention window.
func (srv *otpService) CleanupExpired(ctx context.Context) error {
	cutoff := time.Now().Add(-otpRetention)
	if err := srv.otpRepo.DeleteExpiredBefore(ctx, cutoff); err != nil {
		return errors.Wrap(err, "failed to clean up expired otp challenges")
	}

	return nil
}
