package impl

import (
	"bytes"
	"context"
	"encoding/base64"
	"log/slog"
	"time"

	"passwordless/config"
	deliverycontext "passwordless/internal/delivery/context"
	"passwordless/internal/domain/entity"
	domainerrors "passwordless/internal/domain/errors"
	"passwordless/internal/domain/repository"
	"passwordless/internal/domain/service"
	"passwordless/internal/usecase"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	defaultLockoutThreshold = 5
	defaultLockoutDuration  = 15 * time.Minute

	tokenTypeBearer = "Bearer"
)

// authService implements the AuthUsecase interface. Every login path runs
// the same skeleton inside one transaction: refuse locked accounts before
// touching the credential, verify, then record the outcome on the account
// row. Verification failures commit their bookkeeping; infrastructure
// failures roll back and are never counted against the account. A missing
// challenge, enrollment, or credential counts like a wrong code and is
// reported as invalid credentials, so callers cannot enumerate which
// methods an account has.
type authService struct {
	txManager        repository.TransactionManager
	refreshTokenRepo repository.RefreshTokenRepository
	hasher           service.CodeHasher
	totpProvider     service.TotpProvider
	webauthnProvider service.WebAuthnProvider
	ceremonies       service.CeremonyStore
	tokenService     service.TokenService
	lockoutThreshold int
	lockoutDuration  time.Duration
	allowZeroCount   bool
	logger           *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager        repository.TransactionManager
	RefreshTokenRepo repository.RefreshTokenRepository
	Hasher           service.CodeHasher
	TotpProvider     service.TotpProvider
	WebAuthnProvider service.WebAuthnProvider
	Ceremonies       service.CeremonyStore
	TokenService     service.TokenService
	Config           *config.Config
	Logger           *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	threshold := defaultLockoutThreshold
	duration := defaultLockoutDuration
	allowZeroCount := true
	if params.Config != nil && params.Config.Lockout != nil {
		if params.Config.Lockout.Threshold > 0 {
			threshold = params.Config.Lockout.Threshold
		}
		if params.Config.Lockout.Duration > 0 {
			duration = params.Config.Lockout.Duration
		}
	}
	if params.Config != nil && params.Config.WebAuthn != nil {
		allowZeroCount = params.Config.WebAuthn.AllowZeroCount
	}

	return &authService{
		txManager:        params.TxManager,
		refreshTokenRepo: params.RefreshTokenRepo,
		hasher:           params.Hasher,
		totpProvider:     params.TotpProvider,
		webauthnProvider: params.WebAuthnProvider,
		ceremonies:       params.Ceremonies,
		tokenService:     params.TokenService,
		lockoutThreshold: threshold,
		lockoutDuration:  duration,
		allowZeroCount:   allowZeroCount,
		logger:           params.Logger,
	}
}

func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// LoginWithOtp verifies a one-time code against the destination's pending
// challenge and issues a token pair.
func (srv *authService) LoginWithOtp(ctx context.Context, input usecase.LoginWithOtpInput) (*usecase.LoginOutput, error) {
	var output *usecase.LoginOutput
	var loginErr error

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		now := time.Now()
		accountRepo := repoFactory.AccountRepo()
		otpRepo := repoFactory.OtpRepo()

		account, err := srv.loadAccountForLogin(ctx, accountRepo, input.Destination, now)
		if err != nil {
			loginErr = err

			return srv.commitOnAuthFailure(err)
		}

		challenge, err := srv.findChallenge(ctx, otpRepo, input)
		if err != nil {
			if errors.Is(err, domainerrors.ErrOtpChallengeNotFound) {
				// A missing challenge counts like a wrong code, so callers
				// cannot tell which destinations have pending codes.
				if err := srv.recordFailure(ctx, accountRepo, account, now); err != nil {
					return err
				}
				srv.log(ctx).Warn("No consumable OTP challenge for destination",
					slog.String("destination", input.Destination))
				loginErr = domainerrors.ErrInvalidCredentials

				return nil
			}

			return err
		}

		if !srv.hasher.Check(input.Code, challenge.CodeHash) {
			if err := otpRepo.IncrementAttempts(ctx, challenge.SessionID); err != nil &&
				!errors.Is(err, repository.ErrOtpChallengeNotFound) {
				return errors.Wrap(err, "failed to record otp attempt")
			}
			if err := srv.recordFailure(ctx, accountRepo, account, now); err != nil {
				return err
			}
			srv.log(ctx).Warn("OTP verification failed", slog.String("destination", input.Destination))
			loginErr = domainerrors.ErrInvalidCredentials

			return nil
		}

		// Single-use: of any concurrent verifications of this challenge,
		// exactly one consume succeeds.
		if err := otpRepo.Consume(ctx, challenge.SessionID); err != nil {
			if errors.Is(err, repository.ErrOtpChallengeNotFound) {
				// Lost a concurrent verification of the same challenge. The
				// code was right, so the failure counter is left alone.
				loginErr = domainerrors.ErrInvalidCredentials

				return nil
			}

			return errors.Wrap(err, "failed to consume otp challenge")
		}

		if err := srv.recordSuccess(ctx, accountRepo, account, now, input.Client.IPAddress); err != nil {
			return err
		}

		tokens, err := srv.issueTokens(ctx, repoFactory.RefreshTokenRepo(), account, input.Client, nil)
		if err != nil {
			return err
		}

		output = &usecase.LoginOutput{Tokens: tokens, Account: account}

		return nil
	})
	if err != nil {
		if appErr := asAuthFailure(err); appErr != nil {
			return nil, appErr
		}

		return nil, errors.Wrap(err, "failed to execute otp login transaction")
	}
	if loginErr != nil {
		return nil, loginErr
	}

	srv.log(ctx).Info("OTP login succeeded", slog.String("destination", input.Destination))

	return output, nil
}

// LoginWithTotp verifies an authenticator-app code. A code is accepted only
// for a step strictly beyond the last accepted one, so each code works once.
func (srv *authService) LoginWithTotp(ctx context.Context, input usecase.LoginWithTotpInput) (*usecase.LoginOutput, error) {
	var output *usecase.LoginOutput
	var loginErr error

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		now := time.Now()
		accountRepo := repoFactory.AccountRepo()

		account, err := srv.loadAccountForLogin(ctx, accountRepo, input.Username, now)
		if err != nil {
			loginErr = err

			return srv.commitOnAuthFailure(err)
		}

		enrollment, err := repoFactory.TotpRepo().FindByUsername(ctx, input.Username)
		if err != nil {
			if errors.Is(err, repository.ErrTotpNotEnrolled) {
				// An unenrolled account counts like a wrong code, so callers
				// cannot enumerate which methods an account has set up.
				if err := srv.recordFailure(ctx, accountRepo, account, now); err != nil {
					return err
				}
				srv.log(ctx).Warn("TOTP login without enrollment", slog.String("username", input.Username))
				loginErr = domainerrors.ErrInvalidCredentials

				return nil
			}

			return errors.Wrap(err, "failed to load totp enrollment")
		}

		step, ok, err := srv.totpProvider.MatchStep(enrollment.Secret, input.Code, now)
		if err != nil {
			return errors.Wrap(err, "failed to evaluate totp code")
		}
		if !ok {
			if err := srv.recordFailure(ctx, accountRepo, account, now); err != nil {
				return err
			}
			srv.log(ctx).Warn("TOTP verification failed", slog.String("username", input.Username))
			loginErr = domainerrors.ErrInvalidCredentials

			return nil
		}

		// The guard on the stored step rejects both replays of an accepted
		// code and concurrent wins for the same step.
		if step <= enrollment.LastUsedStep {
			if err := srv.recordFailure(ctx, accountRepo, account, now); err != nil {
				return err
			}
			srv.log(ctx).Warn("TOTP code replay rejected", slog.String("username", input.Username))
			loginErr = domainerrors.ErrInvalidCredentials

			return nil
		}
		if err := repoFactory.TotpRepo().AdvanceLastUsedStep(ctx, input.Username, step); err != nil {
			if errors.Is(err, repository.ErrTotpStepRegression) {
				if err := srv.recordFailure(ctx, accountRepo, account, now); err != nil {
					return err
				}
				loginErr = domainerrors.ErrInvalidCredentials

				return nil
			}

			return errors.Wrap(err, "failed to advance totp step")
		}

		if err := srv.recordSuccess(ctx, accountRepo, account, now, input.Client.IPAddress); err != nil {
			return err
		}

		tokens, err := srv.issueTokens(ctx, repoFactory.RefreshTokenRepo(), account, input.Client, nil)
		if err != nil {
			return err
		}

		output = &usecase.LoginOutput{Tokens: tokens, Account: account}

		return nil
	})
	if err != nil {
		if appErr := asAuthFailure(err); appErr != nil {
			return nil, appErr
		}

		return nil, errors.Wrap(err, "failed to execute totp login transaction")
	}
	if loginErr != nil {
		return nil, loginErr
	}

	srv.log(ctx).Info("TOTP login succeeded", slog.String("username", input.Username))

	return output, nil
}

// LoginWithWebAuthn finishes an assertion ceremony and issues a token pair.
// The signature counter must strictly advance unless both the stored and
// presented counters are zero, which counter-less authenticators produce.
func (srv *authService) LoginWithWebAuthn(ctx context.Context, input usecase.LoginWithWebAuthnInput) (*usecase.LoginOutput, error) {
	session, err := srv.ceremonies.Take(input.CeremonyToken, input.Username)
	if err != nil {
		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("ceremony not found or expired")
	}

	parsed, err := protocol.ParseCredentialRequestResponseBody(bytes.NewReader(input.Response))
	if err != nil {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("malformed assertion response")
	}

	var output *usecase.LoginOutput
	var loginErr error

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		now := time.Now()
		accountRepo := repoFactory.AccountRepo()
		webauthnRepo := repoFactory.WebAuthnRepo()

		account, err := srv.loadAccountForLogin(ctx, accountRepo, input.Username, now)
		if err != nil {
			loginErr = err

			return srv.commitOnAuthFailure(err)
		}

		credentials, err := webauthnRepo.FindByUsername(ctx, input.Username)
		if err != nil {
			return errors.Wrap(err, "failed to load credentials")
		}
		if len(credentials) == 0 {
			if err := srv.recordFailure(ctx, accountRepo, account, now); err != nil {
				return err
			}
			srv.log(ctx).Warn("WebAuthn login without registered credentials",
				slog.String("username", input.Username))
			loginErr = domainerrors.ErrInvalidCredentials

			return nil
		}

		user := &ceremonyUser{username: input.Username, credentials: credentials}
		credential, err := srv.webauthnProvider.FinishLogin(user, *session, parsed)
		if err != nil {
			if err := srv.recordFailure(ctx, accountRepo, account, now); err != nil {
				return err
			}
			srv.log(ctx).Warn("WebAuthn assertion failed",
				slog.String("username", input.Username), slog.Any("error", err))
			loginErr = domainerrors.ErrInvalidCredentials

			return nil
		}

		credentialID := base64.RawURLEncoding.EncodeToString(credential.ID)
		stored, err := webauthnRepo.FindByCredentialID(ctx, credentialID)
		if err != nil {
			return errors.Wrap(err, "failed to load asserted credential")
		}

		presented := credential.Authenticator.SignCount
		lowAssurance := false
		if presented == 0 && stored.SignCount == 0 {
			if !srv.allowZeroCount {
				if err := srv.recordFailure(ctx, accountRepo, account, now); err != nil {
					return err
				}
				loginErr = domainerrors.ErrWebAuthnReplayDetected

				return nil
			}
			lowAssurance = true
			srv.log(ctx).Warn("Counter-less authenticator accepted, replay protection reduced",
				slog.String("username", input.Username),
				slog.String("credentialID", credentialID))
		}

		if err := webauthnRepo.AdvanceSignCount(ctx, credentialID, presented); err != nil {
			if errors.Is(err, repository.ErrWebAuthnCounterRegression) {
				if err := srv.recordFailure(ctx, accountRepo, account, now); err != nil {
					return err
				}
				srv.log(ctx).Warn("WebAuthn counter regression, possible cloned authenticator",
					slog.String("username", input.Username),
					slog.String("credentialID", credentialID))
				loginErr = domainerrors.ErrWebAuthnReplayDetected

				return nil
			}

			return errors.Wrap(err, "failed to advance signature counter")
		}

		if err := srv.recordSuccess(ctx, accountRepo, account, now, input.Client.IPAddress); err != nil {
			return err
		}

		tokens, err := srv.issueTokens(ctx, repoFactory.RefreshTokenRepo(), account, input.Client, nil)
		if err != nil {
			return err
		}

		output = &usecase.LoginOutput{Tokens: tokens, Account: account, LowAssurance: lowAssurance}

		return nil
	})
	if err != nil {
		if appErr := asAuthFailure(err); appErr != nil {
			return nil, appErr
		}

		return nil, errors.Wrap(err, "failed to execute webauthn login transaction")
	}
	if loginErr != nil {
		return nil, loginErr
	}

	srv.log(ctx).Info("WebAuthn login succeeded", slog.String("username", input.Username))

	return output, nil
}

// Refresh redeems a refresh token for a fresh pair. The presented token is
// revoked first; the guarded revocation makes concurrent redemptions of the
// same token yield exactly one winner.
func (srv *authService) Refresh(ctx context.Context, input usecase.RefreshInput) (*usecase.LoginOutput, error) {
	claims, err := srv.tokenService.ValidateToken(input.RefreshToken)
	if err != nil {
		return nil, domainerrors.ErrRefreshTokenInvalid
	}
	if claims.TokenType != service.TokenTypeRefresh {
		return nil, domainerrors.ErrRefreshTokenInvalid
	}

	tokenHash := srv.tokenService.HashToken(input.RefreshToken)

	var output *usecase.LoginOutput
	var refreshErr error

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		tokenRepo := repoFactory.RefreshTokenRepo()

		record, err := tokenRepo.FindActiveByHash(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, repository.ErrRefreshTokenExpired) {
				// Lazy expiry: mark the record revoked so it drops out of
				// active-session listings.
				if err := tokenRepo.RevokeByHash(ctx, tokenHash); err != nil {
					return errors.Wrap(err, "failed to revoke expired refresh token")
				}
				refreshErr = domainerrors.ErrRefreshTokenInvalid

				return nil
			}
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				refreshErr = domainerrors.ErrRefreshTokenInvalid

				return nil
			}

			return errors.Wrap(err, "failed to look up refresh token")
		}

		if err := tokenRepo.Revoke(ctx, record.ID); err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				// Lost the race against a concurrent redemption.
				refreshErr = domainerrors.ErrRefreshTokenInvalid

				return nil
			}

			return errors.Wrap(err, "failed to revoke redeemed token")
		}

		account, err := repoFactory.AccountRepo().FindByID(ctx, record.AccountID)
		if err != nil {
			return errors.Wrap(err, "failed to load account for refresh")
		}

		tokens, err := srv.issueTokens(ctx, tokenRepo, account, input.Client, &record.ID)
		if err != nil {
			return err
		}

		output = &usecase.LoginOutput{Tokens: tokens, Account: account}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute refresh transaction")
	}
	if refreshErr != nil {
		return nil, refreshErr
	}

	srv.log(ctx).Debug("Refresh token rotated", slog.Any("accountID", output.Account.ID))

	return output, nil
}

// Revoke invalidates a single refresh token. Unknown and already revoked
// tokens are a no-op.
func (srv *authService) Revoke(ctx context.Context, refreshToken string) error {
	tokenHash := srv.tokenService.HashToken(refreshToken)
	if err := srv.refreshTokenRepo.RevokeByHash(ctx, tokenHash); err != nil {
		return errors.Wrap(err, "failed to revoke refresh token")
	}

	return nil
}

// ValidateAccess verifies an access token and returns its identity claims.
func (srv *authService) ValidateAccess(ctx context.Context, accessToken string) (*usecase.AccessClaimsOutput, error) {
	claims, err := srv.tokenService.ValidateToken(accessToken)
	if err != nil {
		return nil, domainerrors.ErrAccessTokenInvalid
	}
	if claims.TokenType != service.TokenTypeAccess {
		return nil, domainerrors.ErrAccessTokenInvalid
	}

	return &usecase.AccessClaimsOutput{
		AccountID: claims.AccountID,
		Email:     claims.Email,
	}, nil
}

// --- shared login plumbing ---

// loadAccountForLogin resolves (or creates) the account for an identifier
// and enforces the lockout window. An expired lock clears the failure
// counter before the new attempt is evaluated.
func (srv *authService) loadAccountForLogin(ctx context.Context, accountRepo repository.AccountRepository, identifier string, now time.Time) (*entity.Account, error) {
	account, err := accountRepo.FindByIdentifier(ctx, identifier)
	if errors.Is(err, repository.ErrAccountNotFound) {
		account = newAccountForIdentifier(identifier)
		if err := accountRepo.Create(ctx, account); err != nil {
			return nil, errors.Wrap(err, "failed to create account")
		}

		return account, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load account")
	}

	if account.IsLocked(now) {
		srv.log(ctx).Warn("Login attempt on locked account", slog.Any("accountID", account.ID))

		return nil, domainerrors.ErrAccountLocked
	}

	if account.LockedUntil != nil {
		account.LockedUntil = nil
		account.FailedLoginAttempts = 0
		if err := accountRepo.Update(ctx, account); err != nil {
			return nil, errors.Wrap(err, "failed to clear expired lock")
		}
	}

	return account, nil
}

// recordFailure bumps the failure counter and engages the lock when the
// threshold is reached.
func (srv *authService) recordFailure(ctx context.Context, accountRepo repository.AccountRepository, account *entity.Account, now time.Time) error {
	account.FailedLoginAttempts++
	if account.FailedLoginAttempts >= srv.lockoutThreshold {
		until := now.Add(srv.lockoutDuration)
		account.LockedUntil = &until
		srv.log(ctx).Warn("Account locked after repeated failures",
			slog.Any("accountID", account.ID),
			slog.Time("lockedUntil", until))
	}
	if err := accountRepo.Update(ctx, account); err != nil {
		return errors.Wrap(err, "failed to record login failure")
	}

	return nil
}

// recordSuccess clears the failure counter and stamps the login metadata.
func (srv *authService) recordSuccess(ctx context.Context, accountRepo repository.AccountRepository, account *entity.Account, now time.Time, ip string) error {
	account.FailedLoginAttempts = 0
	account.LockedUntil = nil
	account.LastLoginAt = &now
	account.LastLoginIP = ip
	if err := accountRepo.Update(ctx, account); err != nil {
		return errors.Wrap(err, "failed to record login success")
	}

	return nil
}

// issueTokens mints a token pair and records the refresh token in the ledger.
func (srv *authService) issueTokens(ctx context.Context, tokenRepo repository.RefreshTokenRepository, account *entity.Account, client usecase.ClientInfo, parentID *uuid.UUID) (*entity.TokenPair, error) {
	accessToken, err := srv.tokenService.IssueAccessToken(account.ID, account.Email)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue access token")
	}

	refreshToken, err := srv.tokenService.IssueRefreshToken(account.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue refresh token")
	}

	record := &entity.RefreshToken{
		AccountID:     account.ID,
		TokenHash:     srv.tokenService.HashToken(refreshToken),
		ParentTokenID: parentID,
		ExpiresAt:     time.Now().Add(srv.tokenService.RefreshTokenTTL()),
		IPAddress:     client.IPAddress,
		UserAgent:     client.UserAgent,
	}
	if err := tokenRepo.Create(ctx, record); err != nil {
		return nil, errors.Wrap(err, "failed to record refresh token")
	}

	return &entity.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(srv.tokenService.AccessTokenTTL().Seconds()),
		TokenType:    tokenTypeBearer,
	}, nil
}

// findChallenge resolves the challenge a code is being verified against.
func (srv *authService) findChallenge(ctx context.Context, otpRepo repository.OtpChallengeRepository, input usecase.LoginWithOtpInput) (*entity.OtpChallenge, error) {
	if input.SessionID != uuid.Nil {
		challenge, err := otpRepo.FindBySessionID(ctx, input.SessionID)
		if err != nil {
			if errors.Is(err, repository.ErrOtpChallengeNotFound) {
				return nil, domainerrors.ErrOtpChallengeNotFound
			}

			return nil, errors.Wrap(err, "failed to find otp challenge")
		}
		if challenge.Destination != input.Destination {
			return nil, domainerrors.ErrOtpChallengeNotFound
		}

		return challenge, nil
	}

	challenge, err := otpRepo.FindLatestByDestination(ctx, input.Destination)
	if err != nil {
		if errors.Is(err, repository.ErrOtpChallengeNotFound) {
			return nil, domainerrors.ErrOtpChallengeNotFound
		}

		return nil, errors.Wrap(err, "failed to find otp challenge")
	}

	return challenge, nil
}

// commitOnAuthFailure decides whether a login-step error should commit the
// transaction (business rejection already captured in loginErr) or roll it
// back (infrastructure failure).
func (srv *authService) commitOnAuthFailure(err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return nil
	}

	return err
}

// asAuthFailure extracts a business rejection that escaped through the
// transaction wrapper.
func asAuthFailure(err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	return nil
}
