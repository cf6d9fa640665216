package impl

import (
	"context"
	"testing"
	"time"

	"passwordless/internal/domain/entity"
	domainerrors "passwordless/internal/domain/errors"
	"passwordless/internal/domain/repository"
	"passwordless/internal/domain/service"
	"passwordless/internal/usecase"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type authServiceFixture struct {
	factory      *fakeRepoFactory
	hasher       *mockCodeHasher
	totpProvider *mockTotpProvider
	provider     *mockWebAuthnProvider
	ceremonies   *mockCeremonyStore
	tokens       *mockTokenService
	svc          usecase.AuthUsecase
}

func newAuthServiceFixture(t *testing.T) *authServiceFixture {
	t.Helper()

	f := &authServiceFixture{
		factory:      newFakeRepoFactory(),
		hasher:       new(mockCodeHasher),
		totpProvider: new(mockTotpProvider),
		provider:     new(mockWebAuthnProvider),
		ceremonies:   new(mockCeremonyStore),
		tokens:       new(mockTokenService),
	}
	f.svc = NewAuthService(AuthServiceParams{
		TxManager:        &fakeTxManager{factory: f.factory},
		RefreshTokenRepo: f.factory.refreshTokens,
		Hasher:           f.hasher,
		TotpProvider:     f.totpProvider,
		WebAuthnProvider: f.provider,
		Ceremonies:       f.ceremonies,
		TokenService:     f.tokens,
		Logger:           testLogger(),
	})

	return f
}

// expectTokenIssuance wires the happy-path token minting expectations.
func (f *authServiceFixture) expectTokenIssuance(accountID uuid.UUID, email string) {
	f.tokens.On("IssueAccessToken", accountID, email).Return("access-token", nil)
	f.tokens.On("IssueRefreshToken", accountID).Return("refresh-token", nil)
	f.tokens.On("HashToken", "refresh-token").Return("refresh-hash")
	f.tokens.On("AccessTokenTTL").Return(15 * time.Minute)
	f.tokens.On("RefreshTokenTTL").Return(720 * time.Hour)
	f.factory.refreshTokens.On("Create", mock.Anything, mock.AnythingOfType("*entity.RefreshToken")).Return(nil)
}

func testAccount(identifier string) *entity.Account {
	return &entity.Account{
		ID:    uuid.New(),
		Email: identifier,
	}
}

func TestAuthService_LoginWithOtp_Success(t *testing.T) {
	f := newAuthServiceFixture(t)
	account := testAccount("user@example.com")
	sessionID := uuid.New()
	challenge := &entity.OtpChallenge{
		SessionID:   sessionID,
		Destination: "user@example.com",
		CodeHash:    "stored-hash",
		MaxAttempts: 3,
		ExpiresAt:   time.Now().Add(5 * time.Minute),
	}

	f.factory.accounts.On("FindByIdentifier", mock.Anything, "user@example.com").Return(account, nil)
	f.factory.otps.On("FindBySessionID", mock.Anything, sessionID).Return(challenge, nil)
	f.hasher.On("Check", "123456", "stored-hash").Return(true)
	f.factory.otps.On("Consume", mock.Anything, sessionID).Return(nil)
	f.factory.accounts.On("Update", mock.Anything, account).Return(nil)
	f.expectTokenIssuance(account.ID, account.Email)

	output, err := f.svc.LoginWithOtp(context.Background(), usecase.LoginWithOtpInput{
		Destination: "user@example.com",
		SessionID:   sessionID,
		Code:        "123456",
		Client:      usecase.ClientInfo{IPAddress: "10.0.0.1"},
	})

	require.NoError(t, err)
	require.Equal(t, "access-token", output.Tokens.AccessToken)
	require.Equal(t, "refresh-token", output.Tokens.RefreshToken)
	require.Equal(t, "Bearer", output.Tokens.TokenType)
	require.Equal(t, int64((15 * time.Minute).Seconds()), output.Tokens.ExpiresIn)
	require.Zero(t, account.FailedLoginAttempts)
	require.Equal(t, "10.0.0.1", account.LastLoginIP)
	f.factory.otps.AssertCalled(t, "Consume", mock.Anything, sessionID)
}

func TestAuthService_LoginWithOtp_WrongCodeCountsFailure(t *testing.T) {
	f := newAuthServiceFixture(t)
	account := testAccount("user@example.com")
	sessionID := uuid.New()
	challenge := &entity.OtpChallenge{
		SessionID:   sessionID,
		Destination: "user@example.com",
		CodeHash:    "stored-hash",
		MaxAttempts: 3,
	}

	f.factory.accounts.On("FindByIdentifier", mock.Anything, "user@example.com").Return(account, nil)
	f.factory.otps.On("FindBySessionID", mock.Anything, sessionID).Return(challenge, nil)
	f.hasher.On("Check", "000000", "stored-hash").Return(false)
	f.factory.otps.On("IncrementAttempts", mock.Anything, sessionID).Return(nil)
	f.factory.accounts.On("Update", mock.Anything, account).Return(nil)

	_, err := f.svc.LoginWithOtp(context.Background(), usecase.LoginWithOtpInput{
		Destination: "user@example.com",
		SessionID:   sessionID,
		Code:        "000000",
	})

	require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	require.Equal(t, 1, account.FailedLoginAttempts)
	require.Nil(t, account.LockedUntil)
	f.factory.otps.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything)
	f.tokens.AssertNotCalled(t, "IssueAccessToken", mock.Anything, mock.Anything)
}

func TestAuthService_LoginWithOtp_ThresholdEngagesLock(t *testing.T) {
	f := newAuthServiceFixture(t)
	account := testAccount("user@example.com")
	account.FailedLoginAttempts = 4
	sessionID := uuid.New()
	challenge := &entity.OtpChallenge{
		SessionID:   sessionID,
		Destination: "user@example.com",
		CodeHash:    "stored-hash",
		MaxAttempts: 3,
	}

	f.factory.accounts.On("FindByIdentifier", mock.Anything, "user@example.com").Return(account, nil)
	f.factory.otps.On("FindBySessionID", mock.Anything, sessionID).Return(challenge, nil)
	f.hasher.On("Check", "000000", "stored-hash").Return(false)
	f.factory.otps.On("IncrementAttempts", mock.Anything, sessionID).Return(nil)
	f.factory.accounts.On("Update", mock.Anything, account).Return(nil)

	_, err := f.svc.LoginWithOtp(context.Background(), usecase.LoginWithOtpInput{
		Destination: "user@example.com",
		SessionID:   sessionID,
		Code:        "000000",
	})

	require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	require.Equal(t, 5, account.FailedLoginAttempts)
	require.NotNil(t, account.LockedUntil)
	require.True(t, account.LockedUntil.After(time.Now()))
}

func TestAuthService_LoginWithOtp_LockedAccountRefused(t *testing.T) {
	f := newAuthServiceFixture(t)
	account := testAccount("user@example.com")
	until := time.Now().Add(10 * time.Minute)
	account.LockedUntil = &until
	account.FailedLoginAttempts = 5

	f.factory.accounts.On("FindByIdentifier", mock.Anything, "user@example.com").Return(account, nil)

	_, err := f.svc.LoginWithOtp(context.Background(), usecase.LoginWithOtpInput{
		Destination: "user@example.com",
		Code:        "123456",
	})

	require.ErrorIs(t, err, domainerrors.ErrAccountLocked)
	f.factory.otps.AssertNotCalled(t, "FindLatestByDestination", mock.Anything, mock.Anything)
	f.hasher.AssertNotCalled(t, "Check", mock.Anything, mock.Anything)
}

func TestAuthService_LoginWithOtp_ExpiredLockResetsCounter(t *testing.T) {
	f := newAuthServiceFixture(t)
	account := testAccount("user@example.com")
	until := time.Now().Add(-time.Minute)
	account.LockedUntil = &until
	account.FailedLoginAttempts = 5
	sessionID := uuid.New()
	challenge := &entity.OtpChallenge{
		SessionID:   sessionID,
		Destination: "user@example.com",
		CodeHash:    "stored-hash",
		MaxAttempts: 3,
	}

	f.factory.accounts.On("FindByIdentifier", mock.Anything, "user@example.com").Return(account, nil)
	f.factory.accounts.On("Update", mock.Anything, account).Return(nil)
	f.factory.otps.On("FindBySessionID", mock.Anything, sessionID).Return(challenge, nil)
	f.hasher.On("Check", "000000", "stored-hash").Return(false)
	f.factory.otps.On("IncrementAttempts", mock.Anything, sessionID).Return(nil)

	_, err := f.svc.LoginWithOtp(context.Background(), usecase.LoginWithOtpInput{
		Destination: "user@example.com",
		SessionID:   sessionID,
		Code:        "000000",
	})

	// The stale lock cleared the counter, so this failure is the first of a
	// fresh window rather than the sixth of the old one.
	require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	require.Equal(t, 1, account.FailedLoginAttempts)
	require.Nil(t, account.LockedUntil)
}

func TestAuthService_LoginWithOtp_MissingChallengeCountsFailure(t *testing.T) {
	f := newAuthServiceFixture(t)
	account := testAccount("user@example.com")
	sessionID := uuid.New()

	f.factory.accounts.On("FindByIdentifier", mock.Anything, "user@example.com").Return(account, nil)
	f.factory.otps.On("FindBySessionID", mock.Anything, sessionID).
		Return(nil, repository.ErrOtpChallengeNotFound)
	f.factory.accounts.On("Update", mock.Anything, account).Return(nil)

	_, err := f.svc.LoginWithOtp(context.Background(), usecase.LoginWithOtpInput{
		Destination: "user@example.com",
		SessionID:   sessionID,
		Code:        "123456",
	})

	// The caller sees the same rejection as a wrong code, and the attempt
	// is charged against the account.
	require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	require.NotErrorIs(t, err, domainerrors.ErrOtpChallengeNotFound)
	require.Equal(t, 1, account.FailedLoginAttempts)
	f.hasher.AssertNotCalled(t, "Check", mock.Anything, mock.Anything)
}

func TestAuthService_LoginWithOtp_ConsumeRaceNotCounted(t *testing.T) {
	f := newAuthServiceFixture(t)
	account := testAccount("user@example.com")
	sessionID := uuid.New()
	challenge := &entity.OtpChallenge{
		SessionID:   sessionID,
		Destination: "user@example.com",
		CodeHash:    "stored-hash",
		MaxAttempts: 3,
	}

	f.factory.accounts.On("FindByIdentifier", mock.Anything, "user@example.com").Return(account, nil)
	f.factory.otps.On("FindBySessionID", mock.Anything, sessionID).Return(challenge, nil)
	f.hasher.On("Check", "123456", "stored-hash").Return(true)
	f.factory.otps.On("Consume", mock.Anything, sessionID).Return(repository.ErrOtpChallengeNotFound)

	_, err := f.svc.LoginWithOtp(context.Background(), usecase.LoginWithOtpInput{
		Destination: "user@example.com",
		SessionID:   sessionID,
		Code:        "123456",
	})

	// The code was right and the challenge was redeemed by a concurrent
	// request, so the loser is refused without being charged an attempt and
	// without learning the challenge state.
	require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	require.Zero(t, account.FailedLoginAttempts)
	f.factory.accounts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAuthService_LoginWithOtp_AutoProvisionsAccount(t *testing.T) {
	f := newAuthServiceFixture(t)
	sessionID := uuid.New()
	challenge := &entity.OtpChallenge{
		SessionID:   sessionID,
		Destination: "15551234567",
		CodeHash:    "stored-hash",
		MaxAttempts: 3,
	}

	var created *entity.Account
	f.factory.accounts.On("FindByIdentifier", mock.Anything, "15551234567").Return(nil, repository.ErrAccountNotFound)
	f.factory.accounts.On("Create", mock.Anything, mock.AnythingOfType("*entity.Account")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*entity.Account)
			created.ID = uuid.New()
		}).Return(nil)
	f.factory.otps.On("FindBySessionID", mock.Anything, sessionID).Return(challenge, nil)
	f.hasher.On("Check", "123456", "stored-hash").Return(true)
	f.factory.otps.On("Consume", mock.Anything, sessionID).Return(nil)
	f.factory.accounts.On("Update", mock.Anything, mock.AnythingOfType("*entity.Account")).Return(nil)
	f.tokens.On("IssueAccessToken", mock.Anything, mock.Anything).Return("access-token", nil)
	f.tokens.On("IssueRefreshToken", mock.Anything).Return("refresh-token", nil)
	f.tokens.On("HashToken", "refresh-token").Return("refresh-hash")
	f.tokens.On("AccessTokenTTL").Return(15 * time.Minute)
	f.tokens.On("RefreshTokenTTL").Return(720 * time.Hour)
	f.factory.refreshTokens.On("Create", mock.Anything, mock.AnythingOfType("*entity.RefreshToken")).Return(nil)

	output, err := f.svc.LoginWithOtp(context.Background(), usecase.LoginWithOtpInput{
		Destination: "15551234567",
		SessionID:   sessionID,
		Code:        "123456",
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	require.Equal(t, "15551234567", created.Phone)
	require.Equal(t, "15551234567@phone.invalid", created.Email)
	require.Equal(t, created.ID, output.Account.ID)
}

func TestAuthService_LoginWithTotp_Success(t *testing.T) {
	f := newAuthServiceFixture(t)
	account := testAccount("alice")
	enrollment := &entity.TotpEnrollment{
		Username:     "alice",
		Secret:       "SECRET",
		LastUsedStep: 100,
	}

	f.factory.accounts.On("FindByIdentifier", mock.Anything, "alice").Return(account, nil)
	f.factory.totps.On("FindByUsername", mock.Anything, "alice").Return(enrollment, nil)
	f.totpProvider.On("MatchStep", "SECRET", "654321", mock.AnythingOfType("time.Time")).
		Return(int64(101), true, nil)
	f.factory.totps.On("AdvanceLastUsedStep", mock.Anything, "alice", int64(101)).Return(nil)
	f.factory.accounts.On("Update", mock.Anything, account).Return(nil)
	f.expectTokenIssuance(account.ID, account.Email)

	output, err := f.svc.LoginWithTotp(context.Background(), usecase.LoginWithTotpInput{
		Username: "alice",
		Code:     "654321",
	})

	require.NoError(t, err)
	require.Equal(t, "Bearer", output.Tokens.TokenType)
	f.factory.totps.AssertCalled(t, "AdvanceLastUsedStep", mock.Anything, "alice", int64(101))
}

func TestAuthService_LoginWithTotp_ReplayRejected(t *testing.T) {
	f := newAuthServiceFixture(t)
	account := testAccount("alice")
	enrollment := &entity.TotpEnrollment{
		Username:     "alice",
		Secret:       "SECRET",
		LastUsedStep: 101,
	}

	f.factory.accounts.On("FindByIdentifier", mock.Anything, "alice").Return(account, nil)
	f.factory.totps.On("FindByUsername", mock.Anything, "alice").Return(enrollment, nil)
	// The code is cryptographically valid but its step was already accepted.
	f.totpProvider.On("MatchStep", "SECRET", "654321", mock.AnythingOfType("time.Time")).
		Return(int64(101), true, nil)
	f.factory.accounts.On("Update", mock.Anything, account).Return(nil)

	_, err := f.svc.LoginWithTotp(context.Background(), usecase.LoginWithTotpInput{
		Username: "alice",
		Code:     "654321",
	})

	require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	require.Equal(t, 1, account.FailedLoginAttempts)
	f.factory.totps.AssertNotCalled(t, "AdvanceLastUsedStep", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_LoginWithTotp_ConcurrentStepLossCounted(t *testing.T) {
	f := newAuthServiceFixture(t)
	account := testAccount("alice")
	enrollment := &entity.TotpEnrollment{
		Username:     "alice",
		Secret:       "SECRET",
		LastUsedStep: 100,
	}

	f.factory.accounts.On("FindByIdentifier", mock.Anything, "alice").Return(account, nil)
	f.factory.totps.On("FindByUsername", mock.Anything, "alice").Return(enrollment, nil)
	f.totpProvider.On("MatchStep", "SECRET", "654321", mock.AnythingOfType("time.Time")).
		Return(int64(101), true, nil)
	f.factory.totps.On("AdvanceLastUsedStep", mock.Anything, "alice", int64(101)).
		Return(repository.ErrTotpStepRegression)
	f.factory.accounts.On("Update", mock.Anything, account).Return(nil)

	_, err := f.svc.LoginWithTotp(context.Background(), usecase.LoginWithTotpInput{
		Username: "alice",
		Code:     "654321",
	})

	require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	require.Equal(t, 1, account.FailedLoginAttempts)
}

func TestAuthService_LoginWithTotp_NotEnrolledCountsFailure(t *testing.T) {
	f := newAuthServiceFixture(t)
	account := testAccount("alice")

	f.factory.accounts.On("FindByIdentifier", mock.Anything, "alice").Return(account, nil)
	f.factory.totps.On("FindByUsername", mock.Anything, "alice").Return(nil, repository.ErrTotpNotEnrolled)
	f.factory.accounts.On("Update", mock.Anything, account).Return(nil)

	_, err := f.svc.LoginWithTotp(context.Background(), usecase.LoginWithTotpInput{
		Username: "alice",
		Code:     "654321",
	})

	// Checking for enrollment costs attempts like guessing a code does, and
	// the rejection is indistinguishable from a wrong code.
	require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	require.NotErrorIs(t, err, domainerrors.ErrTotpNotEnrolled)
	require.Equal(t, 1, account.FailedLoginAttempts)
}

func TestAuthService_LoginWithWebAuthn_UnknownCeremonyNotCounted(t *testing.T) {
	f := newAuthServiceFixture(t)

	f.ceremonies.On("Take", "missing-token", "alice").Return(nil, service.ErrCeremonyNotFound)

	_, err := f.svc.LoginWithWebAuthn(context.Background(), usecase.LoginWithWebAuthnInput{
		Username:      "alice",
		CeremonyToken: "missing-token",
		Response:      []byte(`{}`),
	})

	require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	f.factory.accounts.AssertNotCalled(t, "FindByIdentifier", mock.Anything, mock.Anything)
	f.factory.accounts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAuthService_LoginWithWebAuthn_MalformedResponseNotCounted(t *testing.T) {
	f := newAuthServiceFixture(t)

	f.ceremonies.On("Take", "token", "alice").Return(&webauthn.SessionData{}, nil)

	_, err := f.svc.LoginWithWebAuthn(context.Background(), usecase.LoginWithWebAuthnInput{
		Username:      "alice",
		CeremonyToken: "token",
		Response:      []byte("not json"),
	})

	require.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	f.factory.accounts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// minimalAssertionJSON is a structurally valid assertion payload. Its
// contents never reach signature verification in these tests; it only has
// to survive parsing.
const minimalAssertionJSON = `{
	"id": "AQ",
	"rawId": "AQ",
	"type": "public-key",
	"response": {
		"clientDataJSON": "eyJ0eXBlIjoid2ViYXV0aG4uZ2V0IiwiY2hhbGxlbmdlIjoiZEdWemRBIiwib3JpZ2luIjoiaHR0cHM6Ly9leGFtcGxlLmNvbSJ9",
		"authenticatorData": "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		"signature": "c2ln"
	}
}`

func TestAuthService_LoginWithWebAuthn_NoCredentialsCountsFailure(t *testing.T) {
	f := newAuthServiceFixture(t)
	account := testAccount("alice")

	f.ceremonies.On("Take", "token", "alice").Return(&webauthn.SessionData{}, nil)
	f.factory.accounts.On("FindByIdentifier", mock.Anything, "alice").Return(account, nil)
	f.factory.webauthns.On("FindByUsername", mock.Anything, "alice").
		Return([]*entity.WebAuthnCredential{}, nil)
	f.factory.accounts.On("Update", mock.Anything, account).Return(nil)

	_, err := f.svc.LoginWithWebAuthn(context.Background(), usecase.LoginWithWebAuthnInput{
		Username:      "alice",
		CeremonyToken: "token",
		Response:      []byte(minimalAssertionJSON),
	})

	// An account with no registered credentials is charged an attempt and
	// told nothing beyond invalid credentials.
	require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	require.NotErrorIs(t, err, domainerrors.ErrWebAuthnCredentialNotFound)
	require.Equal(t, 1, account.FailedLoginAttempts)
	f.provider.AssertNotCalled(t, "FinishLogin", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_Refresh_RotatesSingleUse(t *testing.T) {
	f := newAuthServiceFixture(t)
	account := testAccount("user@example.com")
	record := &entity.RefreshToken{
		ID:        uuid.New(),
		AccountID: account.ID,
		TokenHash: "old-hash",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	f.tokens.On("ValidateToken", "old-refresh").Return(&service.Claims{
		AccountID: account.ID,
		TokenType: service.TokenTypeRefresh,
	}, nil)
	f.tokens.On("HashToken", "old-refresh").Return("old-hash")
	f.factory.refreshTokens.On("FindActiveByHash", mock.Anything, "old-hash").Return(record, nil)
	f.factory.refreshTokens.On("Revoke", mock.Anything, record.ID).Return(nil)
	f.factory.accounts.On("FindByID", mock.Anything, account.ID).Return(account, nil)
	f.tokens.On("IssueAccessToken", account.ID, account.Email).Return("new-access", nil)
	f.tokens.On("IssueRefreshToken", account.ID).Return("new-refresh", nil)
	f.tokens.On("HashToken", "new-refresh").Return("new-hash")
	f.tokens.On("AccessTokenTTL").Return(15 * time.Minute)
	f.tokens.On("RefreshTokenTTL").Return(720 * time.Hour)

	var ledgered *entity.RefreshToken
	f.factory.refreshTokens.On("Create", mock.Anything, mock.AnythingOfType("*entity.RefreshToken")).
		Run(func(args mock.Arguments) {
			ledgered = args.Get(1).(*entity.RefreshToken)
		}).Return(nil)

	output, err := f.svc.Refresh(context.Background(), usecase.RefreshInput{RefreshToken: "old-refresh"})

	require.NoError(t, err)
	require.Equal(t, "new-access", output.Tokens.AccessToken)
	require.Equal(t, "new-refresh", output.Tokens.RefreshToken)
	require.NotNil(t, ledgered)
	require.Equal(t, "new-hash", ledgered.TokenHash)
	require.NotNil(t, ledgered.ParentTokenID)
	require.Equal(t, record.ID, *ledgered.ParentTokenID)
	f.factory.refreshTokens.AssertCalled(t, "Revoke", mock.Anything, record.ID)
}

func TestAuthService_Refresh_LostRaceRejected(t *testing.T) {
	f := newAuthServiceFixture(t)
	record := &entity.RefreshToken{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		TokenHash: "old-hash",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	f.tokens.On("ValidateToken", "old-refresh").Return(&service.Claims{
		AccountID: record.AccountID,
		TokenType: service.TokenTypeRefresh,
	}, nil)
	f.tokens.On("HashToken", "old-refresh").Return("old-hash")
	f.factory.refreshTokens.On("FindActiveByHash", mock.Anything, "old-hash").Return(record, nil)
	f.factory.refreshTokens.On("Revoke", mock.Anything, record.ID).
		Return(repository.ErrRefreshTokenNotFound)

	_, err := f.svc.Refresh(context.Background(), usecase.RefreshInput{RefreshToken: "old-refresh"})

	require.ErrorIs(t, err, domainerrors.ErrRefreshTokenInvalid)
	f.factory.refreshTokens.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Refresh_ExpiredTokenRevokedOnSight(t *testing.T) {
	f := newAuthServiceFixture(t)

	f.tokens.On("ValidateToken", "stale-refresh").Return(&service.Claims{
		AccountID: uuid.New(),
		TokenType: service.TokenTypeRefresh,
	}, nil)
	f.tokens.On("HashToken", "stale-refresh").Return("stale-hash")
	f.factory.refreshTokens.On("FindActiveByHash", mock.Anything, "stale-hash").
		Return(nil, repository.ErrRefreshTokenExpired)
	f.factory.refreshTokens.On("RevokeByHash", mock.Anything, "stale-hash").Return(nil)

	_, err := f.svc.Refresh(context.Background(), usecase.RefreshInput{RefreshToken: "stale-refresh"})

	// Expiry is detected lazily; the record is marked revoked on the way out.
	require.ErrorIs(t, err, domainerrors.ErrRefreshTokenInvalid)
	f.factory.refreshTokens.AssertCalled(t, "RevokeByHash", mock.Anything, "stale-hash")
	f.factory.refreshTokens.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	f := newAuthServiceFixture(t)

	f.tokens.On("ValidateToken", "access-token").Return(&service.Claims{
		AccountID: uuid.New(),
		TokenType: service.TokenTypeAccess,
	}, nil)

	_, err := f.svc.Refresh(context.Background(), usecase.RefreshInput{RefreshToken: "access-token"})

	require.ErrorIs(t, err, domainerrors.ErrRefreshTokenInvalid)
	f.factory.refreshTokens.AssertNotCalled(t, "FindActiveByHash", mock.Anything, mock.Anything)
}

func TestAuthService_ValidateAccess(t *testing.T) {
	f := newAuthServiceFixture(t)
	accountID := uuid.New()

	f.tokens.On("ValidateToken", "good-access").Return(&service.Claims{
		AccountID: accountID,
		Email:     "user@example.com",
		TokenType: service.TokenTypeAccess,
	}, nil)
	f.tokens.On("ValidateToken", "refresh-as-access").Return(&service.Claims{
		AccountID: accountID,
		TokenType: service.TokenTypeRefresh,
	}, nil)
	f.tokens.On("ValidateToken", "garbage").Return(nil, service.ErrTokenInvalid)

	claims, err := f.svc.ValidateAccess(context.Background(), "good-access")
	require.NoError(t, err)
	require.Equal(t, accountID, claims.AccountID)
	require.Equal(t, "user@example.com", claims.Email)

	_, err = f.svc.ValidateAccess(context.Background(), "refresh-as-access")
	require.ErrorIs(t, err, domainerrors.ErrAccessTokenInvalid)

	_, err = f.svc.ValidateAccess(context.Background(), "garbage")
	require.ErrorIs(t, err, domainerrors.ErrAccessTokenInvalid)
}

func TestAuthService_Revoke_Idempotent(t *testing.T) {
	f := newAuthServiceFixture(t)

	f.tokens.On("HashToken", "some-refresh").Return("some-hash")
	f.factory.refreshTokens.On("RevokeByHash", mock.Anything, "some-hash").Return(nil)

	require.NoError(t, f.svc.Revoke(context.Background(), "some-refresh"))
	require.NoError(t, f.svc.Revoke(context.Background(), "some-refresh"))
}
