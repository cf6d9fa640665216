package impl

import (
	"context"
	"io"
	"log/slog"
	"time"

	"passwordless/internal/domain/entity"
	"passwordless/internal/domain/repository"
	"passwordless/internal/domain/service"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRepoFactory hands out the test's mocks so transactional code paths can
// be observed without a database.
type fakeRepoFactory struct {
	accounts      *mockAccountRepo
	otps          *mockOtpRepo
	totps         *mockTotpRepo
	webauthns     *mockWebAuthnRepo
	refreshTokens *mockRefreshTokenRepo
	apps          *mockAppRepo
	audits        *mockAuditRepo
}

func newFakeRepoFactory() *fakeRepoFactory {
	return &fakeRepoFactory{
		accounts:      new(mockAccountRepo),
		otps:          new(mockOtpRepo),
		totps:         new(mockTotpRepo),
		webauthns:     new(mockWebAuthnRepo),
		refreshTokens: new(mockRefreshTokenRepo),
		apps:          new(mockAppRepo),
		audits:        new(mockAuditRepo),
	}
}

func (f *fakeRepoFactory) AccountRepo() repository.AccountRepository {
	return f.accounts
}

func (f *fakeRepoFactory) OtpRepo() repository.OtpChallengeRepository {
	return f.otps
}

func (f *fakeRepoFactory) TotpRepo() repository.TotpRepository {
	return f.totps
}

func (f *fakeRepoFactory) WebAuthnRepo() repository.WebAuthnCredentialRepository {
	return f.webauthns
}

func (f *fakeRepoFactory) RefreshTokenRepo() repository.RefreshTokenRepository {
	return f.refreshTokens
}

func (f *fakeRepoFactory) AppRepo() repository.RegisteredAppRepository {
	return f.apps
}

func (f *fakeRepoFactory) AuditRepo() repository.AuditEventRepository {
	return f.audits
}

// fakeTxManager runs the closure directly against the fake factory. Commit
// versus rollback is the production manager's concern and is not simulated.
type fakeTxManager struct {
	factory repository.RepositoryFactory
}

func (m *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(m.factory)
}

// --- repository mocks ---

type mockAccountRepo struct {
	mock.Mock
}

func (m *mockAccountRepo) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	args := m.Called(ctx, email)
	if account, ok := args.Get(0).(*entity.Account); ok {
		return account, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockAccountRepo) FindByIdentifier(ctx context.Context, identifier string) (*entity.Account, error) {
	args := m.Called(ctx, identifier)
	if account, ok := args.Get(0).(*entity.Account); ok {
		return account, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockAccountRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	args := m.Called(ctx, id)
	if account, ok := args.Get(0).(*entity.Account); ok {
		return account, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockAccountRepo) Create(ctx context.Context, account *entity.Account) error {
	args := m.Called(ctx, account)

	return args.Error(0)
}

func (m *mockAccountRepo) Update(ctx context.Context, account *entity.Account) error {
	args := m.Called(ctx, account)

	return args.Error(0)
}

type mockOtpRepo struct {
	mock.Mock
}

func (m *mockOtpRepo) Create(ctx context.Context, challenge *entity.OtpChallenge) error {
	args := m.Called(ctx, challenge)

	return args.Error(0)
}

func (m *mockOtpRepo) FindBySessionID(ctx context.Context, sessionID uuid.UUID) (*entity.OtpChallenge, error) {
	args := m.Called(ctx, sessionID)
	if challenge, ok := args.Get(0).(*entity.OtpChallenge); ok {
		return challenge, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockOtpRepo) FindLatestByDestination(ctx context.Context, destination string) (*entity.OtpChallenge, error) {
	args := m.Called(ctx, destination)
	if challenge, ok := args.Get(0).(*entity.OtpChallenge); ok {
		return challenge, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockOtpRepo) FindRecentByDestination(ctx context.Context, destination string) (*entity.OtpChallenge, error) {
	args := m.Called(ctx, destination)
	if challenge, ok := args.Get(0).(*entity.OtpChallenge); ok {
		return challenge, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockOtpRepo) Update(ctx context.Context, challenge *entity.OtpChallenge) error {
	args := m.Called(ctx, challenge)

	return args.Error(0)
}

func (m *mockOtpRepo) IncrementAttempts(ctx context.Context, sessionID uuid.UUID) error {
	args := m.Called(ctx, sessionID)

	return args.Error(0)
}

func (m *mockOtpRepo) Consume(ctx context.Context, sessionID uuid.UUID) error {
	args := m.Called(ctx, sessionID)

	return args.Error(0)
}

func (m *mockOtpRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) error {
	args := m.Called(ctx, cutoff)

	return args.Error(0)
}

type mockTotpRepo struct {
	mock.Mock
}

func (m *mockTotpRepo) Upsert(ctx context.Context, enrollment *entity.TotpEnrollment) error {
	args := m.Called(ctx, enrollment)

	return args.Error(0)
}

func (m *mockTotpRepo) FindByUsername(ctx context.Context, username string) (*entity.TotpEnrollment, error) {
	args := m.Called(ctx, username)
	if enrollment, ok := args.Get(0).(*entity.TotpEnrollment); ok {
		return enrollment, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockTotpRepo) AdvanceLastUsedStep(ctx context.Context, username string, step int64) error {
	args := m.Called(ctx, username, step)

	return args.Error(0)
}

type mockWebAuthnRepo struct {
	mock.Mock
}

func (m *mockWebAuthnRepo) Create(ctx context.Context, credential *entity.WebAuthnCredential) error {
	args := m.Called(ctx, credential)

	return args.Error(0)
}

func (m *mockWebAuthnRepo) FindByCredentialID(ctx context.Context, credentialID string) (*entity.WebAuthnCredential, error) {
	args := m.Called(ctx, credentialID)
	if credential, ok := args.Get(0).(*entity.WebAuthnCredential); ok {
		return credential, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockWebAuthnRepo) FindByUsername(ctx context.Context, username string) ([]*entity.WebAuthnCredential, error) {
	args := m.Called(ctx, username)
	if credentials, ok := args.Get(0).([]*entity.WebAuthnCredential); ok {
		return credentials, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockWebAuthnRepo) AdvanceSignCount(ctx context.Context, credentialID string, signCount uint32) error {
	args := m.Called(ctx, credentialID, signCount)

	return args.Error(0)
}

type mockRefreshTokenRepo struct {
	mock.Mock
}

func (m *mockRefreshTokenRepo) Create(ctx context.Context, token *entity.RefreshToken) error {
	args := m.Called(ctx, token)

	return args.Error(0)
}

func (m *mockRefreshTokenRepo) FindActiveByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if token, ok := args.Get(0).(*entity.RefreshToken); ok {
		return token, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockRefreshTokenRepo) Revoke(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *mockRefreshTokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)

	return args.Error(0)
}

func (m *mockRefreshTokenRepo) RevokeAllByAccountID(ctx context.Context, accountID uuid.UUID) error {
	args := m.Called(ctx, accountID)

	return args.Error(0)
}

func (m *mockRefreshTokenRepo) FindActiveByAccountID(ctx context.Context, accountID uuid.UUID) ([]*entity.RefreshToken, error) {
	args := m.Called(ctx, accountID)
	if tokens, ok := args.Get(0).([]*entity.RefreshToken); ok {
		return tokens, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockRefreshTokenRepo) CountActiveByAccountID(ctx context.Context, accountID uuid.UUID) (int, error) {
	args := m.Called(ctx, accountID)

	return args.Int(0), args.Error(1)
}

type mockAppRepo struct {
	mock.Mock
}

func (m *mockAppRepo) Create(ctx context.Context, app *entity.RegisteredApp) error {
	args := m.Called(ctx, app)

	return args.Error(0)
}

func (m *mockAppRepo) FindByAPIKeyHash(ctx context.Context, apiKeyHash string) (*entity.RegisteredApp, error) {
	args := m.Called(ctx, apiKeyHash)
	if app, ok := args.Get(0).(*entity.RegisteredApp); ok {
		return app, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockAppRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.RegisteredApp, error) {
	args := m.Called(ctx, id)
	if app, ok := args.Get(0).(*entity.RegisteredApp); ok {
		return app, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockAppRepo) Update(ctx context.Context, app *entity.RegisteredApp) error {
	args := m.Called(ctx, app)

	return args.Error(0)
}

func (m *mockAppRepo) List(ctx context.Context) ([]*entity.RegisteredApp, error) {
	args := m.Called(ctx)
	if apps, ok := args.Get(0).([]*entity.RegisteredApp); ok {
		return apps, args.Error(1)
	}

	return nil, args.Error(1)
}

type mockAuditRepo struct {
	mock.Mock
}

func (m *mockAuditRepo) Create(ctx context.Context, event *entity.AuditEvent) error {
	args := m.Called(ctx, event)

	return args.Error(0)
}

func (m *mockAuditRepo) ListByAppID(ctx context.Context, appID uuid.UUID, limit int) ([]*entity.AuditEvent, error) {
	args := m.Called(ctx, appID, limit)
	if events, ok := args.Get(0).([]*entity.AuditEvent); ok {
		return events, args.Error(1)
	}

	return nil, args.Error(1)
}

// --- domain service mocks ---

type mockCodeHasher struct {
	mock.Mock
}

func (m *mockCodeHasher) Hash(code string) (string, error) {
	args := m.Called(code)

	return args.String(0), args.Error(1)
}

func (m *mockCodeHasher) Check(code, hash string) bool {
	args := m.Called(code, hash)

	return args.Bool(0)
}

type mockOtpGenerator struct {
	mock.Mock
}

func (m *mockOtpGenerator) Generate() (string, error) {
	args := m.Called()

	return args.String(0), args.Error(1)
}

type mockOtpSender struct {
	mock.Mock
}

func (m *mockOtpSender) Send(ctx context.Context, destination, code string) error {
	args := m.Called(ctx, destination, code)

	return args.Error(0)
}

type mockTotpProvider struct {
	mock.Mock
}

func (m *mockTotpProvider) Enroll(username string) (*service.TotpProvisioning, error) {
	args := m.Called(username)
	if provisioning, ok := args.Get(0).(*service.TotpProvisioning); ok {
		return provisioning, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockTotpProvider) MatchStep(secret, code string, now time.Time) (int64, bool, error) {
	args := m.Called(secret, code, now)

	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) IssueAccessToken(accountID uuid.UUID, email string) (string, error) {
	args := m.Called(accountID, email)

	return args.String(0), args.Error(1)
}

func (m *mockTokenService) IssueRefreshToken(accountID uuid.UUID) (string, error) {
	args := m.Called(accountID)

	return args.String(0), args.Error(1)
}

func (m *mockTokenService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if claims, ok := args.Get(0).(*service.Claims); ok {
		return claims, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockTokenService) HashToken(token string) string {
	args := m.Called(token)

	return args.String(0)
}

func (m *mockTokenService) AccessTokenTTL() time.Duration {
	args := m.Called()

	return args.Get(0).(time.Duration)
}

func (m *mockTokenService) RefreshTokenTTL() time.Duration {
	args := m.Called()

	return args.Get(0).(time.Duration)
}

type mockCeremonyStore struct {
	mock.Mock
}

func (m *mockCeremonyStore) Put(username string, session *webauthn.SessionData) (string, error) {
	args := m.Called(username, session)

	return args.String(0), args.Error(1)
}

func (m *mockCeremonyStore) Take(token, username string) (*webauthn.SessionData, error) {
	args := m.Called(token, username)
	if session, ok := args.Get(0).(*webauthn.SessionData); ok {
		return session, args.Error(1)
	}

	return nil, args.Error(1)
}

type mockWebAuthnProvider struct {
	mock.Mock
}

func (m *mockWebAuthnProvider) BeginRegistration(user webauthn.User) (*protocol.CredentialCreation, *webauthn.SessionData, error) {
	args := m.Called(user)
	creation, _ := args.Get(0).(*protocol.CredentialCreation)
	session, _ := args.Get(1).(*webauthn.SessionData)

	return creation, session, args.Error(2)
}

func (m *mockWebAuthnProvider) FinishRegistration(user webauthn.User, session webauthn.SessionData, response *protocol.ParsedCredentialCreationData) (*webauthn.Credential, error) {
	args := m.Called(user, session, response)
	if credential, ok := args.Get(0).(*webauthn.Credential); ok {
		return credential, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockWebAuthnProvider) BeginLogin(user webauthn.User) (*protocol.CredentialAssertion, *webauthn.SessionData, error) {
	args := m.Called(user)
	assertion, _ := args.Get(0).(*protocol.CredentialAssertion)
	session, _ := args.Get(1).(*webauthn.SessionData)

	return assertion, session, args.Error(2)
}

func (m *mockWebAuthnProvider) FinishLogin(user webauthn.User, session webauthn.SessionData, response *protocol.ParsedCredentialAssertionData) (*webauthn.Credential, error) {
	args := m.Called(user, session, response)
	if credential, ok := args.Get(0).(*webauthn.Credential); ok {
		return credential, args.Error(1)
	}

	return nil, args.Error(1)
}

type mockRateLimiter struct {
	mock.Mock
}

func (m *mockRateLimiter) Allow(key string, perMinute, perHour int) bool {
	args := m.Called(key, perMinute, perHour)

	return args.Bool(0)
}

func (m *mockRateLimiter) Reset(key string) {
	m.Called(key)
}

type mockQRCodeService struct {
	mock.Mock
}

func (m *mockQRCodeService) GeneratePNG(content string, size int) ([]byte, error) {
	args := m.Called(content, size)
	if png, ok := args.Get(0).([]byte); ok {
		return png, args.Error(1)
	}

	return nil, args.Error(1)
}
