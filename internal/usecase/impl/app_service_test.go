package impl

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"passwordless/internal/domain/entity"
	domainerrors "passwordless/internal/domain/errors"
	"passwordless/internal/domain/repository"
	"passwordless/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type appServiceFixture struct {
	apps    *mockAppRepo
	audits  *mockAuditRepo
	limiter *mockRateLimiter
	svc     usecase.AppUsecase
}

func newAppServiceFixture(t *testing.T) *appServiceFixture {
	t.Helper()

	f := &appServiceFixture{
		apps:    new(mockAppRepo),
		audits:  new(mockAuditRepo),
		limiter: new(mockRateLimiter),
	}
	f.svc = NewAppService(AppServiceParams{
		AppRepo:   f.apps,
		AuditRepo: f.audits,
		Limiter:   f.limiter,
		Logger:    testLogger(),
	})

	return f
}

func TestAppService_RegisterApp_ReturnsKeyOnce(t *testing.T) {
	f := newAppServiceFixture(t)

	var stored *entity.RegisteredApp
	var plaintextAtCreate string
	f.apps.On("Create", mock.Anything, mock.AnythingOfType("*entity.RegisteredApp")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*entity.RegisteredApp)
			plaintextAtCreate = stored.APIKey
		}).Return(nil)

	app, err := f.svc.RegisterApp(context.Background(), usecase.RegisterAppInput{Name: "checkout"})

	require.NoError(t, err)
	require.NotEmpty(t, app.APIKey)
	require.NotNil(t, stored)
	// The persisted record carries the hash, never the plaintext.
	require.Empty(t, plaintextAtCreate)
	sum := sha256.Sum256([]byte(app.APIKey))
	require.Equal(t, hex.EncodeToString(sum[:]), stored.APIKeyHash)
	require.True(t, app.Active)
	// Unspecified limits fall back to the defaults.
	require.Equal(t, 60, app.RateLimitPerMinute)
	require.Equal(t, 1000, app.RateLimitPerHour)
}

func TestAppService_AuthenticateAPIKey_Success(t *testing.T) {
	f := newAppServiceFixture(t)
	app := &entity.RegisteredApp{
		ID:                 uuid.New(),
		Name:               "checkout",
		Active:             true,
		RateLimitPerMinute: 60,
		RateLimitPerHour:   1000,
	}

	sum := sha256.Sum256([]byte("the-key"))
	f.apps.On("FindByAPIKeyHash", mock.Anything, hex.EncodeToString(sum[:])).Return(app, nil)
	f.limiter.On("Allow", app.ID.String(), 60, 1000).Return(true)
	f.apps.On("Update", mock.Anything, app).Return(nil)

	resolved, err := f.svc.AuthenticateAPIKey(context.Background(), "the-key")

	require.NoError(t, err)
	require.Equal(t, app.ID, resolved.ID)
	require.NotNil(t, resolved.LastUsedAt)
}

func TestAppService_AuthenticateAPIKey_UnknownKey(t *testing.T) {
	f := newAppServiceFixture(t)

	f.apps.On("FindByAPIKeyHash", mock.Anything, mock.AnythingOfType("string")).
		Return(nil, repository.ErrAppNotFound)

	_, err := f.svc.AuthenticateAPIKey(context.Background(), "bogus")

	require.ErrorIs(t, err, domainerrors.ErrInvalidAPIKey)
	f.limiter.AssertNotCalled(t, "Allow", mock.Anything, mock.Anything, mock.Anything)
}

func TestAppService_AuthenticateAPIKey_RateLimited(t *testing.T) {
	f := newAppServiceFixture(t)
	app := &entity.RegisteredApp{
		ID:                 uuid.New(),
		Active:             true,
		RateLimitPerMinute: 1,
		RateLimitPerHour:   10,
	}

	f.apps.On("FindByAPIKeyHash", mock.Anything, mock.AnythingOfType("string")).Return(app, nil)
	f.limiter.On("Allow", app.ID.String(), 1, 10).Return(false)

	_, err := f.svc.AuthenticateAPIKey(context.Background(), "the-key")

	require.ErrorIs(t, err, domainerrors.ErrRateLimitExceeded)
	f.apps.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAppService_UpdateApp_PatchesFields(t *testing.T) {
	f := newAppServiceFixture(t)
	app := &entity.RegisteredApp{
		ID:                 uuid.New(),
		Active:             true,
		RateLimitPerMinute: 60,
		RateLimitPerHour:   1000,
	}

	f.apps.On("FindByID", mock.Anything, app.ID).Return(app, nil)
	f.apps.On("Update", mock.Anything, app).Return(nil)

	deactivate := false
	perMinute := 30
	updated, err := f.svc.UpdateApp(context.Background(), usecase.UpdateAppInput{
		ID:                 app.ID,
		Active:             &deactivate,
		RateLimitPerMinute: &perMinute,
	})

	require.NoError(t, err)
	require.False(t, updated.Active)
	require.Equal(t, 30, updated.RateLimitPerMinute)
	require.Equal(t, 1000, updated.RateLimitPerHour)
}

func TestAppService_ResetRateLimit(t *testing.T) {
	f := newAppServiceFixture(t)
	appID := uuid.New()

	f.apps.On("FindByID", mock.Anything, appID).Return(&entity.RegisteredApp{ID: appID}, nil)
	f.limiter.On("Reset", appID.String()).Return()

	require.NoError(t, f.svc.ResetRateLimit(context.Background(), appID))
	f.limiter.AssertCalled(t, "Reset", appID.String())
}

func TestAppService_ResetRateLimit_UnknownApp(t *testing.T) {
	f := newAppServiceFixture(t)
	appID := uuid.New()

	f.apps.On("FindByID", mock.Anything, appID).Return(nil, repository.ErrAppNotFound)

	err := f.svc.ResetRateLimit(context.Background(), appID)

	require.ErrorIs(t, err, domainerrors.ErrAppNotFound)
	f.limiter.AssertNotCalled(t, "Reset", mock.Anything)
}

func TestAppService_RecordAudit_BestEffort(t *testing.T) {
	f := newAppServiceFixture(t)
	event := &entity.AuditEvent{AppID: uuid.New(), Operation: "otp.issue", Outcome: "success"}

	f.audits.On("Create", mock.Anything, event).Return(domainerrors.ErrInternalError)

	// A failed audit write must not panic or surface to the caller.
	f.svc.RecordAudit(context.Background(), event)
	f.audits.AssertCalled(t, "Create", mock.Anything, event)
}
