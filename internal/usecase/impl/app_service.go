package impl

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
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
	defaultRatePerMinute = 60
	defaultRatePerHour   = 1000

	apiKeyBytes = 32
)

// appService implements the AppUsecase interface.
type appService struct {
	appRepo          repository.RegisteredAppRepository
	auditRepo        repository.AuditEventRepository
	limiter          service.RateLimiter
	defaultPerMinute int
	defaultPerHour   int
	logger           *slog.Logger
}

// AppServiceParams holds dependencies for appService, injected by Fx.
type AppServiceParams struct {
	fx.In

	AppRepo   repository.RegisteredAppRepository
	AuditRepo repository.AuditEventRepository
	Limiter   service.RateLimiter
	Config    *config.Config
	Logger    *slog.Logger
}

// NewAppService is the constructor for appService.
func NewAppService(params AppServiceParams) usecase.AppUsecase {
	perMinute := defaultRatePerMinute
	perHour := defaultRatePerHour
	if params.Config != nil && params.Config.RateLimit != nil {
		if params.Config.RateLimit.DefaultPerMinute > 0 {
			perMinute = params.Config.RateLimit.DefaultPerMinute
		}
		if params.Config.RateLimit.DefaultPerHour > 0 {
			perHour = params.Config.RateLimit.DefaultPerHour
		}
	}

	return &appService{
		appRepo:          params.AppRepo,
		auditRepo:        params.AuditRepo,
		limiter:          params.Limiter,
		defaultPerMinute: perMinute,
		defaultPerHour:   perHour,
		logger:           params.Logger,
	}
}

func (srv *appService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// RegisterApp creates a caller and returns it with the plaintext API key
// populated. Only the hash is stored.
func (srv *appService) RegisterApp(ctx context.Context, input usecase.RegisterAppInput) (*entity.RegisteredApp, error) {
	apiKey, err := generateAPIKey()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate api key")
	}

	app := &entity.RegisteredApp{
		Name:               input.Name,
		Description:        input.Description,
		APIKeyHash:         hashAPIKey(apiKey),
		Active:             true,
		RateLimitPerMinute: input.RateLimitPerMinute,
		RateLimitPerHour:   input.RateLimitPerHour,
	}
	if app.RateLimitPerMinute <= 0 {
		app.RateLimitPerMinute = srv.defaultPerMinute
	}
	if app.RateLimitPerHour <= 0 {
		app.RateLimitPerHour = srv.defaultPerHour
	}

	if err := srv.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}

	// The plaintext key leaves the system exactly once, on this response.
	app.APIKey = apiKey

	srv.log(ctx).Info("App registered", slog.String("name", app.Name), slog.Any("appID", app.ID))

	return app, nil
}

// AuthenticateAPIKey resolves an API key to its active app and admits the
// request against the app's rate budgets.
func (srv *appService) AuthenticateAPIKey(ctx context.Context, apiKey string) (*entity.RegisteredApp, error) {
	app, err := srv.appRepo.FindByAPIKeyHash(ctx, hashAPIKey(apiKey))
	if err != nil {
		if errors.Is(err, repository.ErrAppNotFound) {
			return nil, domainerrors.ErrInvalidAPIKey
		}

		return nil, errors.Wrap(err, "failed to look up app by api key")
	}

	if !srv.limiter.Allow(app.ID.String(), app.RateLimitPerMinute, app.RateLimitPerHour) {
		srv.log(ctx).Warn("Rate limit exceeded", slog.Any("appID", app.ID))

		return nil, domainerrors.ErrRateLimitExceeded
	}

	now := time.Now()
	app.LastUsedAt = &now
	if err := srv.appRepo.Update(ctx, app); err != nil {
		// Stale last-used is not worth failing the request over.
		srv.log(ctx).Warn("Failed to stamp app last-used", slog.Any("appID", app.ID), slog.Any("error", err))
	}

	return app, nil
}

// UpdateApp adjusts limits or deactivates a caller.
func (srv *appService) UpdateApp(ctx context.Context, input usecase.UpdateAppInput) (*entity.RegisteredApp, error) {
	app, err := srv.appRepo.FindByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, repository.ErrAppNotFound) {
			return nil, domainerrors.ErrAppNotFound
		}

		return nil, errors.Wrap(err, "failed to load app")
	}

	if input.Description != nil {
		app.Description = *input.Description
	}
	if input.Active != nil {
		app.Active = *input.Active
	}
	if input.RateLimitPerMinute != nil && *input.RateLimitPerMinute > 0 {
		app.RateLimitPerMinute = *input.RateLimitPerMinute
	}
	if input.RateLimitPerHour != nil && *input.RateLimitPerHour > 0 {
		app.RateLimitPerHour = *input.RateLimitPerHour
	}

	if err := srv.appRepo.Update(ctx, app); err != nil {
		return nil, errors.Wrap(err, "failed to update app")
	}

	return app, nil
}

// ListApps returns all registered apps.
func (srv *appService) ListApps(ctx context.Context) ([]*entity.RegisteredApp, error) {
	apps, err := srv.appRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list apps")
	}

	return apps, nil
}

// ResetRateLimit clears the accumulated usage for an app.
func (srv *appService) ResetRateLimit(ctx context.Context, appID uuid.UUID) error {
	if _, err := srv.appRepo.FindByID(ctx, appID); err != nil {
		if errors.Is(err, repository.ErrAppNotFound) {
			return domainerrors.ErrAppNotFound
		}

		return errors.Wrap(err, "failed to load app")
	}

	srv.limiter.Reset(appID.String())
	srv.log(ctx).Info("Rate limit reset", slog.Any("appID", appID))

	return nil
}

// RecordAudit appends an audit event. Auditing is best-effort: a failed
// write is logged but never fails the request it describes.
func (srv *appService) RecordAudit(ctx context.Context, event *entity.AuditEvent) {
	if err := srv.auditRepo.Create(ctx, event); err != nil {
		srv.log(ctx).Error("Failed to record audit event",
			slog.Any("appID", event.AppID),
			slog.String("operation", event.Operation),
			slog.Any("error", err))
	}
}

// AuditTrail returns the most recent audit events for an app.
func (srv *appService) AuditTrail(ctx context.Context, appID uuid.UUID, limit int) ([]*entity.AuditEvent, error) {
	events, err := srv.auditRepo.ListByAppID(ctx, appID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load audit trail")
	}

	return events, nil
}

func generateAPIKey() (string, error) {
	buf := make([]byte, apiKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashAPIKey(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))

	return hex.EncodeToString(sum[:])
}
