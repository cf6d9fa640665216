package usecase

import (
	"context"

	"github.com/google/uuid"

	"passwordless/internal/domain/entity"
)

// RegisterAppInput defines the data required to register an API caller.
// Zero rate limits fall back to the configured defaults.
type RegisterAppInput struct {
	Name               string
	Description        string
	RateLimitPerMinute int
	RateLimitPerHour   int
}

// UpdateAppInput adjusts a registered app's limits or active flag.
type UpdateAppInput struct {
	ID                 uuid.UUID
	Description        *string
	Active             *bool
	RateLimitPerMinute *int
	RateLimitPerHour   *int
}

// AppUsecase manages the registered app directory and API-key authentication.
type AppUsecase interface {
	// RegisterApp creates a caller and returns it with the plaintext API key
	// populated. The key is not retrievable afterwards.
	RegisterApp(ctx context.Context, input RegisterAppInput) (*entity.RegisteredApp, error)

	// AuthenticateAPIKey resolves an API key to its active app and checks
	// the app's rate budgets, consuming one unit on success. Exhausted
	// budgets fail with ErrRateLimitExceeded.
	AuthenticateAPIKey(ctx context.Context, apiKey string) (*entity.RegisteredApp, error)

	// UpdateApp adjusts limits or deactivates a caller.
	UpdateApp(ctx context.Context, input UpdateAppInput) (*entity.RegisteredApp, error)

	// ListApps returns all registered apps.
	ListApps(ctx context.Context) ([]*entity.RegisteredApp, error)

	// ResetRateLimit clears the accumulated usage for an app.
	ResetRateLimit(ctx context.Context, appID uuid.UUID) error

	// RecordAudit appends an audit event for an operation performed by an app.
	RecordAudit(ctx context.Context, event *entity.AuditEvent)

	// AuditTrail returns the most recent audit events for an app.
	AuditTrail(ctx context.Context, appID uuid.UUID, limit int) ([]*entity.AuditEvent, error)
}
