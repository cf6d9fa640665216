package repository

import (
	"context"

	"passwordless/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrAppNotFound is returned when no registered app matches the lookup.
var ErrAppNotFound = errors.New("registered app not found")

// RegisteredAppRepository manages API callers.
type RegisteredAppRepository interface {
	// Create persists a new registered app.
	Create(ctx context.Context, app *entity.RegisteredApp) error

	// FindByAPIKeyHash retrieves an active app by the hash of its API key.
	FindByAPIKeyHash(ctx context.Context, apiKeyHash string) (*entity.RegisteredApp, error)

	// FindByID retrieves an app by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.RegisteredApp, error)

	// Update persists changes to an existing app (rate caps, active flag, last-used).
	Update(ctx context.Context, app *entity.RegisteredApp) error

	// List returns all registered apps.
	List(ctx context.Context) ([]*entity.RegisteredApp, error)
}

// AuditEventRepository is the append-only audit trail.
type AuditEventRepository interface {
	// Create appends an audit event.
	Create(ctx context.Context, event *entity.AuditEvent) error

	// ListByAppID returns the most recent events for an app, newest first.
	ListByAppID(ctx context.Context, appID uuid.UUID, limit int) ([]*entity.AuditEvent, error)
}
