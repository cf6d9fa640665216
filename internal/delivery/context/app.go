package context

import (
	"context"

	"passwordless/internal/domain/entity"
)

// WithApp returns a new context carrying the authenticated caller app.
func WithApp(ctx context.Context, app *entity.RegisteredApp) context.Context {
	return context.WithValue(ctx, KeyApp, app)
}

// GetApp extracts the authenticated caller app from context.Context.
// If not found, returns nil.
func GetApp(ctx context.Context) *entity.RegisteredApp {
	if app, ok := ctx.Value(KeyApp).(*entity.RegisteredApp); ok {
		return app
	}

	return nil
}
