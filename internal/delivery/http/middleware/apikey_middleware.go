package middleware

import (
	deliverycontext "passwordless/internal/delivery/context"
	"passwordless/internal/delivery/http/response"
	"passwordless/internal/usecase"

	"github.com/labstack/echo/v4"
)

// HeaderXAPIKey is the header registered apps present on every call.
const HeaderXAPIKey = "X-API-Key"

// APIKeyMiddleware authenticates registered apps and enforces their
// per-app rate budgets before the request reaches a handler.
type APIKeyMiddleware struct {
	appUc usecase.AppUsecase
}

// NewAPIKeyMiddleware is the constructor for APIKeyMiddleware.
func NewAPIKeyMiddleware(appUc usecase.AppUsecase) *APIKeyMiddleware {
	return &APIKeyMiddleware{appUc: appUc}
}

// Authenticate resolves the X-API-Key header to an active registered app.
// Rate-limit denial surfaces here as 429 before any credential work happens.
func (m *APIKeyMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		apiKey := c.Request().Header.Get(HeaderXAPIKey)
		if apiKey == "" {
			return response.Unauthorized(c, "MISSING_API_KEY", "X-API-Key header is missing")
		}

		app, err := m.appUc.AuthenticateAPIKey(c.Request().Context(), apiKey)
		if err != nil {
			return err
		}

		ctx := deliverycontext.WithApp(c.Request().Context(), app)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}
