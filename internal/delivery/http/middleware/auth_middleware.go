package middleware

import (
	"strings"

	"passwordless/internal/delivery/http/response"
	"passwordless/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ContextKeyAccountID is where Authenticate stores the caller's account ID.
const ContextKeyAccountID = "accountID"

// ContextKeyAccountEmail is where Authenticate stores the caller's email.
const ContextKeyAccountEmail = "accountEmail"

// AuthMiddleware provides middleware for access-token authentication.
type AuthMiddleware struct {
	authUc usecase.AuthUsecase
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(authUc usecase.AuthUsecase) *AuthMiddleware {
	return &AuthMiddleware{authUc: authUc}
}

// Authenticate validates the bearer access token and stores the caller's
// identity on the echo context for handlers to use.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "MISSING_TOKEN", "Authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return response.Unauthorized(c, "INVALID_TOKEN_FORMAT", "Invalid token format, must be Bearer token")
		}

		claims, err := m.authUc.ValidateAccess(c.Request().Context(), tokenString)
		if err != nil {
			return err
		}

		c.Set(ContextKeyAccountID, claims.AccountID)
		c.Set(ContextKeyAccountEmail, claims.Email)

		return next(c)
	}
}
