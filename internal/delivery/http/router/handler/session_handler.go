package handler

import (
	"log/slog"
	"net/http"
	"time"

	"passwordless/internal/delivery/http/middleware"
	"passwordless/internal/delivery/http/response"
	"passwordless/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// SessionHandler holds dependencies for session management handlers.
type SessionHandler struct {
	uc     usecase.SessionUsecase
	logger *slog.Logger
}

// NewSessionHandler is the constructor for SessionHandler, injected by Fx.
func NewSessionHandler(uc usecase.SessionUsecase, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		uc:     uc,
		logger: logger,
	}
}

type sessionResponse struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}

func accountID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(middleware.ContextKeyAccountID).(uuid.UUID)

	return id, ok
}

// ListSessions returns the caller's active sessions.
func (h *SessionHandler) ListSessions(c echo.Context) error {
	id, ok := accountID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid account ID in token")
	}

	sessions, err := h.uc.GetActiveSessions(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	items := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, sessionResponse{
			ID:        s.ID,
			CreatedAt: s.CreatedAt,
			ExpiresAt: s.ExpiresAt,
			IPAddress: s.IPAddress,
			UserAgent: s.UserAgent,
		})
	}

	return response.Success(c, http.StatusOK, items, "Sessions retrieved")
}

// RevokeSession invalidates one of the caller's sessions.
func (h *SessionHandler) RevokeSession(c echo.Context) error {
	id, ok := accountID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid account ID in token")
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid session ID format")
	}

	if err := h.uc.RevokeSession(c.Request().Context(), id, sessionID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Session revoked"}, "Session revoked")
}

// RevokeAllSessions invalidates every active session for the caller.
func (h *SessionHandler) RevokeAllSessions(c echo.Context) error {
	id, ok := accountID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid account ID in token")
	}

	if err := h.uc.RevokeAllSessions(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "All sessions revoked"}, "All sessions revoked")
}
