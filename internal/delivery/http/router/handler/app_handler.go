package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"passwordless/internal/delivery/http/response"
	"passwordless/internal/domain/entity"
	"passwordless/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AppHandler holds dependencies for the registered app directory handlers.
type AppHandler struct {
	uc     usecase.AppUsecase
	logger *slog.Logger
}

// NewAppHandler is the constructor for AppHandler, injected by Fx.
func NewAppHandler(uc usecase.AppUsecase, logger *slog.Logger) *AppHandler {
	return &AppHandler{
		uc:     uc,
		logger: logger,
	}
}

type registerAppRequest struct {
	Name               string `json:"name" validate:"required"`
	Description        string `json:"description"`
	RateLimitPerMinute int    `json:"rate_limit_per_minute"`
	RateLimitPerHour   int    `json:"rate_limit_per_hour"`
}

type updateAppRequest struct {
	Description        *string `json:"description"`
	Active             *bool   `json:"active"`
	RateLimitPerMinute *int    `json:"rate_limit_per_minute"`
	RateLimitPerHour   *int    `json:"rate_limit_per_hour"`
}

type appResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	Description        string     `json:"description,omitempty"`
	APIKey             string     `json:"api_key,omitempty"` // Present only on the registration response.
	Active             bool       `json:"active"`
	RateLimitPerMinute int        `json:"rate_limit_per_minute"`
	RateLimitPerHour   int        `json:"rate_limit_per_hour"`
	LastUsedAt         *time.Time `json:"last_used_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

func newAppResponse(app *entity.RegisteredApp) appResponse {
	return appResponse{
		ID:                 app.ID,
		Name:               app.Name,
		Description:        app.Description,
		APIKey:             app.APIKey,
		Active:             app.Active,
		RateLimitPerMinute: app.RateLimitPerMinute,
		RateLimitPerHour:   app.RateLimitPerHour,
		LastUsedAt:         app.LastUsedAt,
		CreatedAt:          app.CreatedAt,
	}
}

type auditEventResponse struct {
	ID        uuid.UUID `json:"id"`
	Operation string    `json:"operation"`
	Subject   string    `json:"subject,omitempty"`
	Outcome   string    `json:"outcome"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterApp creates a new API caller. The response carries the plaintext
// API key exactly once.
func (h *AppHandler) RegisterApp(c echo.Context) error {
	var req registerAppRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	app, err := h.uc.RegisterApp(c.Request().Context(), usecase.RegisterAppInput{
		Name:               req.Name,
		Description:        req.Description,
		RateLimitPerMinute: req.RateLimitPerMinute,
		RateLimitPerHour:   req.RateLimitPerHour,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, newAppResponse(app), "App registered successfully")
}

// ListApps returns the registered app directory.
func (h *AppHandler) ListApps(c echo.Context) error {
	apps, err := h.uc.ListApps(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	items := make([]appResponse, 0, len(apps))
	for _, app := range apps {
		items = append(items, newAppResponse(app))
	}

	return response.Success(c, http.StatusOK, items, "Apps retrieved")
}

// UpdateApp adjusts a registered app's limits or active flag.
func (h *AppHandler) UpdateApp(c echo.Context) error {
	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid app ID format")
	}

	var req updateAppRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid update input")
	}

	app, err := h.uc.UpdateApp(c.Request().Context(), usecase.UpdateAppInput{
		ID:                 appID,
		Description:        req.Description,
		Active:             req.Active,
		RateLimitPerMinute: req.RateLimitPerMinute,
		RateLimitPerHour:   req.RateLimitPerHour,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newAppResponse(app), "App updated successfully")
}

// ResetRateLimit clears the accumulated usage for an app.
func (h *AppHandler) ResetRateLimit(c echo.Context) error {
	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid app ID format")
	}

	if err := h.uc.ResetRateLimit(c.Request().Context(), appID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Rate limit reset"}, "Rate limit reset")
}

// AuditTrail returns the most recent audit events for an app.
func (h *AppHandler) AuditTrail(c echo.Context) error {
	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid app ID format")
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid limit")
		}
	}

	events, err := h.uc.AuditTrail(c.Request().Context(), appID, limit)
	if err != nil {
		return errors.WithStack(err)
	}

	items := make([]auditEventResponse, 0, len(events))
	for _, event := range events {
		items = append(items, auditEventResponse{
			ID:        event.ID,
			Operation: event.Operation,
			Subject:   event.Subject,
			Outcome:   event.Outcome,
			IPAddress: event.IPAddress,
			CreatedAt: event.CreatedAt,
		})
	}

	return response.Success(c, http.StatusOK, items, "Audit trail retrieved")
}
