package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"passwordless/internal/delivery/http/response"
	"passwordless/internal/domain/entity"
	"passwordless/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// WebAuthnHandler holds dependencies for FIDO2 ceremony handlers.
type WebAuthnHandler struct {
	uc     usecase.WebAuthnUsecase
	appUc  usecase.AppUsecase
	logger *slog.Logger
}

// NewWebAuthnHandler is the constructor for WebAuthnHandler, injected by Fx.
func NewWebAuthnHandler(uc usecase.WebAuthnUsecase, appUc usecase.AppUsecase, logger *slog.Logger) *WebAuthnHandler {
	return &WebAuthnHandler{
		uc:     uc,
		appUc:  appUc,
		logger: logger,
	}
}

type beginCeremonyRequest struct {
	Username string `json:"username" validate:"required"`
}

type finishRegistrationRequest struct {
	Username      string          `json:"username" validate:"required"`
	CeremonyToken string          `json:"ceremony_token" validate:"required"`
	Response      json.RawMessage `json:"response" validate:"required"`
}

type credentialResponse struct {
	CredentialID string     `json:"credential_id"`
	Transports   []string   `json:"transports,omitempty"`
	SignCount    uint32     `json:"sign_count"`
	BackedUp     bool       `json:"backed_up"`
	LastUsedAt   *time.Time `json:"last_used_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func newCredentialResponse(cred *entity.WebAuthnCredential) credentialResponse {
	return credentialResponse{
		CredentialID: cred.CredentialID,
		Transports:   cred.Transports,
		SignCount:    cred.SignCount,
		BackedUp:     cred.BackedUp,
		LastUsedAt:   cred.LastUsedAt,
		CreatedAt:    cred.CreatedAt,
	}
}

// BeginRegistration starts an attestation ceremony.
func (h *WebAuthnHandler) BeginRegistration(c echo.Context) error {
	var req beginCeremonyRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid ceremony input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.BeginRegistration(c.Request().Context(), usecase.BeginWebAuthnInput{
		Username: req.Username,
	})
	recordAudit(c, h.appUc, "webauthn.register.begin", req.Username, err)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"ceremony_token": output.CeremonyToken,
		"options":        output.Options,
	}, "Registration ceremony started")
}

// FinishRegistration completes an attestation ceremony and stores the
// new credential.
func (h *WebAuthnHandler) FinishRegistration(c echo.Context) error {
	var req finishRegistrationRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid ceremony input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	credential, err := h.uc.FinishRegistration(c.Request().Context(), usecase.FinishWebAuthnRegistrationInput{
		Username:      req.Username,
		CeremonyToken: req.CeremonyToken,
		Response:      req.Response,
	})
	recordAudit(c, h.appUc, "webauthn.register.finish", req.Username, err)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, newCredentialResponse(credential), "Credential registered")
}

// BeginLogin starts an assertion ceremony. The finish half is the
// WebAuthn login endpoint, which also issues tokens.
func (h *WebAuthnHandler) BeginLogin(c echo.Context) error {
	var req beginCeremonyRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid ceremony input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.BeginLogin(c.Request().Context(), usecase.BeginWebAuthnInput{
		Username: req.Username,
	})
	recordAudit(c, h.appUc, "webauthn.login.begin", req.Username, err)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"ceremony_token": output.CeremonyToken,
		"options":        output.Options,
	}, "Login ceremony started")
}

// ListCredentials returns the credentials registered for a principal.
func (h *WebAuthnHandler) ListCredentials(c echo.Context) error {
	username := c.Param("username")
	if username == "" {
		return response.BadRequest(c, "INVALID_INPUT", "Username is required")
	}

	credentials, err := h.uc.ListCredentials(c.Request().Context(), username)
	if err != nil {
		return errors.WithStack(err)
	}

	items := make([]credentialResponse, 0, len(credentials))
	for _, cred := range credentials {
		items = append(items, newCredentialResponse(cred))
	}

	return response.Success(c, http.StatusOK, items, "Credentials retrieved")
}
