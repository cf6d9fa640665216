package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"passwordless/internal/delivery/http/response"
	"passwordless/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthHandler holds dependencies for login and token lifecycle handlers.
type AuthHandler struct {
	uc     usecase.AuthUsecase
	appUc  usecase.AppUsecase
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase, appUc usecase.AppUsecase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		uc:     uc,
		appUc:  appUc,
		logger: logger,
	}
}

type otpLoginRequest struct {
	Destination string `json:"destination" validate:"required"`
	SessionID   string `json:"session_id"`
	Code        string `json:"code" validate:"required"`
}

type totpLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Code     string `json:"code" validate:"required"`
}

type webauthnLoginRequest struct {
	Username      string          `json:"username" validate:"required"`
	CeremonyToken string          `json:"ceremony_token" validate:"required"`
	Response      json.RawMessage `json:"response" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type revokeRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type accountResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Phone string    `json:"phone,omitempty"`
}

type loginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int64           `json:"expires_in"`
	Account      accountResponse `json:"account"`
	LowAssurance bool            `json:"low_assurance,omitempty"`
}

func newLoginResponse(output *usecase.LoginOutput) loginResponse {
	return loginResponse{
		AccessToken:  output.Tokens.AccessToken,
		RefreshToken: output.Tokens.RefreshToken,
		TokenType:    output.Tokens.TokenType,
		ExpiresIn:    output.Tokens.ExpiresIn,
		Account: accountResponse{
			ID:    output.Account.ID,
			Email: output.Account.Email,
			Phone: output.Account.Phone,
		},
		LowAssurance: output.LowAssurance,
	}
}

func clientInfo(c echo.Context) usecase.ClientInfo {
	return usecase.ClientInfo{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}

// LoginWithOtp handles code verification for a previously issued challenge.
func (h *AuthHandler) LoginWithOtp(c echo.Context) error {
	var req otpLoginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	input := usecase.LoginWithOtpInput{
		Destination: req.Destination,
		Code:        req.Code,
		Client:      clientInfo(c),
	}
	if req.SessionID != "" {
		sessionID, err := uuid.Parse(req.SessionID)
		if err != nil {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid session ID format")
		}
		input.SessionID = sessionID
	}

	output, err := h.uc.LoginWithOtp(c.Request().Context(), input)
	recordAudit(c, h.appUc, "auth.login.otp", req.Destination, err)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newLoginResponse(output), "Login successful")
}

// LoginWithTotp handles authenticator-app code verification.
func (h *AuthHandler) LoginWithTotp(c echo.Context) error {
	var req totpLoginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.LoginWithTotp(c.Request().Context(), usecase.LoginWithTotpInput{
		Username: req.Username,
		Code:     req.Code,
		Client:   clientInfo(c),
	})
	recordAudit(c, h.appUc, "auth.login.totp", req.Username, err)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newLoginResponse(output), "Login successful")
}

// LoginWithWebAuthn finishes an assertion ceremony and issues tokens.
func (h *AuthHandler) LoginWithWebAuthn(c echo.Context) error {
	var req webauthnLoginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.LoginWithWebAuthn(c.Request().Context(), usecase.LoginWithWebAuthnInput{
		Username:      req.Username,
		CeremonyToken: req.CeremonyToken,
		Response:      req.Response,
		Client:        clientInfo(c),
	})
	recordAudit(c, h.appUc, "auth.login.webauthn", req.Username, err)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newLoginResponse(output), "Login successful")
}

// Refresh rotates a refresh token for a fresh pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid refresh input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Refresh(c.Request().Context(), usecase.RefreshInput{
		RefreshToken: req.RefreshToken,
		Client:       clientInfo(c),
	})
	recordAudit(c, h.appUc, "auth.refresh", accountSubject(output), err)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newLoginResponse(output), "Token refreshed successfully")
}

// Revoke invalidates a single refresh token.
func (h *AuthHandler) Revoke(c echo.Context) error {
	var req revokeRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid revoke input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	err := h.uc.Revoke(c.Request().Context(), req.RefreshToken)
	recordAudit(c, h.appUc, "auth.revoke", "", err)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Token revoked"}, "Token revoked")
}

func accountSubject(output *usecase.LoginOutput) string {
	if output == nil || output.Account == nil {
		return ""
	}

	return output.Account.Email
}
