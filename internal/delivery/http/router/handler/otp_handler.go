package handler

import (
	"log/slog"
	"net/http"
	"time"

	"passwordless/internal/delivery/http/response"
	"passwordless/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// OtpHandler holds dependencies for one-time code handlers.
type OtpHandler struct {
	uc     usecase.OtpUsecase
	appUc  usecase.AppUsecase
	logger *slog.Logger
}

// NewOtpHandler is the constructor for OtpHandler, injected by Fx.
func NewOtpHandler(uc usecase.OtpUsecase, appUc usecase.AppUsecase, logger *slog.Logger) *OtpHandler {
	return &OtpHandler{
		uc:     uc,
		appUc:  appUc,
		logger: logger,
	}
}

type issueOtpRequest struct {
	Destination string `json:"destination" validate:"required"`
}

type issueOtpResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueChallenge handles the request to send a one-time code.
func (h *OtpHandler) IssueChallenge(c echo.Context) error {
	var req issueOtpRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid challenge input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.IssueChallenge(c.Request().Context(), usecase.IssueOtpInput{
		Destination: req.Destination,
	})
	recordAudit(c, h.appUc, "otp.issue", req.Destination, err)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, issueOtpResponse{
		SessionID: output.SessionID,
		ExpiresAt: output.ExpiresAt,
	}, "Challenge issued")
}
