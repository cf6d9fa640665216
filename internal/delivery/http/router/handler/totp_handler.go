package handler

import (
	"log/slog"
	"net/http"

	"passwordless/internal/delivery/http/response"
	"passwordless/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// TotpHandler holds dependencies for authenticator-app enrollment handlers.
type TotpHandler struct {
	uc     usecase.TotpUsecase
	appUc  usecase.AppUsecase
	logger *slog.Logger
}

// NewTotpHandler is the constructor for TotpHandler, injected by Fx.
func NewTotpHandler(uc usecase.TotpUsecase, appUc usecase.AppUsecase, logger *slog.Logger) *TotpHandler {
	return &TotpHandler{
		uc:     uc,
		appUc:  appUc,
		logger: logger,
	}
}

type enrollTotpRequest struct {
	Username string `json:"username" validate:"required"`
	QRSize   int    `json:"qr_size"`
}

type enrollTotpResponse struct {
	Secret string `json:"secret"`
	URI    string `json:"uri"`
	QRCode []byte `json:"qr_code_png"` // Base64-encoded PNG in the JSON body.
}

// Enroll provisions a new shared secret and returns it with a QR code.
// Re-enrolling an existing username replaces the previous secret.
func (h *TotpHandler) Enroll(c echo.Context) error {
	var req enrollTotpRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid enrollment input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Enroll(c.Request().Context(), usecase.EnrollTotpInput{
		Username: req.Username,
		QRSize:   req.QRSize,
	})
	recordAudit(c, h.appUc, "totp.enroll", req.Username, err)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, enrollTotpResponse{
		Secret: output.Secret,
		URI:    output.URI,
		QRCode: output.QRCodePNG,
	}, "Enrollment created")
}
