// Package handler contains the HTTP handlers for the application.
package handler

import (
	deliverycontext "passwordless/internal/delivery/context"
	"passwordless/internal/domain/entity"
	"passwordless/internal/usecase"

	"github.com/labstack/echo/v4"
)

// recordAudit appends an audit event for the authenticated caller app.
// Requests that reached the handler without an app (unguarded routes) are
// not audited.
func recordAudit(c echo.Context, appUc usecase.AppUsecase, operation, subject string, err error) {
	app := deliverycontext.GetApp(c.Request().Context())
	if app == nil {
		return
	}

	outcome := "success"
	if err != nil {
		outcome = "failure"
	}

	appUc.RecordAudit(c.Request().Context(), &entity.AuditEvent{
		AppID:     app.ID,
		Operation: operation,
		Subject:   subject,
		Outcome:   outcome,
		IPAddress: c.RealIP(),
	})
}
