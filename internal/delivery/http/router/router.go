// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"passwordless/internal/delivery/http/middleware"
	"passwordless/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	OtpHandler       *handler.OtpHandler
	AuthHandler      *handler.AuthHandler
	TotpHandler      *handler.TotpHandler
	WebAuthnHandler  *handler.WebAuthnHandler
	SessionHandler   *handler.SessionHandler
	AppHandler       *handler.AppHandler
	AuthMiddleware   *middleware.AuthMiddleware
	APIKeyMiddleware *middleware.APIKeyMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	otpHandler       *handler.OtpHandler
	authHandler      *handler.AuthHandler
	totpHandler      *handler.TotpHandler
	webauthnHandler  *handler.WebAuthnHandler
	sessionHandler   *handler.SessionHandler
	appHandler       *handler.AppHandler
	authMiddleware   *middleware.AuthMiddleware
	apiKeyMiddleware *middleware.APIKeyMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		otpHandler:       params.OtpHandler,
		authHandler:      params.AuthHandler,
		totpHandler:      params.TotpHandler,
		webauthnHandler:  params.WebAuthnHandler,
		sessionHandler:   params.SessionHandler,
		appHandler:       params.AppHandler,
		authMiddleware:   params.AuthMiddleware,
		apiKeyMiddleware: params.APIKeyMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// API v1 routes require a registered app's API key
	apiV1 := e.Group("/api/v1")
	apiV1.Use(r.apiKeyMiddleware.Authenticate)

	// One-time code challenges
	otpGroup := apiV1.Group("/otp")
	{
		otpGroup.POST("/challenges", r.otpHandler.IssueChallenge)
	}

	// Login and token lifecycle
	authGroup := apiV1.Group("/auth")
	{
		authGroup.POST("/login/otp", r.authHandler.LoginWithOtp)
		authGroup.POST("/login/totp", r.authHandler.LoginWithTotp)
		authGroup.POST("/login/webauthn", r.authHandler.LoginWithWebAuthn)
		authGroup.POST("/refresh", r.authHandler.Refresh)
		authGroup.POST("/revoke", r.authHandler.Revoke)
	}

	// Authenticator-app enrollment
	totpGroup := apiV1.Group("/totp")
	{
		totpGroup.POST("/enroll", r.totpHandler.Enroll)
	}

	// FIDO2 ceremonies and credential directory
	webauthnGroup := apiV1.Group("/webauthn")
	{
		webauthnGroup.POST("/register/begin", r.webauthnHandler.BeginRegistration)
		webauthnGroup.POST("/register/finish", r.webauthnHandler.FinishRegistration)
		webauthnGroup.POST("/login/begin", r.webauthnHandler.BeginLogin)
		webauthnGroup.GET("/credentials/:username", r.webauthnHandler.ListCredentials)
	}

	// Session management requires the end user's access token on top of
	// the app's API key
	sessionGroup := apiV1.Group("/sessions")
	sessionGroup.Use(r.authMiddleware.Authenticate)
	{
		sessionGroup.GET("", r.sessionHandler.ListSessions)
		sessionGroup.DELETE("/:id", r.sessionHandler.RevokeSession)
		sessionGroup.DELETE("", r.sessionHandler.RevokeAllSessions)
	}

	// Admin routes manage the app directory itself. These are expected to
	// be reachable only from the operations network, not the public edge.
	adminGroup := e.Group("/admin")
	appsGroup := adminGroup.Group("/apps")
	{
		appsGroup.POST("", r.appHandler.RegisterApp)
		appsGroup.GET("", r.appHandler.ListApps)
		appsGroup.PATCH("/:id", r.appHandler.UpdateApp)
		appsGroup.POST("/:id/rate-limit/reset", r.appHandler.ResetRateLimit)
		appsGroup.GET("/:id/audit", r.appHandler.AuditTrail)
	}
}
