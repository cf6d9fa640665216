package usecase

import (
	"context"

	"github.com/google/uuid"

	"passwordless/internal/domain/entity"
)

// --- Input DTOs ---

// ClientInfo carries the request metadata recorded on issued sessions.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// LoginWithOtpInput verifies a code against the latest challenge for the
// destination. SessionID pins a specific challenge when the client has it.
type LoginWithOtpInput struct {
	Destination string
	SessionID   uuid.UUID
	Code        string
	Client      ClientInfo
}

// LoginWithTotpInput verifies an authenticator-app code.
type LoginWithTotpInput struct {
	Username string
	Code     string
	Client   ClientInfo
}

// LoginWithWebAuthnInput finishes an assertion ceremony started by
// WebAuthnUsecase.BeginLogin. Response is the raw client JSON.
type LoginWithWebAuthnInput struct {
	Username      string
	CeremonyToken string
	Response      []byte
	Client        ClientInfo
}

// RefreshInput rotates a refresh token.
type RefreshInput struct {
	RefreshToken string
	Client       ClientInfo
}

// --- Output DTOs ---

// LoginOutput returns the issued token pair and the authenticated account.
// LowAssurance marks a WebAuthn login accepted from a counter-less
// authenticator, where replay protection is reduced.
type LoginOutput struct {
	Tokens       *entity.TokenPair
	Account      *entity.Account
	LowAssurance bool
}

// AccessClaimsOutput returns the identity carried by a valid access token.
type AccessClaimsOutput struct {
	AccountID uuid.UUID
	Email     string
}

// AuthUsecase orchestrates credential verification and token issuance. Every
// login path shares the same shape: reject locked accounts before touching
// the credential, count failures toward lockout, and reset the counter on
// success.
type AuthUsecase interface {
	LoginWithOtp(ctx context.Context, input LoginWithOtpInput) (*LoginOutput, error)
	LoginWithTotp(ctx context.Context, input LoginWithTotpInput) (*LoginOutput, error)
	LoginWithWebAuthn(ctx context.Context, input LoginWithWebAuthnInput) (*LoginOutput, error)

	// Refresh redeems a refresh token for a fresh pair, revoking the
	// presented token. A given token can be redeemed at most once.
	Refresh(ctx context.Context, input RefreshInput) (*LoginOutput, error)

	// Revoke invalidates a single refresh token. Idempotent.
	Revoke(ctx context.Context, refreshToken string) error

	// ValidateAccess verifies an access token and returns its identity claims.
	ValidateAccess(ctx context.Context, accessToken string) (*AccessClaimsOutput, error)
}
