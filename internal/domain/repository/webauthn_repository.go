package repository

import (
	"context"

	"passwordless/internal/domain/entity"

	"github.com/pkg/errors"
)

// Domain-specific errors for WebAuthn credential persistence.
var (
	// ErrWebAuthnCredentialNotFound is returned when no credential matches the identifier.
	ErrWebAuthnCredentialNotFound = errors.New("webauthn credential not found")
	// ErrWebAuthnCounterRegression is returned when a conditional counter
	// update loses to the stored value, i.e. the presented counter did not
	// strictly exceed it.
	ErrWebAuthnCounterRegression = errors.New("webauthn counter regression")
)

// WebAuthnCredentialRepository persists authenticator public keys and their
// signature counters.
type WebAuthnCredentialRepository interface {
	// Create persists a credential produced by a registration ceremony.
	Create(ctx context.Context, credential *entity.WebAuthnCredential) error

	// FindByCredentialID retrieves a credential by its authenticator-supplied identifier.
	FindByCredentialID(ctx context.Context, credentialID string) (*entity.WebAuthnCredential, error)

	// FindByUsername retrieves all credentials registered for a principal,
	// for building authentication options.
	FindByUsername(ctx context.Context, username string) ([]*entity.WebAuthnCredential, error)

	// AdvanceSignCount updates the signature counter and last-used time,
	// guarded so the stored counter only ever increases. Counter-less
	// authenticators (stored and presented both zero) bypass the guard.
	AdvanceSignCount(ctx context.Context, credentialID string, signCount uint32) error
}
