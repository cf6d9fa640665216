package usecase

import (
	"context"

	"github.com/go-webauthn/webauthn/protocol"

	"passwordless/internal/domain/entity"
)

// BeginWebAuthnInput identifies the principal starting a ceremony.
type BeginWebAuthnInput struct {
	Username string
}

// BeginWebAuthnRegistrationOutput carries the creation options for the
// client and the token that correlates the Finish call.
type BeginWebAuthnRegistrationOutput struct {
	CeremonyToken string
	Options       *protocol.CredentialCreation
}

// FinishWebAuthnRegistrationInput carries the authenticator's attestation
// response as raw JSON from the client.
type FinishWebAuthnRegistrationInput struct {
	Username      string
	CeremonyToken string
	Response      []byte
}

// BeginWebAuthnLoginOutput carries the assertion options for the client.
type BeginWebAuthnLoginOutput struct {
	CeremonyToken string
	Options       *protocol.CredentialAssertion
}

// WebAuthnUsecase defines the interface for FIDO2 credential registration
// and the Begin half of authentication. The Finish half of authentication
// is AuthUsecase.LoginWithWebAuthn, which also issues tokens.
type WebAuthnUsecase interface {
	BeginRegistration(ctx context.Context, input BeginWebAuthnInput) (*BeginWebAuthnRegistrationOutput, error)
	FinishRegistration(ctx context.Context, input FinishWebAuthnRegistrationInput) (*entity.WebAuthnCredential, error)
	BeginLogin(ctx context.Context, input BeginWebAuthnInput) (*BeginWebAuthnLoginOutput, error)

	// ListCredentials returns the credentials registered for a principal.
	ListCredentials(ctx context.Context, username string) ([]*entity.WebAuthnCredential, error)
}
