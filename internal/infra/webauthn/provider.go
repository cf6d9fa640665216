// Package webauthnx wires the FIDO2 relying party engine and the in-flight
// ceremony session store.
package webauthnx

import (
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/pkg/errors"

	"passwordless/config"
	"passwordless/internal/domain/service"
)

type provider struct {
	engine *webauthn.WebAuthn
}

// NewProvider builds the relying party engine from configuration.
func NewProvider(cfg *config.Config) (service.WebAuthnProvider, error) {
	if cfg.WebAuthn == nil {
		return nil, errors.New("webauthn config must be provided")
	}

	engine, err := webauthn.New(&webauthn.Config{
		RPDisplayName: cfg.WebAuthn.RPDisplayName,
		RPID:          cfg.WebAuthn.RPID,
		RPOrigins:     cfg.WebAuthn.RPOrigins,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create webauthn engine")
	}

	return &provider{engine: engine}, nil
}

func (p *provider) BeginRegistration(user webauthn.User) (*protocol.CredentialCreation, *webauthn.SessionData, error) {
	creation, session, err := p.engine.BeginRegistration(user)
	if err != nil {
		return nil, nil, errors.Wrap(err, "begin registration")
	}

	return creation, session, nil
}

func (p *provider) FinishRegistration(user webauthn.User, session webauthn.SessionData, response *protocol.ParsedCredentialCreationData) (*webauthn.Credential, error) {
	credential, err := p.engine.CreateCredential(user, session, response)
	if err != nil {
		return nil, errors.Wrap(err, "finish registration")
	}

	return credential, nil
}

func (p *provider) BeginLogin(user webauthn.User) (*protocol.CredentialAssertion, *webauthn.SessionData, error) {
	assertion, session, err := p.engine.BeginLogin(user)
	if err != nil {
		return nil, nil, errors.Wrap(err, "begin login")
	}

	return assertion, session, nil
}

func (p *provider) FinishLogin(user webauthn.User, session webauthn.SessionData, response *protocol.ParsedCredentialAssertionData) (*webauthn.Credential, error) {
	credential, err := p.engine.ValidateLogin(user, session, response)
	if err != nil {
		return nil, errors.Wrap(err, "finish login")
	}

	return credential, nil
}
