package impl

import (
	"bytes"
	"context"
	"log/slog"

	deliverycontext "passwordless/internal/delivery/context"
	"passwordless/internal/domain/entity"
	domainerrors "passwordless/internal/domain/errors"
	"passwordless/internal/domain/repository"
	"passwordless/internal/domain/service"
	"passwordless/internal/usecase"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// webauthnService implements the WebAuthnUsecase interface.
type webauthnService struct {
	txManager    repository.TransactionManager
	webauthnRepo repository.WebAuthnCredentialRepository
	provider     service.WebAuthnProvider
	ceremonies   service.CeremonyStore
	logger       *slog.Logger
}

// WebAuthnServiceParams holds dependencies for webauthnService, injected by Fx.
type WebAuthnServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	WebAuthnRepo repository.WebAuthnCredentialRepository
	Provider     service.WebAuthnProvider
	Ceremonies   service.CeremonyStore
	Logger       *slog.Logger
}

// NewWebAuthnService is the constructor for webauthnService.
func NewWebAuthnService(params WebAuthnServiceParams) usecase.WebAuthnUsecase {
	return &webauthnService{
		txManager:    params.TxManager,
		webauthnRepo: params.WebAuthnRepo,
		provider:     params.Provider,
		ceremonies:   params.Ceremonies,
		logger:       params.Logger,
	}
}

func (srv *webauthnService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// BeginRegistration starts an attestation ceremony. Existing credentials are
// attached so the authenticator can refuse to re-register itself.
func (srv *webauthnService) BeginRegistration(ctx context.Context, input usecase.BeginWebAuthnInput) (*usecase.BeginWebAuthnRegistrationOutput, error) {
	credentials, err := srv.webauthnRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load existing credentials")
	}

	user := &ceremonyUser{username: input.Username, credentials: credentials}
	options, session, err := srv.provider.BeginRegistration(user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin registration ceremony")
	}

	token, err := srv.ceremonies.Put(input.Username, session)
	if err != nil {
		return nil, errors.Wrap(err, "failed to store ceremony session")
	}

	srv.log(ctx).Info("WebAuthn registration started", slog.String("username", input.Username))

	return &usecase.BeginWebAuthnRegistrationOutput{
		CeremonyToken: token,
		Options:       options,
	}, nil
}

// FinishRegistration validates the attestation response and stores the new
// credential. The account record is created on first contact.
func (srv *webauthnService) FinishRegistration(ctx context.Context, input usecase.FinishWebAuthnRegistrationInput) (*entity.WebAuthnCredential, error) {
	session, err := srv.ceremonies.Take(input.CeremonyToken, input.Username)
	if err != nil {
		return nil, domainerrors.ErrWebAuthnCredentialNotFound.WrapMessage("ceremony not found or expired")
	}

	parsed, err := protocol.ParseCredentialCreationResponseBody(bytes.NewReader(input.Response))
	if err != nil {
		srv.log(ctx).Warn("Malformed attestation response",
			slog.String("username", input.Username), slog.Any("error", err))

		return nil, domainerrors.ErrValidationFailed.WrapMessage("malformed attestation response")
	}

	user := &ceremonyUser{username: input.Username}
	credential, err := srv.provider.FinishRegistration(user, *session, parsed)
	if err != nil {
		srv.log(ctx).Warn("Attestation verification failed",
			slog.String("username", input.Username), slog.Any("error", err))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("attestation verification failed")
	}

	stored := fromLibraryCredential(input.Username, credential)
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := ensureAccount(ctx, repoFactory.AccountRepo(), input.Username); err != nil {
			return err
		}

		return repoFactory.WebAuthnRepo().Create(ctx, stored)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to store webauthn credential")
	}

	srv.log(ctx).Info("WebAuthn credential registered",
		slog.String("username", input.Username),
		slog.String("credentialID", stored.CredentialID))

	return stored, nil
}

// BeginLogin starts an assertion ceremony against the principal's
// registered credentials.
func (srv *webauthnService) BeginLogin(ctx context.Context, input usecase.BeginWebAuthnInput) (*usecase.BeginWebAuthnLoginOutput, error) {
	credentials, err := srv.webauthnRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load credentials")
	}
	if len(credentials) == 0 {
		return nil, domainerrors.ErrWebAuthnCredentialNotFound
	}

	user := &ceremonyUser{username: input.Username, credentials: credentials}
	options, session, err := srv.provider.BeginLogin(user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin login ceremony")
	}

	token, err := srv.ceremonies.Put(input.Username, session)
	if err != nil {
		return nil, errors.Wrap(err, "failed to store ceremony session")
	}

	return &usecase.BeginWebAuthnLoginOutput{
		CeremonyToken: token,
		Options:       options,
	}, nil
}

// ListCredentials returns the credentials registered for a principal.
func (srv *webauthnService) ListCredentials(ctx context.Context, username string) ([]*entity.WebAuthnCredential, error) {
	credentials, err := srv.webauthnRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list credentials")
	}

	return credentials, nil
}
