package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "passwordless/internal/delivery/context"
	"passwordless/internal/domain/entity"
	"passwordless/internal/domain/repository"
	"passwordless/internal/domain/service"
	"passwordless/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// totpService implements the TotpUsecase interface.
type totpService struct {
	txManager repository.TransactionManager
	provider  service.TotpProvider
	qrService service.QRCodeService
	logger    *slog.Logger
}

// TotpServiceParams holds dependencies for totpService, injected by Fx.
type TotpServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Provider  service.TotpProvider
	QRService service.QRCodeService
	Logger    *slog.Logger
}

// NewTotpService is the constructor for totpService.
func NewTotpService(params TotpServiceParams) usecase.TotpUsecase {
	return &totpService{
		txManager: params.TxManager,
		provider:  params.Provider,
		qrService: params.QRService,
		logger:    params.Logger,
	}
}

func (srv *totpService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Enroll provisions a fresh shared secret for the principal. Re-enrolling
// replaces the previous secret and resets the replay watermark. The account
// record is created on first contact.
func (srv *totpService) Enroll(ctx context.Context, input usecase.EnrollTotpInput) (*usecase.EnrollTotpOutput, error) {
	provisioning, err := srv.provider.Enroll(input.Username)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate totp secret")
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := ensureAccount(ctx, repoFactory.AccountRepo(), input.Username); err != nil {
			return err
		}

		enrollment := &entity.TotpEnrollment{
			Username:     input.Username,
			Secret:       provisioning.Secret,
			LastUsedStep: entity.TotpStepNone,
		}

		return repoFactory.TotpRepo().Upsert(ctx, enrollment)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to store totp enrollment",
			slog.String("username", input.Username), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to store totp enrollment")
	}

	qrPNG, err := srv.qrService.GeneratePNG(provisioning.URI, input.QRSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render provisioning qr code")
	}

	srv.log(ctx).Info("TOTP enrollment created", slog.String("username", input.Username))

	return &usecase.EnrollTotpOutput{
		Secret:    provisioning.Secret,
		URI:       provisioning.URI,
		QRCodePNG: qrPNG,
	}, nil
}

// ensureAccount creates the account for an identifier on first contact. The
// identifier lands in the email or phone column depending on its shape.
func ensureAccount(ctx context.Context, accountRepo repository.AccountRepository, identifier string) error {
	_, err := accountRepo.FindByIdentifier(ctx, identifier)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrAccountNotFound) {
		return errors.Wrap(err, "failed to look up account")
	}

	account := newAccountForIdentifier(identifier)

	return accountRepo.Create(ctx, account)
}

func newAccountForIdentifier(identifier string) *entity.Account {
	account := &entity.Account{PreferredMfa: entity.MfaMethodOtp}
	if strings.Contains(identifier, "@") {
		account.Email = identifier
	} else {
		account.Phone = identifier
		// Phone-only principals still need a unique email column value.
		account.Email = identifier + "@phone.invalid"
	}

	return account
}
