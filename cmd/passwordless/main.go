package main

import (
	"context"
	"log/slog"
	"os"

	"passwordless/config"
	"passwordless/internal/delivery"
	"passwordless/internal/delivery/http"
	"passwordless/internal/delivery/http/middleware"
	"passwordless/internal/delivery/http/router/handler"
	"passwordless/internal/domain/service"
	"passwordless/internal/infra/auth"
	logs "passwordless/internal/infra/log"
	"passwordless/internal/infra/otp"
	"passwordless/internal/infra/persistence/postgres"
	"passwordless/internal/infra/qrcode"
	"passwordless/internal/infra/rate"
	"passwordless/internal/infra/sender"
	"passwordless/internal/infra/totp"
	webauthnx "passwordless/internal/infra/webauthn"
	"passwordless/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewAccountRepository,
			postgres.NewOtpRepository,
			postgres.NewTotpRepository,
			postgres.NewWebAuthnRepository,
			postgres.NewRefreshTokenRepository,
			postgres.NewAppRepository,
			postgres.NewAuditRepository,
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			otp.NewCodeGenerator,
			sender.NewLogSender,
			totp.NewProvider,
			webauthnx.NewProvider,
			webauthnx.NewSessionStore,
			rate.NewLimiter,
			newQRCodeService,
		),
	)
}

// newQRCodeService creates a QR code service with dependency injection
func newQRCodeService(cfg *config.Config) service.QRCodeService {
	if cfg.QRCode == nil {
		// Use default values if not configured
		return qrcode.NewQRCodeService(256, "M")
	}

	return qrcode.NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewOtpService,
			impl.NewTotpService,
			impl.NewWebAuthnService,
			impl.NewAuthService,
			impl.NewSessionService,
			impl.NewAppService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewAPIKeyMiddleware,
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewOtpHandler,
			handler.NewAuthHandler,
			handler.NewTotpHandler,
			handler.NewWebAuthnHandler,
			handler.NewSessionHandler,
			handler.NewAppHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
