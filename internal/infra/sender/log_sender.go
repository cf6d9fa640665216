// Package sender provides one-time code delivery transports.
package sender

import (
	"context"
	"log/slog"

	"passwordless/internal/domain/service"
)

// logSender writes the code to the service log instead of delivering it.
// It stands in for an SMS or email gateway in local and test environments.
// TODO: add an SMS gateway sender once a provider account exists.
type logSender struct {
	logger *slog.Logger
}

// NewLogSender creates the logging delivery transport.
func NewLogSender(logger *slog.Logger) service.OtpSender {
	return &logSender{logger: logger}
}

func (s *logSender) Send(ctx context.Context, destination string, code string) error {
	s.logger.InfoContext(ctx, "one-time code issued",
		slog.String("destination", destination),
		slog.String("code", code),
	)

	return nil
}
