package mailer

import (
	"context"
	"log/slog"
)

// NoopSender logs instead of sending. Useful for local development and tests.
type NoopSender struct {
	log *slog.Logger
}

var _ Sender = (*NoopSender)(nil)

func NewNoopSender(log *slog.Logger) *NoopSender {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &NoopSender{log: log}
}

func (s *NoopSender) Send(ctx context.Context, email Email) error {
	s.log.InfoContext(ctx, "email suppressed",
		slog.String("to", email.To),
		slog.String("subject", email.Subject),
		slog.String("tag", email.Tag),
	)
	return nil
}
