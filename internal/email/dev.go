package email

import (
	"context"
	"log/slog"
)

// LogSender logs outbound mail instead of delivering it. Used in dev and
// test environments where no Postmark token is configured.
type LogSender struct {
	Logger *slog.Logger
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("email (not sent: no provider configured)",
		"to", msg.To,
		"subject", msg.Subject,
		"tag", msg.Tag,
	)
	return nil
}
