// Package mailer delivers one-time codes to users. The default sender
// only logs the code, which is what development and the test suite want;
// a real SMTP sender can replace it behind the same interface.
package mailer

import (
	"context"
	"log/slog"
)

// Sender delivers a one-time code for a named purpose ("login" or
// "reset") to an email address.
type Sender interface {
	SendCode(ctx context.Context, email, purpose, code string) error
}

// LogSender writes codes to the log instead of sending mail.
type LogSender struct {
	Logger *slog.Logger
}

func (s *LogSender) SendCode(ctx context.Context, email, purpose, code string) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("one-time code issued", "email", email, "purpose", purpose, "code", code)
	return nil
}
