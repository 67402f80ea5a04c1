package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/hotel-service/internal/config"
)

// Message is one outbound e-mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a message or reports why it could not.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender returns an SMTP sender when a relay host is configured and a log
// sender otherwise.
func NewSender(cfg config.NotificationConfig, logger *zap.Logger) (Sender, error) {
	if cfg.SMTPHost == "" {
		logger.Warn("SMTP_HOST not provided; notifications will be logged only")
		return NewLogSender(logger), nil
	}
	return NewSMTPSender(cfg)
}

// LogSender writes messages to the logger instead of delivering them.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender builds a LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send implements Sender.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	s.logger.Info("notification",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("body_len", len(msg.Body)),
	)
	return nil
}

// ErrNoRecipient is returned for messages without a recipient address.
var ErrNoRecipient = errors.New("notification has no recipient")
