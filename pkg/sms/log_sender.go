package sms

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/carenotify/pkg/logger"
)

// LogSender writes messages to the log instead of sending them. Used in
// development.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender. A nil logger means slog.Default().
func NewLogSender(l *slog.Logger) *LogSender {
	if l == nil {
		l = slog.Default()
	}
	return &LogSender{logger: l.With(logger.Component("sms"))}
}

func (s *LogSender) SendSMS(ctx context.Context, to, message string) (string, error) {
	phone, err := NormalizePhone(to)
	if err != nil {
		return "", err
	}
	if message == "" {
		return "", ErrEmptyMessage
	}
	id := "log-" + uuid.New().String()
	s.logger.InfoContext(ctx, "sms",
		slog.String("to", phone),
		slog.String("message", message),
		logger.MessageID(id),
	)
	return id, nil
}

// New builds the transport selected by cfg.Driver.
func New(ctx context.Context, cfg Config, l *slog.Logger) (Sender, error) {
	switch cfg.Driver {
	case DriverLog:
		return NewLogSender(l), nil
	case DriverSNS, "":
		return NewSNSSender(ctx, cfg)
	default:
		return nil, ErrInvalidConfig
	}
}
