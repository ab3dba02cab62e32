package delivery

import (
	"context"
	"errors"

	"github.com/dmitrymomot/carenotify/pkg/logger"
	"github.com/dmitrymomot/carenotify/pkg/notifications"
	"github.com/dmitrymomot/carenotify/pkg/sms"
)

// SMSSender delivers notifications as text messages.
type SMSSender struct {
	pipeline
	transport sms.Sender
}

// NewSMSSender creates an SMS channel sender on top of transport.
func NewSMSSender(transport sms.Sender, stores Stores, opts ...SenderOption) *SMSSender {
	return &SMSSender{
		pipeline:  newPipeline(notifications.ChannelSMS, stores, opts),
		transport: transport,
	}
}

// Send makes a single delivery attempt.
func (s *SMSSender) Send(ctx context.Context, tenantID string, n notifications.Notification) notifications.DeliveryResult {
	return s.result(s.attempt(ctx, tenantID, n))
}

// SendWithRetry makes up to maxAttempts attempts. A non-positive maxAttempts
// uses the sender default.
func (s *SMSSender) SendWithRetry(ctx context.Context, tenantID string, n notifications.Notification, maxAttempts int) notifications.DeliveryResult {
	return s.result(s.withRetry(ctx, tenantID, n, maxAttempts, func(ctx context.Context) (string, error) {
		return s.attempt(ctx, tenantID, n)
	}))
}

func (s *SMSSender) attempt(ctx context.Context, tenantID string, n notifications.Notification) (string, error) {
	settings := s.preferences(ctx, tenantID, n)
	if err := s.checkEnabled(settings); err != nil {
		return "", err
	}
	if !s.serviceEnabled || s.transport == nil {
		return "", s.reject(ctx, tenantID, n, ErrServiceDisabled, ReasonSMSDisabled)
	}
	if err := s.checkQuietHours(ctx, tenantID, n, settings); err != nil {
		return "", err
	}

	to := s.recipient(ctx, tenantID, n.UserID)
	if to == "" {
		return "", s.reject(ctx, tenantID, n, ErrNoRecipient, ReasonNoPhone)
	}

	id, err := s.transport.SendSMS(ctx, to, s.render(ctx, n))
	switch {
	case errors.Is(err, sms.ErrInvalidPhone):
		return "", s.reject(ctx, tenantID, n, ErrNoRecipient, ReasonInvalidPhone)
	case sms.IsPermanent(err):
		s.logger.WarnContext(ctx, "sms rejected",
			logger.TenantID(tenantID),
			logger.NotificationID(n.ID),
			logger.Error(err),
		)
		return "", s.reject(ctx, tenantID, n, ErrRejected, ReasonSMSRejected)
	case err != nil:
		return "", s.transportFailed(ctx, tenantID, n, err)
	}

	s.record(ctx, tenantID, n, notifications.AttemptDelivered, "")
	s.logger.InfoContext(ctx, "sms sent",
		logger.TenantID(tenantID),
		logger.NotificationID(n.ID),
		logger.MessageID(id),
	)
	return id, nil
}

func (s *SMSSender) recipient(ctx context.Context, tenantID, userID string) string {
	if s.stores.Recipients == nil {
		return ""
	}
	phone, err := s.stores.Recipients.GetPhone(ctx, tenantID, userID)
	if err != nil {
		s.logger.DebugContext(ctx, "phone lookup failed", logger.TenantID(tenantID), logger.UserID(userID), logger.Error(err))
		return ""
	}
	return phone
}

// render produces the message text, truncated to a single segment.
func (s *SMSSender) render(ctx context.Context, n notifications.Notification) string {
	body := n.Message
	if tpl := s.template(ctx, n); tpl.SMSTemplate != "" {
		body = notifications.Render(tpl.SMSTemplate, n.Data)
	}
	return sms.Truncate(body, sms.MaxLength)
}
