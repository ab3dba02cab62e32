package delivery

import (
	"context"
	"fmt"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/carenotify/pkg/email"
	"github.com/dmitrymomot/carenotify/pkg/email/templates"
	"github.com/dmitrymomot/carenotify/pkg/logger"
	"github.com/dmitrymomot/carenotify/pkg/notifications"
)

// EmailSender delivers notifications by email.
type EmailSender struct {
	pipeline
	transport email.EmailSender
}

// NewEmailSender creates an email channel sender on top of transport.
func NewEmailSender(transport email.EmailSender, stores Stores, opts ...SenderOption) *EmailSender {
	return &EmailSender{
		pipeline:  newPipeline(notifications.ChannelEmail, stores, opts),
		transport: transport,
	}
}

// Send makes a single delivery attempt.
func (s *EmailSender) Send(ctx context.Context, tenantID string, n notifications.Notification) notifications.DeliveryResult {
	return s.result(s.attempt(ctx, tenantID, n))
}

// SendWithRetry makes up to maxAttempts attempts. A non-positive maxAttempts
// uses the sender default.
func (s *EmailSender) SendWithRetry(ctx context.Context, tenantID string, n notifications.Notification, maxAttempts int) notifications.DeliveryResult {
	return s.result(s.withRetry(ctx, tenantID, n, maxAttempts, func(ctx context.Context) (string, error) {
		return s.attempt(ctx, tenantID, n)
	}))
}

func (s *EmailSender) attempt(ctx context.Context, tenantID string, n notifications.Notification) (string, error) {
	settings := s.preferences(ctx, tenantID, n)
	if err := s.checkEnabled(settings); err != nil {
		return "", err
	}
	if err := s.checkQuietHours(ctx, tenantID, n, settings); err != nil {
		return "", err
	}

	to := s.recipient(ctx, tenantID, n.UserID)
	if to == "" {
		return "", s.reject(ctx, tenantID, n, ErrNoRecipient, ReasonNoEmail)
	}

	subject, body, err := s.render(ctx, n)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to render email",
			logger.NotificationID(n.ID),
			logger.Error(err),
		)
		return "", s.reject(ctx, tenantID, n, ErrRender, err.Error())
	}

	id, err := s.transport.SendEmail(ctx, email.SendEmailParams{
		SendTo:   to,
		Subject:  subject,
		BodyHTML: body,
		Tag:      n.Type,
	})
	if err != nil {
		return "", s.transportFailed(ctx, tenantID, n, err)
	}

	s.record(ctx, tenantID, n, notifications.AttemptDelivered, "")
	s.logger.InfoContext(ctx, "email sent",
		logger.TenantID(tenantID),
		logger.NotificationID(n.ID),
		logger.MessageID(id),
	)
	return id, nil
}

func (s *EmailSender) recipient(ctx context.Context, tenantID, userID string) string {
	if s.stores.Recipients == nil {
		return ""
	}
	addr, err := s.stores.Recipients.GetEmail(ctx, tenantID, userID)
	if err != nil {
		s.logger.DebugContext(ctx, "email lookup failed", logger.TenantID(tenantID), logger.UserID(userID), logger.Error(err))
		return ""
	}
	return addr
}

// render builds the subject and the HTML body. Template values are escaped;
// without a template the notification title and message are used.
func (s *EmailSender) render(ctx context.Context, n notifications.Notification) (string, string, error) {
	tpl := s.template(ctx, n)

	subject := n.Title
	if tpl.SubjectTemplate != "" {
		subject = notifications.Render(tpl.SubjectTemplate, n.Data)
	}

	var content templ.Component = templates.Message(n.Title, n.Message)
	if tpl.BodyTemplate != "" {
		content = templates.HTML(notifications.RenderHTML(tpl.BodyTemplate, n.Data))
	}

	html, err := templates.Render(ctx, templates.Layout(subject, s.footer, content))
	if err != nil {
		return "", "", fmt.Errorf("render layout: %w", err)
	}
	return subject, html, nil
}
