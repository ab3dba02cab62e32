package delivery

import (
	"context"

	"github.com/dmitrymomot/carenotify/pkg/notifications"
)

// PushSender is a placeholder for the push channel. Every attempt fails.
type PushSender struct{}

func (PushSender) SendWithRetry(context.Context, string, notifications.Notification, int) notifications.DeliveryResult {
	return notifications.Failed(notifications.ChannelPush, ReasonPushNotAvailable)
}
