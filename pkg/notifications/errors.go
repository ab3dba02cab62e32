package notifications

import "errors"

var (
	ErrMissingTenant        = errors.New("notifications: tenant id is required")
	ErrMissingUser          = errors.New("notifications: user id is required")
	ErrMissingType          = errors.New("notifications: notification type is required")
	ErrInvalidPriority      = errors.New("notifications: invalid priority")
	ErrSettingsNotFound     = errors.New("notifications: settings not found")
	ErrTemplateNotFound     = errors.New("notifications: template not found")
	ErrRecipientNotFound    = errors.New("notifications: recipient not found")
	ErrNotificationNotFound = errors.New("notifications: notification not found")
)
