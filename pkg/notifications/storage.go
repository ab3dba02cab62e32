package notifications

import (
	"context"
	"errors"
)

// Store persists notifications. It sits outside the delivery core; the
// orchestrator only creates notifications and lists recipients through it.
type Store interface {
	// CreateNotification assigns identity and timestamps and stores the
	// notification. It returns ErrRecipientNotFound unless params.UserID is an
	// active user of the tenant.
	CreateNotification(ctx context.Context, tenantID string, params CreateParams) (Notification, error)

	// ListActiveUsers returns ids of users of the tenant that can receive notifications.
	ListActiveUsers(ctx context.Context, tenantID string) ([]string, error)

	// Stats returns badge counters for the user.
	Stats(ctx context.Context, tenantID, userID string) (Stats, error)
}

// SettingsStore resolves channel preferences.
type SettingsStore interface {
	// GetSettings returns ErrSettingsNotFound when the user has no stored
	// preferences for the type.
	GetSettings(ctx context.Context, tenantID, userID, notifType string) (*Settings, error)
}

// RecipientStore resolves contact details of a tenant's users. An empty
// string with a nil error means the user has no such contact on file;
// ErrRecipientNotFound means the user does not belong to the tenant.
type RecipientStore interface {
	GetEmail(ctx context.Context, tenantID, userID string) (string, error)
	GetPhone(ctx context.Context, tenantID, userID string) (string, error)
}

// TemplateStore resolves per-type templates. It returns ErrTemplateNotFound
// when none is configured.
type TemplateStore interface {
	GetTemplate(ctx context.Context, notifType string) (*Template, error)
}

// DeliveryLog records delivery attempts.
type DeliveryLog interface {
	LogAttempt(ctx context.Context, attempt Attempt) error
}

// ResolveSettings looks up preferences and falls back to DefaultSettings when
// none are stored or the lookup fails. The error is returned for logging only.
func ResolveSettings(ctx context.Context, store SettingsStore, tenantID, userID, notifType string) (Settings, error) {
	if store == nil {
		return DefaultSettings(), nil
	}
	s, err := store.GetSettings(ctx, tenantID, userID, notifType)
	if err != nil || s == nil {
		def := DefaultSettings()
		if errors.Is(err, ErrSettingsNotFound) {
			err = nil
		}
		return def, err
	}
	return *s, nil
}

// MultiLog writes every attempt to each log in order. All logs are tried;
// their errors are joined.
type MultiLog []DeliveryLog

func (m MultiLog) LogAttempt(ctx context.Context, attempt Attempt) error {
	var errs []error
	for _, l := range m {
		if l == nil {
			continue
		}
		if err := l.LogAttempt(ctx, attempt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
