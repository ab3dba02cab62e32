package notifications

import "time"

// Channel names a delivery channel.
type Channel string

const (
	ChannelInApp Channel = "in_app"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelPush  Channel = "push"
)

// Channels lists every channel in the order the orchestrator attempts them.
var Channels = []Channel{ChannelInApp, ChannelEmail, ChannelSMS, ChannelPush}

// QuietHoursLayout is the time-of-day format of quiet-hours bounds.
const QuietHoursLayout = "15:04"

// Settings are a user's channel preferences for one notification type.
type Settings struct {
	TenantID         string  `json:"tenant_id"`
	UserID           string  `json:"user_id"`
	NotificationType string  `json:"notification_type"`
	EmailEnabled     bool    `json:"email_enabled"`
	SMSEnabled       bool    `json:"sms_enabled"`
	PushEnabled      bool    `json:"push_enabled"`
	InAppEnabled     bool    `json:"in_app_enabled"`
	QuietHoursStart  *string `json:"quiet_hours_start,omitempty"`
	QuietHoursEnd    *string `json:"quiet_hours_end,omitempty"`
	DigestEnabled    bool    `json:"digest_enabled"`
	DigestFrequency  string  `json:"digest_frequency,omitempty"`
}

// DefaultSettings returns the preferences applied when a user has none
// stored: every channel on except SMS, which is opt-in.
func DefaultSettings() Settings {
	return Settings{
		EmailEnabled: true,
		SMSEnabled:   false,
		PushEnabled:  true,
		InAppEnabled: true,
	}
}

// Enabled reports whether ch is switched on.
func (s Settings) Enabled(ch Channel) bool {
	switch ch {
	case ChannelInApp:
		return s.InAppEnabled
	case ChannelEmail:
		return s.EmailEnabled
	case ChannelSMS:
		return s.SMSEnabled
	case ChannelPush:
		return s.PushEnabled
	default:
		return false
	}
}

// InQuietHours reports whether now falls inside the quiet-hours window.
//
// Bounds are compared as zero-padded "HH:MM" strings, inclusive on both ends.
// A window whose start is later than its end (22:00-06:00) never matches.
func (s Settings) InQuietHours(now time.Time) bool {
	if s.QuietHoursStart == nil || s.QuietHoursEnd == nil {
		return false
	}
	if *s.QuietHoursStart == "" || *s.QuietHoursEnd == "" {
		return false
	}
	current := now.Format(QuietHoursLayout)
	return current >= *s.QuietHoursStart && current <= *s.QuietHoursEnd
}
