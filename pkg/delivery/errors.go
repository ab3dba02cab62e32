package delivery

import (
	"errors"
	"fmt"
)

var (
	ErrChannelDisabled = errors.New("delivery: channel disabled by user preference")
	ErrQuietHours      = errors.New("delivery: within quiet hours")
	ErrNoRecipient     = errors.New("delivery: recipient has no contact details")
	ErrServiceDisabled = errors.New("delivery: service disabled")
	ErrRejected        = errors.New("delivery: rejected by provider")
	ErrTransport       = errors.New("delivery: transport failed")
	ErrRender          = errors.New("delivery: failed to render message")
	ErrNoStore         = errors.New("delivery: notification store not configured")
)

// Reasons reported in DeliveryResult.Error.
const (
	ReasonQuietHours       = "Within quiet hours"
	ReasonNoEmail          = "No email address"
	ReasonNoPhone          = "No phone number"
	ReasonInvalidPhone     = "Invalid phone number"
	ReasonSMSRejected      = "SMS rejected by provider"
	ReasonSMSDisabled      = "SMS service disabled"
	ReasonNoConnections    = "No active connections"
	ReasonPushNotAvailable = "Push notifications not implemented"
)

// failure carries the caller-facing reason of a failed attempt while keeping
// the sentinel and the transport cause reachable through errors.Is.
type failure struct {
	kind   error
	reason string
	cause  error
}

func fail(kind error, reason string, cause error) error {
	return &failure{kind: kind, reason: reason, cause: cause}
}

func (f *failure) Error() string { return f.reason }

func (f *failure) Unwrap() []error {
	if f.cause == nil {
		return []error{f.kind}
	}
	return []error{f.kind, f.cause}
}

// IsTerminal reports whether err must not be retried.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrChannelDisabled) ||
		errors.Is(err, ErrQuietHours) ||
		errors.Is(err, ErrNoRecipient) ||
		errors.Is(err, ErrServiceDisabled) ||
		errors.Is(err, ErrRejected) ||
		errors.Is(err, ErrRender)
}

func exhausted(attempts int, last error) error {
	return fail(ErrTransport, fmt.Sprintf("Failed after %d attempts: %s", attempts, last.Error()), last)
}
