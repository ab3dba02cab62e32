package sms

import "errors"

var (
	ErrFailedToSend     = errors.New("sms: failed to send")
	ErrInvalidPhone     = errors.New("sms: invalid phone number")
	ErrEmptyMessage     = errors.New("sms: empty message")
	ErrRejected         = errors.New("sms: message rejected by provider")
	ErrInvalidConfig    = errors.New("sms: invalid config")
	ErrFailedLoadConfig = errors.New("sms: failed to load aws config")
)

// IsPermanent reports whether resending the same message cannot succeed.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrInvalidPhone) ||
		errors.Is(err, ErrEmptyMessage) ||
		errors.Is(err, ErrRejected)
}
