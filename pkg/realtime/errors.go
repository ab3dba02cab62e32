package realtime

import "errors"

var (
	ErrConnClosed     = errors.New("realtime: connection closed")
	ErrOutboxFull     = errors.New("realtime: outbox full")
	ErrMissingToken   = errors.New("realtime: missing token")
	ErrMissingTenant  = errors.New("realtime: missing tenant")
	ErrUnauthorized   = errors.New("realtime: invalid token")
	ErrTenantMismatch = errors.New("realtime: token tenant mismatch")
)
