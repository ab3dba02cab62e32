package websocket

import (
	"errors"

	"github.com/dmitrymomot/carenotify/pkg/realtime"
)

// Application close codes sent when a connection is rejected after upgrade.
const (
	CloseMissingToken  = 4001
	CloseMissingTenant = 4002
	CloseUnauthorized  = 4003
)

// closeFor maps an authentication error to a close code and reason.
func closeFor(err error) (int, string) {
	switch {
	case errors.Is(err, realtime.ErrMissingToken):
		return CloseMissingToken, "Authentication token required"
	case errors.Is(err, realtime.ErrMissingTenant):
		return CloseMissingTenant, "Tenant ID required"
	case errors.Is(err, realtime.ErrTenantMismatch):
		return CloseUnauthorized, "Tenant mismatch"
	default:
		return CloseUnauthorized, "Invalid token"
	}
}
