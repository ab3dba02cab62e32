package broadcast

import "errors"

// ErrNoStore is returned by CreateAndBroadcast when no store is configured.
var ErrNoStore = errors.New("broadcast: notification store not configured")
