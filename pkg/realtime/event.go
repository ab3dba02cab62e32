package realtime

// Event names sent to clients.
const (
	EventConnected    = "connected"
	EventNotification = "notification"
	EventStatsUpdate  = "stats_update"
	EventHeartbeat    = "heartbeat"
	EventShutdown     = "shutdown"
	EventPong         = "pong"
	EventSubscribed   = "subscribed"
)

// Event is a typed message delivered to a live connection. WebSocket clients
// receive it as {"type":...,"data":...}; SSE clients receive Type as the
// event name and Data as the payload.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// ConnectedPayload is the data of the connected event.
type ConnectedPayload struct {
	ConnectionID string `json:"connection_id"`
}

// HeartbeatPayload is the data of the heartbeat event.
type HeartbeatPayload struct {
	Timestamp int64 `json:"timestamp"`
}
