// Package sse is the streaming fallback for clients without WebSocket
// support.
//
// Hub is an http.Handler that authenticates like the WebSocket hub and then
// holds the response open. Frames use the datastar SSE generator:
//
//	event: notification
//	id: 3
//	data: {"id":"...","title":"..."}
//
// Event names are connected, notification, stats_update, heartbeat and
// shutdown. Ids increase by one per stream. A heartbeat is queued on every
// stream each HeartbeatInterval once Start is called; a stream that cannot
// take it is dropped.
//
// Authentication failures are answered before the stream opens: 400 for a
// missing tenant, 403 for a token issued to another tenant and 401 otherwise.
package sse
