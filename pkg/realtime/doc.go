// Package realtime holds what the WebSocket and SSE hubs share: the
// connection Registry keyed by (tenant, user), the Event envelope, the
// non-blocking per-connection Outbox and the request Authenticator.
//
// Fan-out snapshots the target connections under a read lock and writes
// outside it. One failing connection never stops delivery to the others;
// failures are logged and counted, never returned.
package realtime
