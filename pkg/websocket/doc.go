// Package websocket is the persistent realtime transport.
//
// Hub is an http.Handler. Clients authenticate with a bearer token (header or
// "token" query parameter) and a tenant id (X-Tenant-ID header or
// "tenant_id" query parameter). Rejected clients are upgraded and then closed
// with 4001 (no token), 4002 (no tenant) or 4003 (invalid token or tenant
// mismatch).
//
// After connecting a client receives {"type":"connected"} with its
// connection id. It may send {"type":"ping"} and {"type":"subscribe"};
// the hub answers with pong and subscribed.
//
// Start launches a sweep every PingInterval: connections that did not answer
// the previous ping are closed, the rest are pinged again. Shutdown sends
// {"type":"shutdown"} to everyone and closes with 1001.
//
//	hub := websocket.NewHub(realtime.NewAuthenticator(jwtSvc), websocket.WithLogger(log))
//	hub.Start()
//	defer hub.Shutdown(ctx)
//	router.Handle("/ws", hub)
package websocket
