// Package httpserver runs an http.Handler with graceful, ordered shutdown.
//
// Shutdown happens in three steps, all bounded by the shutdown timeout:
// drain hooks run first so long-lived WebSocket and SSE streams are closed,
// then http.Server.Shutdown stops the listener and waits for in-flight
// requests, then stop hooks flush background work and close pools.
//
//	srv := httpserver.NewFromConfig(cfg,
//		httpserver.WithLogger(log),
//		httpserver.WithDrainHook(wsHub.Shutdown),
//		httpserver.WithDrainHook(sseHub.Shutdown),
//		httpserver.WithStopHook(tracker.WaitContext),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//		return err
//	}
//
// LivenessHandler and ReadinessHandler serve JSON health endpoints.
package httpserver
