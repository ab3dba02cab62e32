// Package broadcast pushes notifications and counter updates to users'
// live connections across both realtime transports.
//
//	b := broadcast.New(
//		broadcast.WithPersistent(wsHub),
//		broadcast.WithStreaming(sseHub),
//		broadcast.WithStore(store),
//	)
//	res := b.BroadcastToUser(ctx, tenantID, userID, n)
//	if !res.Delivered() {
//		// user is offline; other channels still apply
//	}
//
// A user with no open connection is a normal outcome, reported through
// UserResult rather than an error.
package broadcast
