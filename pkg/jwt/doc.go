// Package jwt signs and verifies the HS256 tokens that authenticate realtime
// connections.
//
// Tokens carry the user id in the standard subject claim and the tenant id in
// a private "tenant_id" claim. Service.Parse rejects tokens missing either.
//
//	svc, err := jwt.New([]byte(cfg.SigningKey))
//	token, err := svc.Generate(jwt.NewClaims("tenant-1", "user-1", time.Hour))
//	claims, err := svc.Parse(token)
//
// Extractors pull the raw token from a request. WebSocket and EventSource
// clients cannot set headers, so realtime endpoints chain the Bearer header
// with a query parameter:
//
//	extract := jwt.ChainExtractors(jwt.BearerTokenExtractor, jwt.QueryTokenExtractor("token"))
//
// Middleware verifies the token for plain HTTP handlers and stores Claims in
// the request context, retrievable with GetClaims.
package jwt
