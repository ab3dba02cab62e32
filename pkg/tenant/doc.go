// Package tenant resolves the tenant a request belongs to.
//
// Every notification, registry entry and preference is scoped by tenant id.
// Resolvers read the id from a request; DefaultResolver checks the
// X-Tenant-ID header and then the tenant_id query parameter, which is what
// realtime endpoints use.
//
//	id, err := tenant.DefaultResolver().Resolve(r)
//
// Middleware stores the resolved id in the request context and
// LoggerExtractor exposes it to the structured logger:
//
//	log := logger.New(logger.WithContextExtractors(tenant.LoggerExtractor()))
package tenant
