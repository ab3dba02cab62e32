package tenant

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	// DefaultHeader carries the tenant id on API and WebSocket requests.
	DefaultHeader = "X-Tenant-ID"
	// DefaultQueryParam carries the tenant id where headers cannot be set.
	DefaultQueryParam = "tenant_id"
)

// Resolver extracts tenant identifier from HTTP requests.
type Resolver interface {
	// Resolve returns an empty string if no tenant identifier is found.
	Resolve(r *http.Request) (string, error)
}

// ResolverFunc adapts an ordinary function to Resolver.
type ResolverFunc func(r *http.Request) (string, error)

func (f ResolverFunc) Resolve(r *http.Request) (string, error) { return f(r) }

// HeaderResolver reads the tenant from a header.
type HeaderResolver struct {
	HeaderName string
}

// NewHeaderResolver creates a header resolver. Empty name means X-Tenant-ID.
func NewHeaderResolver(headerName string) *HeaderResolver {
	if headerName == "" {
		headerName = DefaultHeader
	}
	return &HeaderResolver{HeaderName: headerName}
}

func (r *HeaderResolver) Resolve(req *http.Request) (string, error) {
	return strings.TrimSpace(req.Header.Get(r.HeaderName)), nil
}

// QueryResolver reads the tenant from a query parameter.
type QueryResolver struct {
	Param string
}

// NewQueryResolver creates a query resolver. Empty name means tenant_id.
func NewQueryResolver(param string) *QueryResolver {
	if param == "" {
		param = DefaultQueryParam
	}
	return &QueryResolver{Param: param}
}

func (r *QueryResolver) Resolve(req *http.Request) (string, error) {
	return strings.TrimSpace(req.URL.Query().Get(r.Param)), nil
}

// CompositeResolver tries multiple resolvers in order until one succeeds.
type CompositeResolver struct {
	Resolvers []Resolver
}

// NewCompositeResolver creates a new composite resolver.
func NewCompositeResolver(resolvers ...Resolver) *CompositeResolver {
	return &CompositeResolver{Resolvers: resolvers}
}

// DefaultResolver checks the X-Tenant-ID header, then the tenant_id query
// parameter.
func DefaultResolver() *CompositeResolver {
	return NewCompositeResolver(NewHeaderResolver(""), NewQueryResolver(""))
}

// Resolve returns the first non-empty result.
func (c *CompositeResolver) Resolve(r *http.Request) (string, error) {
	var errs []error
	for _, resolver := range c.Resolvers {
		id, err := resolver.Resolve(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if id != "" {
			return id, nil
		}
	}
	if len(errs) > 0 {
		return "", fmt.Errorf("composite resolver errors: %w", errors.Join(errs...))
	}
	return "", nil
}
