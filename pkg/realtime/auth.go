package realtime

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/carenotify/pkg/jwt"
	"github.com/dmitrymomot/carenotify/pkg/tenant"
)

// TokenVerifier validates a bearer token and returns its claims.
type TokenVerifier interface {
	Parse(token string) (jwt.Claims, error)
}

// Authenticator identifies the caller of a realtime endpoint.
type Authenticator struct {
	verifier TokenVerifier
	token    jwt.TokenExtractorFunc
	tenant   tenant.Resolver
}

// NewAuthenticator reads the token from the Authorization header or the
// "token" query parameter and the tenant from X-Tenant-ID or "tenant_id".
func NewAuthenticator(verifier TokenVerifier) *Authenticator {
	return &Authenticator{
		verifier: verifier,
		token:    jwt.ChainExtractors(jwt.BearerTokenExtractor, jwt.QueryTokenExtractor("token")),
		tenant:   tenant.DefaultResolver(),
	}
}

// Authenticate returns the connection key of the caller. Errors are
// ErrMissingToken, ErrMissingTenant, ErrUnauthorized or ErrTenantMismatch,
// checked in that order.
func (a *Authenticator) Authenticate(r *http.Request) (Key, error) {
	token, err := a.token(r)
	if err != nil || token == "" {
		return Key{}, ErrMissingToken
	}
	tenantID, err := a.tenant.Resolve(r)
	if err != nil || tenantID == "" {
		return Key{}, ErrMissingTenant
	}
	claims, err := a.verifier.Parse(token)
	if err != nil {
		return Key{}, errors.Join(ErrUnauthorized, err)
	}
	if claims.TenantID != tenantID {
		return Key{}, ErrTenantMismatch
	}
	return Key{TenantID: tenantID, UserID: claims.UserID()}, nil
}
