package tenant_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/carenotify/pkg/tenant"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	var got string
	h := tenant.Middleware(tenant.DefaultResolver())(
		tenant.RequireTenant(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = tenant.IDFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})),
	)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Tenant-ID", "t-1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "t-1", got)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), tenant.ErrNoTenantInContext.Error())
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()
	extract := tenant.LoggerExtractor()

	_, ok := extract(context.Background())
	assert.False(t, ok)

	_, ok = extract(tenant.WithID(context.Background(), ""))
	assert.False(t, ok)

	attr, ok := extract(tenant.WithID(context.Background(), "t-1"))
	assert.True(t, ok)
	assert.Equal(t, slog.String("tenant_id", "t-1"), attr)
}
