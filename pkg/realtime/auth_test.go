package realtime_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/carenotify/pkg/jwt"
	"github.com/dmitrymomot/carenotify/pkg/realtime"
)

func TestAuthenticator(t *testing.T) {
	t.Parallel()
	svc, err := jwt.New([]byte("secret"))
	require.NoError(t, err)
	token, err := svc.Generate(jwt.NewClaims("t1", "u1", time.Hour))
	require.NoError(t, err)
	auth := realtime.NewAuthenticator(svc)

	tests := []struct {
		name    string
		target  string
		header  http.Header
		want    realtime.Key
		wantErr error
	}{
		{
			name:   "query params",
			target: "/ws?token=" + token + "&tenant_id=t1",
			want:   realtime.Key{TenantID: "t1", UserID: "u1"},
		},
		{
			name:   "headers",
			target: "/ws",
			header: http.Header{"Authorization": {"Bearer " + token}, "X-Tenant-Id": {"t1"}},
			want:   realtime.Key{TenantID: "t1", UserID: "u1"},
		},
		{name: "missing token", target: "/ws?tenant_id=t1", wantErr: realtime.ErrMissingToken},
		{name: "missing tenant", target: "/ws?token=" + token, wantErr: realtime.ErrMissingTenant},
		{name: "missing both reports token first", target: "/ws", wantErr: realtime.ErrMissingToken},
		{name: "bad token", target: "/ws?token=junk&tenant_id=t1", wantErr: realtime.ErrUnauthorized},
		{name: "tenant mismatch", target: "/ws?token=" + token + "&tenant_id=t2", wantErr: realtime.ErrTenantMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			for k, v := range tt.header {
				r.Header[k] = v
			}
			key, err := auth.Authenticate(r)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, key)
		})
	}
}
