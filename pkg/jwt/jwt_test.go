package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/carenotify/pkg/jwt"
)

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := jwt.New(nil)
	assert.ErrorIs(t, err, jwt.ErrMissingSigningKey)

	_, err = jwt.NewFromConfig(jwt.Config{})
	assert.ErrorIs(t, err, jwt.ErrMissingSigningKey)

	svc, err := jwt.NewFromConfig(jwt.Config{SigningKey: "secret", Issuer: "carenotify"})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestService_GenerateParse(t *testing.T) {
	t.Parallel()
	svc, err := jwt.New([]byte("test-secret"))
	require.NoError(t, err)

	token, err := svc.Generate(jwt.NewClaims("tenant-1", "user-1", time.Hour))
	require.NoError(t, err)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", claims.TenantID)
	assert.Equal(t, "user-1", claims.UserID())
}

func TestService_ParseErrors(t *testing.T) {
	t.Parallel()
	svc, err := jwt.New([]byte("test-secret"))
	require.NoError(t, err)
	other, err := jwt.New([]byte("other-secret"))
	require.NoError(t, err)

	c := jwt.NewClaims("t1", "u1", 0)
	c.ExpiresAt = gojwt.NewNumericDate(time.Now().Add(-time.Minute))
	expired, err := svc.Generate(c)
	require.NoError(t, err)

	foreign, err := other.Generate(jwt.NewClaims("t1", "u1", time.Hour))
	require.NoError(t, err)

	noTenant, err := svc.Generate(jwt.NewClaims("", "u1", time.Hour))
	require.NoError(t, err)

	none, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, jwt.NewClaims("t1", "u1", time.Hour)).
		SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", jwt.ErrMissingToken},
		{"garbage", "not.a.token", jwt.ErrInvalidToken},
		{"expired", expired, jwt.ErrExpiredToken},
		{"wrong key", foreign, jwt.ErrInvalidSignature},
		{"missing tenant", noTenant, jwt.ErrInvalidClaims},
		{"alg none", none, jwt.ErrInvalidSignature},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Parse(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestService_Issuer(t *testing.T) {
	t.Parallel()
	issuing, err := jwt.New([]byte("k"), jwt.WithIssuer("carenotify"))
	require.NoError(t, err)
	plain, err := jwt.New([]byte("k"))
	require.NoError(t, err)

	token, err := plain.Generate(jwt.NewClaims("t1", "u1", time.Hour))
	require.NoError(t, err)
	_, err = issuing.Parse(token)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)

	token, err = issuing.Generate(jwt.NewClaims("t1", "u1", time.Hour))
	require.NoError(t, err)
	claims, err := issuing.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "carenotify", claims.Issuer)
}

func TestService_GenerateRequiresSubject(t *testing.T) {
	t.Parallel()
	svc, err := jwt.New([]byte("k"))
	require.NoError(t, err)
	_, err = svc.Generate(jwt.NewClaims("t1", "", time.Hour))
	assert.ErrorIs(t, err, jwt.ErrMissingClaims)
}
