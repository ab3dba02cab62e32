package cli

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/carenotify/internal/app"
	"github.com/dmitrymomot/carenotify/pkg/jwt"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommands(t *testing.T) {
	cmd := newRootCmd()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "migrate", "token", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "notifyd dev (none)\n", out)
}

func TestToken(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "cli-test-key")

	out, err := run(t, "token", "--tenant", "t1", "--user", "u1", "--dispatch")
	require.NoError(t, err)

	svc, err := jwt.New([]byte("cli-test-key"))
	require.NoError(t, err)
	claims, err := svc.Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "t1", claims.TenantID)
	assert.Equal(t, "u1", claims.UserID())
	assert.True(t, slices.Contains(claims.Audience, app.DispatchAudience))
	assert.NotNil(t, claims.ExpiresAt)
}

func TestToken_RequiresFlags(t *testing.T) {
	_, err := run(t, "token", "--tenant", "t1")
	assert.Error(t, err)
}

func TestServe_RejectsArgs(t *testing.T) {
	_, err := run(t, "serve", "extra")
	assert.Error(t, err)
}
