package templates_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/carenotify/pkg/email/templates"
)

func TestLayout(t *testing.T) {
	t.Parallel()
	html, err := templates.Render(context.Background(),
		templates.Layout("Results <ready>", "Sent by St. Mary's", templates.Message("Hi & welcome", "<b>not bold</b>")))
	require.NoError(t, err)

	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "<title>Results &lt;ready&gt;</title>")
	assert.Contains(t, html, "Hi &amp; welcome")
	assert.Contains(t, html, "&lt;b&gt;not bold&lt;/b&gt;")
	assert.Contains(t, html, "St. Mary&#39;s")
}

func TestLayout_RawBody(t *testing.T) {
	t.Parallel()
	html, err := templates.Render(context.Background(),
		templates.Layout("S", "", templates.HTML(`<p class="x">See you at 10:00</p>`)))
	require.NoError(t, err)
	assert.Contains(t, html, `<p class="x">See you at 10:00</p>`)
}
