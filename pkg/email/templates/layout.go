package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const (
	layoutHead = `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">` +
		`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`
	layoutBody = `</title></head><body style="margin:0;padding:24px;background:#f4f6f8;` +
		`font-family:Helvetica,Arial,sans-serif;color:#1f2933;">` +
		`<div style="max-width:600px;margin:0 auto;background:#ffffff;border-radius:6px;padding:24px;">`
	layoutFooterOpen = `</div><p style="max-width:600px;margin:16px auto 0;font-size:12px;color:#7b8794;">`
	layoutTail       = `</p></body></html>`
)

// Layout wraps an email body in the shared HTML shell. Subject and footer are
// escaped; the body component renders as-is.
func Layout(subject, footer string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, layoutHead+templ.EscapeString(subject)+layoutBody); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, layoutFooterOpen+templ.EscapeString(footer)+layoutTail)
		return err
	})
}

// Message renders a title and plain-text message, both escaped.
func Message(title, message string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w,
			`<h2 style="margin:0 0 12px;font-size:20px;">`+templ.EscapeString(title)+`</h2>`+
				`<p style="margin:0;line-height:1.5;">`+templ.EscapeString(message)+`</p>`)
		return err
	})
}

// HTML renders trusted markup produced from an operator-managed template.
func HTML(markup string) templ.Component {
	return templ.Raw(markup)
}
