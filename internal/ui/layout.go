package ui

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/mindtab/mindtab/internal/ctxkeys"
)

const baseStyle = `
body{font-family:system-ui,sans-serif;margin:0;background:#f8fafc;color:#0f172a}
main{max-width:72rem;margin:0 auto;padding:1.5rem}
.flex{display:flex}.grid{display:grid}.grid-cols-3{grid-template-columns:repeat(3,minmax(0,1fr))}
.gap-4{gap:1rem}.gap-2{gap:.5rem}.p-3{padding:.75rem}.p-4{padding:1rem}.mb-2{margin-bottom:.5rem}.mb-4{margin-bottom:1rem}
.rounded{border-radius:.5rem}.border{border:1px solid #e2e8f0}.bg-white{background:#fff}
.text-sm{font-size:.875rem}.text-muted{color:#64748b}.font-semibold{font-weight:600}
.line-through{text-decoration:line-through}.error{color:#b91c1c}
`

// Page wraps body in the HTML document shell. The CSRF token is exposed as
// a meta tag for fetch calls.
func Page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}

		appName := "MindTab"
		if cfg := ctxkeys.Config(ctx); cfg != nil && cfg.AppName != "" {
			appName = cfg.AppName
		}

		hw.raw("<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\">")
		hw.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.printf(`<meta name="csrf-token" content="%s">`, ctxkeys.CSRFToken(ctx))
		hw.printf("<title>%s · %s</title>", title, appName)
		hw.printf(`<style nonce="%s">`, templ.GetNonce(ctx))
		hw.raw(baseStyle)
		hw.raw("</style></head><body><main>")
		hw.component(ctx, body)
		hw.raw("</main></body></html>")

		return hw.err
	})
}

func csrfField(hw *htmlWriter, ctx context.Context) {
	hw.printf(`<input type="hidden" name="csrf_token" value="%s">`, ctxkeys.CSRFToken(ctx))
}
