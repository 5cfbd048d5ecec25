package ui

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Providers lists the OAuth sign-in buttons to show.
type Providers struct {
	Google bool
	GitHub bool
}

// SignIn is the combined magic link and password sign-in page.
func SignIn(errMsg string, providers Providers) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}

		hw.raw(`<div class="bg-white border rounded p-4">`)
		hw.raw(`<h1>Sign in</h1>`)
		if errMsg != "" {
			hw.printf(`<p class="error" role="alert">%s</p>`, errMsg)
		}

		hw.raw(`<form method="post" action="/auth/magic-link" class="mb-4">`)
		csrfField(hw, ctx)
		hw.raw(`<label>Email <input type="email" name="email" required autocomplete="email"></label> `)
		hw.raw(`<button type="submit">Send magic link</button></form>`)

		hw.raw(`<details class="mb-4"><summary class="text-sm">Use a password</summary>`)
		hw.raw(`<form method="post" action="/auth/password">`)
		csrfField(hw, ctx)
		hw.raw(`<label>Email <input type="email" name="email" required autocomplete="email"></label> `)
		hw.raw(`<label>Password <input type="password" name="password" required autocomplete="current-password"></label> `)
		hw.raw(`<button type="submit">Sign in</button></form></details>`)

		if providers.Google || providers.GitHub {
			hw.raw(`<div class="flex gap-2">`)
			if providers.Google {
				hw.raw(`<a href="/auth/google">Continue with Google</a>`)
			}
			if providers.GitHub {
				hw.raw(`<a href="/auth/github">Continue with GitHub</a>`)
			}
			hw.raw(`</div>`)
		}
		hw.raw(`</div>`)

		return hw.err
	})
	return Page("Sign in", body)
}

func MagicLinkSent(email string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<div class="bg-white border rounded p-4"><h1>Check your email</h1>`)
		hw.printf(`<p>We sent a sign-in link to <strong>%s</strong>. It expires in a few minutes.</p>`, email)
		hw.raw(`<p class="text-sm text-muted"><a href="/auth">Use a different address</a></p></div>`)
		return hw.err
	})
	return Page("Check your email", body)
}

func NotFound() templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<h1>Page not found</h1><p><a href="/app/dashboard">Back to the dashboard</a></p>`)
		return hw.err
	})
	return Page("Not found", body)
}
