package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mindtab/mindtab/internal/ctxkeys"
)

// SecurityHeaders sets CSP and the usual hardening headers. Inline scripts
// are only allowed with the request nonce. Attachment images may come from
// the configured S3 endpoint.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		imgSrc := []string{"'self'", "data:", "https:"}
		if cfg := ctxkeys.Config(r.Context()); cfg != nil && cfg.S3Endpoint != "" {
			imgSrc = append(imgSrc, cfg.S3Endpoint)
		}

		scriptSrc := "'self'"
		if nonce := GetNonce(r.Context()); nonce != "" {
			scriptSrc += fmt.Sprintf(" 'nonce-%s'", nonce)
		}

		h := w.Header()
		h.Set("Content-Security-Policy", strings.Join([]string{
			"default-src 'self'",
			"script-src " + scriptSrc,
			"style-src 'self' 'unsafe-inline'",
			"img-src " + strings.Join(imgSrc, " "),
			"frame-ancestors 'none'",
			"base-uri 'self'",
			"form-action 'self' https://github.com https://accounts.google.com",
		}, "; "))
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if cfg := ctxkeys.Config(r.Context()); cfg != nil && cfg.IsProduction() {
			h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}
