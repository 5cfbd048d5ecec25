package middleware

import (
	"net/http"

	"github.com/mindtab/mindtab/internal/config"
	"github.com/mindtab/mindtab/internal/ctxkeys"
)

// Config puts the sanitized configuration (no secrets) into the request context.
func Config(cfg *config.Config) func(http.Handler) http.Handler {
	safe := cfg.Sanitized()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(ctxkeys.WithConfig(r.Context(), safe)))
		})
	}
}
