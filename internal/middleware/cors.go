package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORS allows one browser extension origin to call the wrapped handler.
// Preflight requests are answered here. Other origins get no CORS headers,
// and their preflights are refused.
func CORS(allowedOrigin string, methods ...string) func(http.HandlerFunc) http.HandlerFunc {
	allowMethods := strings.Join(append(methods, http.MethodOptions), ", ")

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := origin != "" && allowedOrigin != "" && origin == allowedOrigin

			if allowed {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", allowMethods)
				h.Set("Access-Control-Allow-Headers", "Content-Type, "+SessionTokenHeader)
				h.Set("Access-Control-Max-Age", strconv.Itoa(86400))
				h.Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				if !allowed {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next(w, r)
		}
	}
}
