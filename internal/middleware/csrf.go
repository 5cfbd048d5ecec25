package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/mindtab/mindtab/internal/ctxkeys"
	"github.com/mindtab/mindtab/internal/service"
)

const (
	csrfCookieName = "csrf_token"
	csrfFormField  = "csrf_token"
	csrfHeader     = "X-CSRF-Token"
	csrfTokenLen   = 32
)

// csrfExemptPrefixes are called cross-origin by the browser extension and
// authenticate with a header token, never with cookies.
var csrfExemptPrefixes = []string{
	"/api/sync/",
}

// csrfExemptPaths take credentials in the request body and set no cookie.
var csrfExemptPaths = []string{
	"/api/auth/token",
}

// CSRFProtection validates CSRF tokens on cookie-authenticated state-changing
// requests. Bearer and session-token requests carry no ambient credentials and
// are exempt.
func CSRFProtection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := getOrGenerateCSRFToken(w, r)
		ctx := ctxkeys.WithCSRFToken(r.Context(), token)

		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		if csrfExempt(r) {
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		// Header first (fetch from the dashboard), then form field
		submittedToken := r.Header.Get(csrfHeader)
		if submittedToken == "" && !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			submittedToken = r.PostFormValue(csrfFormField)
		}

		if !validCSRFToken(token, submittedToken) {
			slog.Warn("csrf validation failed",
				"path", r.URL.Path,
				"method", r.Method,
				"ip", ClientIP(r),
			)
			http.Error(w, "Invalid CSRF token", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func csrfExempt(r *http.Request) bool {
	if slices.Contains(csrfExemptPaths, r.URL.Path) {
		return true
	}
	for _, prefix := range csrfExemptPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	if r.Header.Get(SessionTokenHeader) != "" {
		return true
	}
	_, err := r.Cookie(service.AuthCookieName)
	return err != nil && bearerToken(r) != ""
}

func getOrGenerateCSRFToken(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(csrfCookieName)
	if err == nil && cookie.Value != "" && len(cookie.Value) == base64.RawURLEncoding.EncodedLen(csrfTokenLen) {
		return cookie.Value
	}

	token := generateCSRFToken()

	cfg := ctxkeys.Config(r.Context())
	isProduction := cfg != nil && cfg.IsProduction()

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   isProduction, // APP_ENV based, r.TLS is unreliable behind proxies
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 7,
	})

	return token
}

func generateCSRFToken() string {
	bytes := make([]byte, csrfTokenLen)
	_, err := rand.Read(bytes)
	if err != nil {
		panic("failed to generate csrf token: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}

// validCSRFToken compares in constant time.
func validCSRFToken(expected, actual string) bool {
	if expected == "" || actual == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(actual)) == 1
}
