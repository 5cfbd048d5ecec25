package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mindtab/mindtab/internal/ctxkeys"
	"github.com/mindtab/mindtab/internal/service"
)

// SessionTokenHeader carries the browser extension's session token.
const SessionTokenHeader = "X-Session-Token"

// AuthMiddleware resolves the caller from the auth cookie or an
// "Authorization: Bearer" JWT and adds user + profile to the context.
// Requests without valid credentials continue anonymously.
func AuthMiddleware(authService *service.AuthService, userService *service.UserService, profileService *service.ProfileService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, fromCookie := authToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			// A bad cookie is cleared, a bad bearer token is just ignored
			reject := func() {
				if fromCookie {
					authService.ClearJWTCookie(w)
				}
				next.ServeHTTP(w, r)
			}

			claims, err := authService.VerifyJWT(token)
			if err != nil {
				reject()
				return
			}

			user, err := userService.ByID(claims.UserID)
			if err != nil {
				reject()
				return
			}

			// Security: Remove password hash from context
			user.PasswordHash = nil

			profile, err := profileService.ByUserID(user.ID)
			if err != nil {
				reject()
				return
			}

			ctx := ctxkeys.WithUser(r.Context(), user)
			ctx = ctxkeys.WithProfile(ctx, profile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authToken(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(service.AuthCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return bearerToken(r), false
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// ExtensionSession resolves the X-Session-Token header into a session.
// Invalid or expired tokens leave the context without a session and the
// handler decides how to answer.
func ExtensionSession(sessionService *service.SessionService) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(SessionTokenHeader)
			if raw == "" {
				next(w, r)
				return
			}

			session, err := sessionService.Authenticate(raw)
			if err != nil {
				next(w, r)
				return
			}

			next(w, r.WithContext(ctxkeys.WithSession(r.Context(), session)))
		}
	}
}

// RequireAuth answers 401 for API calls without a user. Browser pages are
// redirected to the sign-in page instead.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) != nil {
			next.ServeHTTP(w, r)
			return
		}

		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
			return
		}

		http.Redirect(w, r, "/auth", http.StatusSeeOther)
	}
}

// RequireGuest sends signed-in users to the dashboard.
func RequireGuest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) != nil {
			http.Redirect(w, r, "/app/dashboard", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	}
}
