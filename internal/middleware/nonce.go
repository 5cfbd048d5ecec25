package middleware

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
)

// nonceKey lets SecurityHeaders read the nonce that templ components get
// through templ.GetNonce.
type nonceKey struct{}

// NonceMiddleware generates a per-request CSP nonce.
func NonceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nonce, err := generateNonce()
		if err != nil {
			// Inline scripts will be blocked by CSP, the page still works
			slog.Warn("failed to generate csp nonce", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		ctx := templ.WithNonce(r.Context(), nonce)
		ctx = context.WithValue(ctx, nonceKey{}, nonce)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetNonce(ctx context.Context) string {
	nonce, _ := ctx.Value(nonceKey{}).(string)
	return nonce
}

// generateNonce returns 16 random bytes, base64 encoded.
func generateNonce() (string, error) {
	b := make([]byte, 16)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
