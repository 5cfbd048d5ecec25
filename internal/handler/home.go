package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mindtab/mindtab/internal/ctxkeys"
	"github.com/mindtab/mindtab/internal/ui"
)

const robotsTxt = `User-agent: *
Disallow: /app/
Disallow: /api/
Disallow: /auth/
`

// Pinger is satisfied by *sql.DB and *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HomeHandler struct {
	db Pinger
}

func NewHomeHandler(db Pinger) *HomeHandler {
	return &HomeHandler{db: db}
}

// HomePage sends signed-in users to the dashboard and everyone else to sign in.
func (h *HomeHandler) HomePage(w http.ResponseWriter, r *http.Request) {
	if ctxkeys.User(r.Context()) != nil {
		http.Redirect(w, r, "/app/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/auth", http.StatusSeeOther)
}

func (h *HomeHandler) NotFoundPage(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	ui.RenderStatus(w, r, http.StatusNotFound, ui.NotFound())
}

func (h *HomeHandler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, err := w.Write([]byte(robotsTxt))
	if err != nil {
		slog.Error("write robots.txt failed", "error", err)
	}
}

// Healthz reports whether the database answers within two seconds.
func (h *HomeHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	err := h.db.PingContext(ctx)
	if err != nil {
		slog.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
