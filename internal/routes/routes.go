package routes

import (
	"net/http"

	"github.com/mindtab/mindtab/internal/app"
	"github.com/mindtab/mindtab/internal/handler"
	"github.com/mindtab/mindtab/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	home := handler.NewHomeHandler(app.DB)
	auth := handler.NewAuthHandler(app.AuthService, app.Cfg)
	account := handler.NewAccountHandler(app.AuthService, app.UserService)
	profile := handler.NewProfileHandler(app.ProfileService)
	dashboard := handler.NewDashboardHandler(app.GoalService, app.HabitService, app.JournalService, app.Preferences)
	goal := handler.NewGoalHandler(app.GoalService, app.Preferences)
	habit := handler.NewHabitHandler(app.HabitService)
	journal := handler.NewJournalHandler(app.JournalService)
	project := handler.NewProjectHandler(app.ProjectService)
	preference := handler.NewPreferenceHandler(app.Preferences)
	session := handler.NewSessionHandler(app.SessionService)
	sync := handler.NewSyncHandler(app.SyncService, app.Cfg.SyncMaxBodyBytes)

	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /{$}", home.HomePage)
	mux.HandleFunc("GET /robots.txt", home.Robots)
	mux.HandleFunc("GET /healthz", home.Healthz)
	if app.Cfg.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	// Auth (rate limited)
	rateLimiter := middleware.RateLimitAuth()

	mux.HandleFunc("GET /auth", middleware.RequireGuest(auth.AuthPage))
	mux.HandleFunc("GET /auth/google", rateLimiter(middleware.RequireGuest(auth.GoogleAuth)))
	mux.HandleFunc("GET /auth/google/callback", rateLimiter(auth.GoogleCallback))
	mux.HandleFunc("GET /auth/github", rateLimiter(middleware.RequireGuest(auth.GitHubAuth)))
	mux.HandleFunc("GET /auth/github/callback", rateLimiter(auth.GitHubCallback))
	mux.HandleFunc("GET /auth/magic-link/{token}", auth.VerifyMagicLink)
	mux.HandleFunc("POST /auth/magic-link", rateLimiter(middleware.RequireGuest(auth.SendMagicLink)))
	mux.HandleFunc("POST /auth/password", rateLimiter(middleware.RequireGuest(auth.PasswordAuth)))
	mux.HandleFunc("POST /auth/logout", auth.Logout)
	mux.HandleFunc("POST /api/auth/token", rateLimiter(auth.Token))

	// ============================================================================
	// EXTENSION SYNC (session token, CORS)
	// ============================================================================

	extension := func(h http.HandlerFunc) http.HandlerFunc {
		h = middleware.ExtensionSession(app.SessionService)(h)
		h = middleware.CORS(app.Cfg.SyncAllowedOrigin, http.MethodPost)(h)
		return middleware.RateLimitSync()(h)
	}

	// No method in the pattern: other methods get a sync-style 405
	mux.HandleFunc("/api/sync/reading-list", extension(sync.ReadingList))
	mux.HandleFunc("/api/sync/bookmarks", extension(sync.Bookmarks))
	mux.HandleFunc("DELETE /api/sessions/current", middleware.ExtensionSession(app.SessionService)(session.RevokeCurrent))

	// ============================================================================
	// PROTECTED ROUTES
	// ============================================================================

	mux.HandleFunc("GET /app/dashboard", requireAuth(dashboard.DashboardPage))

	// Goals
	mux.HandleFunc("GET /api/goals", requireAuth(goal.List))
	mux.HandleFunc("POST /api/goals", requireAuth(goal.Create))
	mux.HandleFunc("GET /api/goals/export", requireAuth(goal.Export))
	mux.HandleFunc("POST /api/goals/reorder", requireAuth(goal.Reorder))
	mux.HandleFunc("POST /api/goals/move", requireAuth(goal.Move))
	mux.HandleFunc("GET /api/goals/{id}", requireAuth(goal.Get))
	mux.HandleFunc("PATCH /api/goals/{id}", requireAuth(goal.Update))
	mux.HandleFunc("DELETE /api/goals/{id}", requireAuth(goal.Delete))
	mux.HandleFunc("POST /api/goals/{id}/toggle", requireAuth(goal.Toggle))

	// Habits
	mux.HandleFunc("GET /api/habits", requireAuth(habit.List))
	mux.HandleFunc("POST /api/habits", requireAuth(habit.Create))
	mux.HandleFunc("GET /api/habits/trackers", requireAuth(habit.Trackers))
	mux.HandleFunc("GET /api/habits/{id}", requireAuth(habit.Get))
	mux.HandleFunc("PATCH /api/habits/{id}", requireAuth(habit.Update))
	mux.HandleFunc("DELETE /api/habits/{id}", requireAuth(habit.Delete))
	mux.HandleFunc("POST /api/habits/{id}/track", requireAuth(habit.Track))

	// Journals
	mux.HandleFunc("GET /api/journals", requireAuth(journal.List))
	mux.HandleFunc("POST /api/journals", requireAuth(journal.Create))
	mux.HandleFunc("GET /api/journals/{id}", requireAuth(journal.Get))
	mux.HandleFunc("PATCH /api/journals/{id}", requireAuth(journal.Update))
	mux.HandleFunc("DELETE /api/journals/{id}", requireAuth(journal.Delete))
	mux.HandleFunc("GET /api/journals/{id}/html", requireAuth(journal.HTML))
	mux.HandleFunc("POST /api/journals/{id}/attachments", requireAuth(journal.UploadAttachment))

	// Projects
	mux.HandleFunc("GET /api/projects", requireAuth(project.List))
	mux.HandleFunc("POST /api/projects", requireAuth(project.Create))
	mux.HandleFunc("GET /api/projects/{id}", requireAuth(project.Get))
	mux.HandleFunc("PATCH /api/projects/{id}", requireAuth(project.Update))
	mux.HandleFunc("POST /api/projects/{id}/archive", requireAuth(project.Archive))
	mux.HandleFunc("POST /api/projects/{id}/unarchive", requireAuth(project.Unarchive))

	// Preferences
	mux.HandleFunc("GET /api/preferences", requireAuth(preference.Get))
	mux.HandleFunc("PUT /api/preferences", requireAuth(preference.Put))

	// Extension sessions
	mux.HandleFunc("GET /api/sessions", requireAuth(session.List))
	mux.HandleFunc("POST /api/sessions", requireAuth(session.Create))
	mux.HandleFunc("DELETE /api/sessions/{id}", requireAuth(session.Revoke))

	// Profile & account
	mux.HandleFunc("GET /api/profile", requireAuth(profile.Get))
	mux.HandleFunc("PATCH /api/profile", requireAuth(profile.Update))
	mux.HandleFunc("POST /api/account/password", requireAuth(account.ChangePassword))
	mux.HandleFunc("DELETE /api/account", requireAuth(account.DeleteAccount))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.HandleFunc("/{path...}", home.NotFoundPage)

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.Config(app.Cfg), // Needed by SecurityHeaders for the S3 endpoint
		middleware.NonceMiddleware, // Before SecurityHeaders
		middleware.SecurityHeaders,
		middleware.RequestLogging,
		middleware.CSRFProtection,
		middleware.AuthMiddleware(app.AuthService, app.UserService, app.ProfileService),
		middleware.Metrics, // Innermost, reads the pattern the mux matched
	)
}
