package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mindtab/mindtab/internal/config"
	"github.com/mindtab/mindtab/internal/ctxkeys"
	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/service"
	"github.com/mindtab/mindtab/internal/ui"
	"github.com/mindtab/mindtab/internal/validation"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

const (
	oauthStateCookie = "oauth_state"
	oauthFailed      = "OAuth authentication failed. Please try again."
)

type AuthHandler struct {
	authService       *service.AuthService
	googleOAuthConfig *oauth2.Config
	githubOAuthConfig *oauth2.Config
}

func NewAuthHandler(authService *service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		googleOAuthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.AppURL + "/auth/google/callback",
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email"},
			Endpoint:     google.Endpoint,
		},
		githubOAuthConfig: &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  cfg.AppURL + "/auth/github/callback",
			Scopes:       []string{"user:email"},
			Endpoint:     github.Endpoint,
		},
	}
}

func (h *AuthHandler) providers() ui.Providers {
	return ui.Providers{
		Google: h.googleOAuthConfig.ClientID != "",
		GitHub: h.githubOAuthConfig.ClientID != "",
	}
}

func (h *AuthHandler) signInError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	ui.RenderStatus(w, r, status, ui.SignIn(msg, h.providers()))
}

func (h *AuthHandler) AuthPage(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, ui.SignIn("", h.providers()))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	http.Redirect(w, r, "/auth", http.StatusSeeOther)
}

// login sets the auth cookie and sends the user to the dashboard.
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, user *model.User, method string) {
	jwtToken, err := h.authService.GenerateJWT(user)
	if err != nil {
		slog.Error("failed to generate JWT", "error", err, "user_id", user.ID)
		h.signInError(w, r, http.StatusInternalServerError, "An error occurred. Please try again.")
		return
	}

	h.authService.SetJWTCookie(w, jwtToken, time.Now().Add(h.authService.JWTExpiry()))

	slog.Info("user logged in", "user_id", user.ID, "method", method)
	http.Redirect(w, r, "/app/dashboard", http.StatusSeeOther)
}

func (h *AuthHandler) SendMagicLink(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))

	if email == "" {
		h.signInError(w, r, http.StatusBadRequest, "Email is required")
		return
	}

	err := validation.ValidateEmail(email)
	if err != nil {
		h.signInError(w, r, http.StatusBadRequest, "Please provide a valid email address")
		return
	}

	err = h.authService.SendMagicLink(email)
	if err != nil {
		// Same page either way, so addresses cannot be probed
		slog.Warn("magic link send failed", "error", err)
	}

	ui.Render(w, r, ui.MagicLinkSent(email))
}

func (h *AuthHandler) VerifyMagicLink(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.VerifyMagicLink(r.PathValue("token"))
	if err != nil {
		slog.Warn("magic link verification failed", "error", err)
		h.signInError(w, r, http.StatusBadRequest, "Invalid or expired magic link. Please try again.")
		return
	}

	h.login(w, r, user, "magic_link")
}

func (h *AuthHandler) PasswordAuth(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if email == "" || password == "" {
		h.signInError(w, r, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.authService.Login(email, password)
	if err != nil {
		slog.Warn("password login failed", "error", err)
		h.signInError(w, r, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	h.login(w, r, user, "password")
}

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Token exchanges email and password for a bearer JWT, for API clients
// such as the CLI.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrPasswordless) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Warn("api token login failed", "error", err)
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := h.authService.GenerateJWT(user)
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.authService.JWTExpiry()).UTC(),
	})
}

func (h *AuthHandler) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	h.redirectToProvider(w, r, h.googleOAuthConfig)
}

func (h *AuthHandler) GitHubAuth(w http.ResponseWriter, r *http.Request) {
	h.redirectToProvider(w, r, h.githubOAuthConfig)
}

// redirectToProvider stores a state token in a short-lived cookie and sends
// the user to the provider's consent screen.
func (h *AuthHandler) redirectToProvider(w http.ResponseWriter, r *http.Request, conf *oauth2.Config) {
	if conf.ClientID == "" {
		http.NotFound(w, r)
		return
	}

	state := generateOAuthState()

	cfg := ctxkeys.Config(r.Context())
	isProduction := cfg != nil && cfg.IsProduction()

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})

	http.Redirect(w, r, conf.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// exchange checks the state cookie and trades the callback code for an
// HTTP client authorized as the user.
func exchange(w http.ResponseWriter, r *http.Request, conf *oauth2.Config) (*http.Client, error) {
	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || cookie.Value != state {
		return nil, errors.New("oauth state mismatch")
	}

	http.SetCookie(w, &http.Cookie{
		Name:   oauthStateCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		return nil, errors.New("oauth callback missing code")
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}

	return conf.Client(context.Background(), token), nil
}

func getJSON(client *http.Client, url string, v any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			slog.Error("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	client, err := exchange(w, r, h.googleOAuthConfig)
	if err != nil {
		slog.Warn("google oauth failed", "error", err)
		h.signInError(w, r, http.StatusBadRequest, oauthFailed)
		return
	}

	var userInfo struct {
		Email string `json:"email"`
	}
	err = getJSON(client, "https://www.googleapis.com/oauth2/v2/userinfo", &userInfo)
	if err != nil {
		slog.Error("failed to get google user info", "error", err)
		h.signInError(w, r, http.StatusBadGateway, oauthFailed)
		return
	}

	h.oauthLogin(w, r, userInfo.Email, "google")
}

func (h *AuthHandler) GitHubCallback(w http.ResponseWriter, r *http.Request) {
	client, err := exchange(w, r, h.githubOAuthConfig)
	if err != nil {
		slog.Warn("github oauth failed", "error", err)
		h.signInError(w, r, http.StatusBadRequest, oauthFailed)
		return
	}

	var userInfo struct {
		Email string `json:"email"`
	}
	err = getJSON(client, "https://api.github.com/user", &userInfo)
	if err != nil {
		slog.Error("failed to get github user info", "error", err)
		h.signInError(w, r, http.StatusBadGateway, oauthFailed)
		return
	}

	// Private addresses are only listed by /user/emails
	if userInfo.Email == "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		err = getJSON(client, "https://api.github.com/user/emails", &emails)
		if err != nil {
			slog.Error("failed to get github user emails", "error", err)
			h.signInError(w, r, http.StatusBadGateway, oauthFailed)
			return
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				userInfo.Email = e.Email
				break
			}
		}
	}

	if userInfo.Email == "" {
		slog.Warn("github oauth: no email found")
		h.signInError(w, r, http.StatusBadRequest, "Could not retrieve a verified email from GitHub.")
		return
	}

	h.oauthLogin(w, r, userInfo.Email, "github")
}

func (h *AuthHandler) oauthLogin(w http.ResponseWriter, r *http.Request, email, provider string) {
	user, err := h.authService.AuthenticateOAuth(email, provider)
	if err != nil {
		slog.Error("oauth authentication failed", "error", err, "provider", provider)
		h.signInError(w, r, http.StatusInternalServerError, "Authentication failed. Please try again.")
		return
	}

	h.login(w, r, user, provider)
}

// generateOAuthState returns 32 random bytes, URL-safe base64 encoded.
func generateOAuthState() string {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		panic("failed to generate oauth state: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}
