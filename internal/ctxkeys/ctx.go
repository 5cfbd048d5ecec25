package ctxkeys

import (
	"context"

	"github.com/mindtab/mindtab/internal/config"
	"github.com/mindtab/mindtab/internal/model"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	UserKey      contextKey = "user"
	ProfileKey   contextKey = "profile"
	SessionKey   contextKey = "session"
	ConfigKey    contextKey = "config"
	CSRFTokenKey contextKey = "csrf_token"
)

func User(ctx context.Context) *model.User {
	user, _ := ctx.Value(UserKey).(*model.User)
	return user
}

func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

func Config(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(ConfigKey).(*config.Config)
	return cfg
}

func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, ConfigKey, cfg)
}

func Profile(ctx context.Context) *model.Profile {
	profile, _ := ctx.Value(ProfileKey).(*model.Profile)
	return profile
}

func WithProfile(ctx context.Context, profile *model.Profile) context.Context {
	return context.WithValue(ctx, ProfileKey, profile)
}

// Session is set when the request was authenticated with an extension
// session token instead of a JWT.
func Session(ctx context.Context) *model.Session {
	session, _ := ctx.Value(SessionKey).(*model.Session)
	return session
}

func WithSession(ctx context.Context, session *model.Session) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(CSRFTokenKey).(string)
	return token
}

func WithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, CSRFTokenKey, token)
}
