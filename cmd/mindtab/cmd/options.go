package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mindtab/mindtab/internal/client"
	"github.com/mindtab/mindtab/internal/logger"
	"github.com/mindtab/mindtab/internal/prefs"
)

const defaultServer = "http://localhost:8090"

const (
	credentialServer = "server"
	credentialToken  = "token"
)

var errNotLoggedIn = errors.New("not logged in, run `mindtab login` or set MINDTAB_TOKEN")

// Options are the global flags shared by every subcommand.
type Options struct {
	Server  string
	Token   string
	Verbose bool

	// ConfigDir overrides the user config directory.
	ConfigDir string
}

func (o *Options) Setup() {
	slog.SetDefault(logger.New(os.Stderr, o.Verbose))
}

func (o *Options) configDir() (string, error) {
	if o.ConfigDir != "" {
		return o.ConfigDir, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mindtab"), nil
}

// credentials holds the server URL and token written by login.
func (o *Options) credentials() (*prefs.FileKV, error) {
	dir, err := o.configDir()
	if err != nil {
		return nil, err
	}
	return prefs.NewFileKV(filepath.Join(dir, "credentials.yaml")), nil
}

// Preferences is the local preference store.
func (o *Options) Preferences() (*prefs.Store, error) {
	dir, err := o.configDir()
	if err != nil {
		return nil, err
	}
	return prefs.NewStore(prefs.NewFileKV(filepath.Join(dir, "prefs.yaml"))), nil
}

// resolve picks the server and token: flags and env first, then the
// credentials file, then the default server.
func (o *Options) resolve(ctx context.Context) (server, token string, err error) {
	server, token = o.Server, o.Token
	if server == "" || token == "" {
		kv, err := o.credentials()
		if err != nil {
			return "", "", err
		}
		stored, err := kv.Load(ctx)
		if err != nil {
			return "", "", err
		}
		if server == "" {
			server = stored[credentialServer]
		}
		if token == "" {
			token = stored[credentialToken]
		}
	}
	if server == "" {
		server = defaultServer
	}
	return server, token, nil
}

// Client returns an API client for an authenticated user.
func (o *Options) Client(ctx context.Context) (*client.Client, error) {
	server, token, err := o.resolve(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, errNotLoggedIn
	}
	slog.Debug("using server", "url", server)
	return client.New(server, token), nil
}
