// Package client talks to the MindTab JSON API. It implements the reorder
// batch contract and the goal cache fetcher so the CLI can drive the same
// optimistic Mover the server-side code uses.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/prefs"
)

const DefaultTimeout = 15 * time.Second

var ErrUnauthorized = errors.New("not authenticated, check the API token")

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.httpClient = h
	return c
}

// Login exchanges email and password for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	var out struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/token", map[string]string{"email": email, "password": password}, &out)
	if err != nil {
		return "", time.Time{}, err
	}
	return out.Token, out.ExpiresAt, nil
}

// Goals returns the board goals in position order. It has the shape of a
// cache.Fetcher.
func (c *Client) Goals(ctx context.Context) ([]model.Goal, error) {
	var goals []model.Goal
	err := c.do(ctx, http.MethodGet, "/api/goals?sort=position", nil, &goals)
	return goals, err
}

func (c *Client) CreateGoal(ctx context.Context, title string) (*model.Goal, error) {
	var goal model.Goal
	err := c.do(ctx, http.MethodPost, "/api/goals", map[string]string{"title": title}, &goal)
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

// UpdatePositions sends one reorder batch.
func (c *Client) UpdatePositions(ctx context.Context, updates []model.PositionUpdate) error {
	return c.do(ctx, http.MethodPost, "/api/goals/reorder", map[string]any{"updates": updates}, nil)
}

func (c *Client) Preferences(ctx context.Context) (prefs.Preferences, error) {
	var p prefs.Preferences
	err := c.do(ctx, http.MethodGet, "/api/preferences", nil, &p)
	return p, err
}

func (c *Client) SavePreferences(ctx context.Context, p prefs.Preferences) error {
	return c.do(ctx, http.MethodPut, "/api/preferences", p, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, redact(req.URL), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(data))
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

func redact(u *url.URL) string {
	return u.Scheme + "://" + u.Host + u.Path
}
