package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/reorder"
)

type fakeServer struct {
	mu      sync.Mutex
	goals   []model.Goal
	batches [][]model.PositionUpdate
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Path == "/api/auth/token" {
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "issued", "expiresAt": "2026-11-01T00:00:00Z"})
		return
	}
	if r.Header.Get("Authorization") != "Bearer issued" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/goals":
		_ = json.NewEncoder(w).Encode(f.goals)
	case r.Method == http.MethodPost && r.URL.Path == "/api/goals/reorder":
		var body struct {
			Updates []model.PositionUpdate `json:"updates"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.batches = append(f.batches, body.Updates)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func run(t *testing.T, opts *Options, root func(*Options) *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	c := root(opts)
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&bytes.Buffer{})
	c.SetIn(strings.NewReader(stdin))
	c.SetArgs(args)
	err := c.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoginThenMove(t *testing.T) {
	api := &fakeServer{goals: []model.Goal{
		{ID: "A", Title: "Read", Status: model.GoalStatusPending, Position: 0},
		{ID: "B", Title: "Run", Status: model.GoalStatusPending, Position: 1},
	}}
	srv := httptest.NewServer(api)
	defer srv.Close()

	dir := t.TempDir()
	opts := &Options{Server: srv.URL, ConfigDir: dir}

	out, err := run(t, opts, LoginCmd, "hunter22\n", "--email", "a@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in to "+srv.URL)

	// The stored credentials are used once flags are empty.
	opts = &Options{ConfigDir: dir}
	out, err = run(t, opts, GoalsCmd, "", "move", "B", "A")
	require.NoError(t, err)
	assert.Contains(t, out, "B: Pending -> Pending (2 updated)")
	require.Len(t, api.batches, 1)

	out, err = run(t, opts, GoalsCmd, "", "move", "A", "A")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to move")
}

func TestMoveStaysInActiveProject(t *testing.T) {
	work := "work"
	api := &fakeServer{goals: []model.Goal{
		{ID: "A", Title: "Read", Status: model.GoalStatusPending, Position: 0, ProjectID: &work},
		{ID: "B", Title: "Run", Status: model.GoalStatusPending, Position: 1},
		{ID: "C", Title: "Cook", Status: model.GoalStatusPending, Position: 2, ProjectID: &work},
	}}
	srv := httptest.NewServer(api)
	defer srv.Close()

	opts := &Options{Server: srv.URL, Token: "issued", ConfigDir: t.TempDir()}
	_, err := run(t, opts, PrefsCmd, "", "set", "--project", work)
	require.NoError(t, err)

	out, err := run(t, opts, GoalsCmd, "", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "Run")

	_, err = run(t, opts, GoalsCmd, "", "move", "B", "A")
	assert.ErrorIs(t, err, errOutsideProject)
	_, err = run(t, opts, GoalsCmd, "", "move", "A", "B")
	assert.ErrorIs(t, err, errOutsideProject)
	_, err = run(t, opts, GoalsCmd, "", "toggle", "B")
	assert.ErrorIs(t, err, errOutsideProject)
	assert.Empty(t, api.batches)

	// Positions stay board wide, so B keeps its slot between A and C.
	out, err = run(t, opts, GoalsCmd, "", "move", "C", "A")
	require.NoError(t, err)
	assert.Contains(t, out, "C: Pending -> Pending (3 updated)")
	require.Len(t, api.batches, 1)

	_, err = run(t, opts, GoalsCmd, "", "move", "A", model.GoalStatusInProgress)
	require.NoError(t, err)

	_, err = run(t, opts, PrefsCmd, "", "set", "--project", "")
	require.NoError(t, err)
	_, err = run(t, opts, GoalsCmd, "", "toggle", "B")
	assert.NoError(t, err)
}

func TestGoalsRequireLogin(t *testing.T) {
	opts := &Options{Server: "http://127.0.0.1:1", ConfigDir: t.TempDir()}
	_, err := run(t, opts, GoalsCmd, "", "list")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestPrefsSetAndGet(t *testing.T) {
	opts := &Options{ConfigDir: t.TempDir()}

	out, err := run(t, opts, PrefsCmd, "", "set", "--view", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "view_mode: list")

	out, err = run(t, opts, PrefsCmd, "", "get")
	require.NoError(t, err)
	assert.Contains(t, out, "view_mode: list")

	_, err = run(t, opts, PrefsCmd, "", "set", "--view", "grid")
	assert.Error(t, err)
}

func TestPrintBoard(t *testing.T) {
	var out bytes.Buffer
	board := reorder.NewBoard([]model.Goal{
		{ID: "A", Title: "Read", Status: model.GoalStatusInProgress, Priority: model.GoalPriority1},
	})

	require.NoError(t, printBoard(&out, board))
	assert.Contains(t, out.String(), "Pending (0)")
	assert.Contains(t, out.String(), "In Progress (1)")
	assert.Contains(t, out.String(), "Priority 1")
}
