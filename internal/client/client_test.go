package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindtab/mindtab/internal/cache"
	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/reorder"
)

type fakeAPI struct {
	mu      sync.Mutex
	goals   []model.Goal
	batches [][]model.PositionUpdate
	fail    bool
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer secret" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/goals":
		_ = json.NewEncoder(w).Encode(f.goals)
	case r.Method == http.MethodPost && r.URL.Path == "/api/goals/reorder":
		if f.fail {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"goal not found"}`))
			return
		}
		var body struct {
			Updates []model.PositionUpdate `json:"updates"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.batches = append(f.batches, body.Updates)
		for _, u := range body.Updates {
			for i := range f.goals {
				if f.goals[i].ID == u.ID {
					f.goals[i].Position = u.Position
					f.goals[i].Status = u.Status
				}
			}
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func seed() []model.Goal {
	return []model.Goal{
		{ID: "A", Status: model.GoalStatusPending, Position: 0},
		{ID: "B", Status: model.GoalStatusPending, Position: 1},
		{ID: "C", Status: model.GoalStatusPending, Position: 2},
	}
}

func TestClientMoverRoundTrip(t *testing.T) {
	api := &fakeAPI{goals: seed()}
	srv := httptest.NewServer(api)
	defer srv.Close()

	c := New(srv.URL+"/", "secret")
	goals := cache.New(c.Goals)
	require.NoError(t, goals.Refresh(context.Background()))

	mover := reorder.NewMover(goals, c)
	plan, err := mover.Move(context.Background(), "C", "A")
	require.NoError(t, err)
	assert.Len(t, plan.Updates, 3)

	board := reorder.NewBoard(goals.Goals())
	assert.True(t, board.Dense())
	var order []string
	for _, g := range board.Column(model.GoalStatusPending) {
		order = append(order, g.ID)
	}
	assert.Equal(t, []string{"C", "A", "B"}, order)
	require.Len(t, api.batches, 1)
}

func TestClientMoverRollsBackOnAPIError(t *testing.T) {
	api := &fakeAPI{goals: seed(), fail: true}
	srv := httptest.NewServer(api)
	defer srv.Close()

	c := New(srv.URL, "secret")
	goals := cache.New(c.Goals)
	require.NoError(t, goals.Refresh(context.Background()))

	_, err := reorder.NewMover(goals, c).Move(context.Background(), "A", model.GoalStatusCompleted)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "goal not found", apiErr.Message)

	assert.Equal(t, seed(), goals.Goals())
}

func TestClientUnauthorized(t *testing.T) {
	srv := httptest.NewServer(&fakeAPI{})
	defer srv.Close()

	_, err := New(srv.URL, "wrong").Goals(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClientLogin(t *testing.T) {
	expires := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if r.URL.Path != "/api/auth/token" || body["password"] != "hunter22" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"token": "jwt", "expiresAt": expires})
	}))
	defer srv.Close()

	token, exp, err := New(srv.URL, "").Login(context.Background(), "a@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "jwt", token)
	assert.True(t, exp.Equal(expires))

	_, _, err = New(srv.URL, "").Login(context.Background(), "a@example.com", "nope")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
