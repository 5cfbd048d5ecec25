package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindtab/mindtab/internal/ctxkeys"
	"github.com/mindtab/mindtab/internal/db/dbtest"
	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/prefs"
	"github.com/mindtab/mindtab/internal/reorder"
	"github.com/mindtab/mindtab/internal/repository"
	"github.com/mindtab/mindtab/internal/service"
	"github.com/mindtab/mindtab/internal/storage"
	"github.com/mindtab/mindtab/internal/validation"
)

type testEnv struct {
	conn       *sqlx.DB
	user       *model.User
	other      *model.User
	goal       *GoalHandler
	preference *PreferenceHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn := dbtest.New(t)

	preferences := func(userID string) *prefs.Store {
		return prefs.NewStore(prefs.NewSQLKV(repository.NewPreferenceRepository(conn), userID))
	}
	goals := service.NewGoalService(repository.NewGoalRepository(conn), repository.NewProjectRepository(conn))

	return &testEnv{
		conn:       conn,
		user:       &model.User{ID: dbtest.User(t, conn, "a@example.com"), Email: "a@example.com"},
		other:      &model.User{ID: dbtest.User(t, conn, "b@example.com"), Email: "b@example.com"},
		goal:       NewGoalHandler(goals, preferences),
		preference: NewPreferenceHandler(preferences),
	}
}

// call runs h as user. pathValues are name, value pairs.
func call(t *testing.T, h http.HandlerFunc, user *model.User, method, target, body string, pathValues ...string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	if user != nil {
		req = req.WithContext(ctxkeys.WithUser(req.Context(), user))
	}

	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (e *testEnv) createGoal(t *testing.T, user *model.User, title string) model.Goal {
	t.Helper()
	rec := call(t, e.goal.Create, user, http.MethodPost, "/api/goals", fmt.Sprintf(`{"title":%q}`, title))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[model.Goal](t, rec)
}

func (e *testEnv) titles(t *testing.T, status string) []string {
	t.Helper()
	rec := call(t, e.goal.List, e.user, http.MethodGet, "/api/goals?sort=position&status="+status, "")
	require.Equal(t, http.StatusOK, rec.Code)

	titles := []string{}
	for _, g := range decode[[]model.Goal](t, rec) {
		titles = append(titles, g.Title)
	}
	return titles
}

func TestGoalListEmptyIsArray(t *testing.T) {
	e := newTestEnv(t)

	rec := call(t, e.goal.List, e.user, http.MethodGet, "/api/goals", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGoalCreateValidation(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"empty body", "", http.StatusBadRequest},
		{"malformed", `{"title":`, http.StatusBadRequest},
		{"unknown field", `{"title":"a","color":"red"}`, http.StatusBadRequest},
		{"blank title", `{"title":""}`, http.StatusBadRequest},
		{"bad status", `{"title":"a","status":"done"}`, http.StatusBadRequest},
		{"ok", `{"title":"a"}`, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(t, e.goal.Create, e.user, http.MethodPost, "/api/goals", tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestGoalMove(t *testing.T) {
	e := newTestEnv(t)
	a := e.createGoal(t, e.user, "a")
	e.createGoal(t, e.user, "b")
	c := e.createGoal(t, e.user, "c")

	rec := call(t, e.goal.Move, e.user, http.MethodPost, "/api/goals/move", fmt.Sprintf(`{"activeId":%q,"overId":%q}`, c.ID, a.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[moveResponse](t, rec)
	assert.False(t, res.Noop)
	assert.Equal(t, c.ID, res.GoalID)
	assert.Equal(t, model.GoalStatusPending, res.To)
	assert.Len(t, res.Updates, 3)
	assert.Equal(t, []string{"c", "a", "b"}, e.titles(t, model.GoalStatusPending))

	// Dropping on a column moves across partitions and appends.
	rec = call(t, e.goal.Move, e.user, http.MethodPost, "/api/goals/move", fmt.Sprintf(`{"activeId":%q,"overId":%q}`, a.ID, model.GoalStatusCompleted))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res = decode[moveResponse](t, rec)
	assert.Equal(t, model.GoalStatusPending, res.From)
	assert.Equal(t, model.GoalStatusCompleted, res.To)
	assert.Equal(t, []string{"c", "b"}, e.titles(t, model.GoalStatusPending))
	assert.Equal(t, []string{"a"}, e.titles(t, model.GoalStatusCompleted))

	rec = call(t, e.goal.Move, e.user, http.MethodPost, "/api/goals/move", fmt.Sprintf(`{"activeId":%q,"overId":%q}`, c.ID, c.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"noop":true,"updates":[]}`, rec.Body.String())

	rec = call(t, e.goal.Move, e.user, http.MethodPost, "/api/goals/move", fmt.Sprintf(`{"activeId":%q,"overId":"missing"}`, c.ID))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(t, e.goal.Move, e.user, http.MethodPost, "/api/goals/move", fmt.Sprintf(`{"activeId":%q,"overId":""}`, c.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Another user's goals are invisible.
	rec = call(t, e.goal.Move, e.other, http.MethodPost, "/api/goals/move", fmt.Sprintf(`{"activeId":%q,"overId":%q}`, c.ID, model.GoalStatusCompleted))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGoalReorder(t *testing.T) {
	e := newTestEnv(t)
	a := e.createGoal(t, e.user, "a")
	b := e.createGoal(t, e.user, "b")
	foreign := e.createGoal(t, e.other, "x")

	body := fmt.Sprintf(`{"updates":[{"id":%q,"position":1,"status":"pending"},{"id":%q,"position":0,"status":"pending"}]}`, a.ID, b.ID)
	rec := call(t, e.goal.Reorder, e.user, http.MethodPost, "/api/goals/reorder", body)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"b", "a"}, e.titles(t, model.GoalStatusPending))

	// The whole batch fails when one row is not the user's.
	body = fmt.Sprintf(`{"updates":[{"id":%q,"position":0},{"id":%q,"position":1}]}`, a.ID, foreign.ID)
	rec = call(t, e.goal.Reorder, e.user, http.MethodPost, "/api/goals/reorder", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, []string{"b", "a"}, e.titles(t, model.GoalStatusPending))

	body = fmt.Sprintf(`{"updates":[{"id":%q,"position":0,"status":"archived"}]}`, a.ID)
	rec = call(t, e.goal.Reorder, e.user, http.MethodPost, "/api/goals/reorder", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body = fmt.Sprintf(`{"updates":[{"id":%q,"position":-1}]}`, a.ID)
	rec = call(t, e.goal.Reorder, e.user, http.MethodPost, "/api/goals/reorder", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGoalToggleFollowsViewMode(t *testing.T) {
	e := newTestEnv(t)
	a := e.createGoal(t, e.user, "a")

	rec := call(t, e.goal.Toggle, e.user, http.MethodPost, "/api/goals/"+a.ID+"/toggle", "", "id", a.ID)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.GoalStatusInProgress, decode[model.Goal](t, rec).Status)

	rec = call(t, e.preference.Put, e.user, http.MethodPut, "/api/preferences", `{"viewMode":"list"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// List view flips in_progress back to pending, then to completed.
	rec = call(t, e.goal.Toggle, e.user, http.MethodPost, "/api/goals/"+a.ID+"/toggle", "", "id", a.ID)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	status := decode[model.Goal](t, rec).Status
	assert.Contains(t, []string{model.GoalStatusPending, model.GoalStatusCompleted}, status)

	// An explicit view wins over the stored preference.
	rec = call(t, e.goal.Toggle, e.user, http.MethodPost, "/api/goals/"+a.ID+"/toggle?view=kanban", "", "id", a.ID)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = call(t, e.goal.Toggle, e.user, http.MethodPost, "/api/goals/missing/toggle", "", "id", "missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPreferences(t *testing.T) {
	e := newTestEnv(t)

	rec := call(t, e.preference.Get, e.user, http.MethodGet, "/api/preferences", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"viewMode":"kanban","activeProject":""}`, rec.Body.String())

	rec = call(t, e.preference.Put, e.user, http.MethodPut, "/api/preferences", `{"viewMode":"grid"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, e.preference.Put, e.user, http.MethodPut, "/api/preferences", `{"viewMode":"list","activeProject":"p1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, e.preference.Get, e.user, http.MethodGet, "/api/preferences", "")
	assert.JSONEq(t, `{"viewMode":"list","activeProject":"p1"}`, rec.Body.String())

	// Preferences are per user.
	rec = call(t, e.preference.Get, e.other, http.MethodGet, "/api/preferences", "")
	assert.JSONEq(t, `{"viewMode":"kanban","activeProject":""}`, rec.Body.String())
}

func TestSyncErrorEnvelope(t *testing.T) {
	conn := dbtest.New(t)
	userID := dbtest.User(t, conn, "a@example.com")
	h := NewSyncHandler(service.NewSyncService(repository.NewSyncItemRepository(conn), 2), 512)
	session := &model.Session{ID: "s1", UserID: userID}

	post := func(method, body string, session *model.Session) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/api/sync/reading-list", strings.NewReader(body))
		if session != nil {
			req = req.WithContext(ctxkeys.WithSession(req.Context(), session))
		}
		rec := httptest.NewRecorder()
		h.ReadingList(rec, req)
		return rec
	}
	item := `{"title":"Go","url":"https://go.dev"}`

	tests := []struct {
		name    string
		method  string
		body    string
		session *model.Session
		code    int
		errCode string
	}{
		{"wrong method", http.MethodGet, "", session, http.StatusMethodNotAllowed, service.SyncCodeMethodNotSupported},
		{"no session", http.MethodPost, `{"userId":"` + userID + `","items":[` + item + `]}`, nil, http.StatusUnauthorized, service.SyncCodeUnauthorized},
		{"bad json", http.MethodPost, `{"userId":`, session, http.StatusBadRequest, service.SyncCodeBadRequest},
		{"other user", http.MethodPost, `{"userId":"someone","items":[` + item + `]}`, session, http.StatusForbidden, service.SyncCodeForbidden},
		{"too many items", http.MethodPost, `{"userId":"` + userID + `","items":[` + item + `,` + item + `,` + item + `]}`, session, http.StatusRequestEntityTooLarge, service.SyncCodePayloadTooLarge},
		{"body too large", http.MethodPost, `{"userId":"` + userID + `","items":[{"title":"` + strings.Repeat("x", 600) + `"}]}`, session, http.StatusRequestEntityTooLarge, service.SyncCodePayloadTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(tt.method, tt.body, tt.session)
			require.Equal(t, tt.code, rec.Code, rec.Body.String())
			res := decode[syncErrorResponse](t, rec)
			assert.False(t, res.Success)
			assert.Equal(t, tt.errCode, res.Code)
			assert.NotEmpty(t, res.Message)
		})
	}

	rec := post(http.MethodPost, `{"userId":"`+userID+`","items":[`+item+`]}`, session)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[service.SyncResponse](t, rec)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.ItemCount)
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{repository.ErrGoalNotFound, http.StatusNotFound},
		{fmt.Errorf("load: %w", repository.ErrHabitNotFound), http.StatusNotFound},
		{reorder.ErrStaleTarget, http.StatusNotFound},
		{reorder.ErrNoTarget, http.StatusBadRequest},
		{validation.NewError("title is required"), http.StatusBadRequest},
		{service.ErrGoalArchived, http.StatusConflict},
		{errBodyTooLarge, http.StatusRequestEntityTooLarge},
		{storage.ErrDisabled, http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/goals", nil).WithContext(context.Background())
			rec := httptest.NewRecorder()
			writeServiceError(rec, req, tt.err)
			assert.Equal(t, tt.code, rec.Code)

			body := decode[map[string]string](t, rec)
			assert.NotEmpty(t, body["error"])
			if tt.code == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", body["error"])
			}
		})
	}
}
