package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mindtab/mindtab/internal/ctxkeys"
	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/prefs"
	"github.com/mindtab/mindtab/internal/reorder"
	"github.com/mindtab/mindtab/internal/repository"
	"github.com/mindtab/mindtab/internal/service"
)

// PreferencesFor returns the preference store of a user.
type PreferencesFor func(userID string) *prefs.Store

type GoalHandler struct {
	goalService *service.GoalService
	preferences PreferencesFor
}

func NewGoalHandler(goalService *service.GoalService, preferences PreferencesFor) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
		preferences: preferences,
	}
}

type reorderRequest struct {
	Updates []model.PositionUpdate `json:"updates"`
}

type moveRequest struct {
	ActiveID string `json:"activeId"`
	OverID   string `json:"overId"`
}

type moveResponse struct {
	Noop    bool                   `json:"noop"`
	GoalID  string                 `json:"goalId,omitempty"`
	From    string                 `json:"from,omitempty"`
	To      string                 `json:"to,omitempty"`
	Updates []model.PositionUpdate `json:"updates"`
}

func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	q := r.URL.Query()

	goals, err := h.goalService.Goals(user.ID, repository.GoalFilter{
		Status:    q.Get("status"),
		ProjectID: q.Get("project"),
		Sort:      q.Get("sort"),
	})
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID)
		return
	}
	if goals == nil {
		goals = []*model.Goal{}
	}

	writeJSON(w, http.StatusOK, goals)
}

func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goal, err := h.goalService.ByID(user.ID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var in service.GoalInput
	err := decodeJSON(w, r, &in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	goal, err := h.goalService.Create(r.Context(), user.ID, in)
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID)
		return
	}

	slog.Info("goal created", "user_id", user.ID, "goal_id", goal.ID)
	writeJSON(w, http.StatusCreated, goal)
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	var in service.GoalInput
	err := decodeJSON(w, r, &in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	goal, err := h.goalService.Update(r.Context(), user.ID, goalID, in)
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID, "goal_id", goalID)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	err := h.goalService.Delete(r.Context(), user.ID, goalID)
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID, "goal_id", goalID)
		return
	}

	slog.Info("goal deleted", "user_id", user.ID, "goal_id", goalID)
	w.WriteHeader(http.StatusNoContent)
}

// Toggle advances the goal's status. The cycle follows ?view= when given,
// otherwise the user's stored view mode.
func (h *GoalHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	view := r.URL.Query().Get("view")
	if view == "" {
		p, err := h.preferences(user.ID).Load(r.Context())
		if err != nil {
			slog.Warn("failed to load preferences, using kanban toggle", "error", err, "user_id", user.ID)
		} else {
			view = p.ViewMode
		}
	}

	goal, err := h.goalService.Toggle(r.Context(), user.ID, goalID, view)
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID, "goal_id", goalID)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

// Reorder applies a client-computed batch of position updates atomically.
func (h *GoalHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req reorderRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	err = h.goalService.UpdatePositions(r.Context(), user.ID, req.Updates)
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID, "rows", len(req.Updates))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Move runs a drag of activeId onto overId server side and returns the
// rows it changed.
func (h *GoalHandler) Move(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req moveRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	plan, err := h.goalService.Move(r.Context(), user.ID, req.ActiveID, req.OverID)
	if errors.Is(err, reorder.ErrNoop) {
		writeJSON(w, http.StatusOK, moveResponse{Noop: true, Updates: []model.PositionUpdate{}})
		return
	}
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID, "goal_id", req.ActiveID)
		return
	}

	writeJSON(w, http.StatusOK, moveResponse{
		GoalID:  plan.GoalID,
		From:    plan.From,
		To:      plan.To,
		Updates: plan.Updates,
	})
}

func (h *GoalHandler) Export(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	export, err := h.goalService.Export(user.ID)
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID)
		return
	}

	filename := fmt.Sprintf("mindtab-goals-%s.json", time.Now().UTC().Format(model.DateLayout))
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	writeJSON(w, http.StatusOK, export)
}
