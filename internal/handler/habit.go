package handler

import (
	"net/http"

	"github.com/mindtab/mindtab/internal/ctxkeys"
	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/service"
)

type HabitHandler struct {
	habitService *service.HabitService
}

func NewHabitHandler(habitService *service.HabitService) *HabitHandler {
	return &HabitHandler{
		habitService: habitService,
	}
}

type trackRequest struct {
	Date string `json:"date"`
}

func (h *HabitHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	habits, err := h.habitService.Habits(user.ID)
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID)
		return
	}
	if habits == nil {
		habits = []*model.Habit{}
	}

	writeJSON(w, http.StatusOK, habits)
}

// Trackers lists tracker rows between ?from= and ?to= (inclusive).
func (h *HabitHandler) Trackers(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	q := r.URL.Query()

	to := q.Get("to")
	if to == "" {
		to = h.habitService.Today(user.ID)
	}
	from := q.Get("from")
	if from == "" {
		from = to
	}

	trackers, err := h.habitService.Trackers(user.ID, from, to)
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID)
		return
	}
	if trackers == nil {
		trackers = []*model.HabitTracker{}
	}

	writeJSON(w, http.StatusOK, trackers)
}

func (h *HabitHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	habit, err := h.habitService.ByID(user.ID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, habit)
}

func (h *HabitHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var in service.HabitInput
	err := decodeJSON(w, r, &in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	habit, err := h.habitService.Create(user.ID, in)
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusCreated, habit)
}

func (h *HabitHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	habitID := r.PathValue("id")

	var in service.HabitInput
	err := decodeJSON(w, r, &in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	habit, err := h.habitService.Update(user.ID, habitID, in)
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID, "habit_id", habitID)
		return
	}

	writeJSON(w, http.StatusOK, habit)
}

func (h *HabitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	habitID := r.PathValue("id")

	err := h.habitService.Delete(user.ID, habitID)
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID, "habit_id", habitID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Track toggles the habit on the given date, today when the body is empty.
func (h *HabitHandler) Track(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	habitID := r.PathValue("id")

	var req trackRequest
	if r.ContentLength != 0 {
		err := decodeJSON(w, r, &req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	res, err := h.habitService.Track(user.ID, habitID, req.Date)
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID, "habit_id", habitID)
		return
	}

	writeJSON(w, http.StatusOK, res)
}
