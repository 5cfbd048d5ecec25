package handler

import (
	"log/slog"
	"net/http"

	"github.com/mindtab/mindtab/internal/ctxkeys"
	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/service"
	"github.com/mindtab/mindtab/internal/ui"
	"golang.org/x/sync/errgroup"
)

const dashboardJournals = 5

type DashboardHandler struct {
	goalService    *service.GoalService
	habitService   *service.HabitService
	journalService *service.JournalService
	preferences    PreferencesFor
}

func NewDashboardHandler(
	goalService *service.GoalService,
	habitService *service.HabitService,
	journalService *service.JournalService,
	preferences PreferencesFor,
) *DashboardHandler {
	return &DashboardHandler{
		goalService:    goalService,
		habitService:   habitService,
		journalService: journalService,
		preferences:    preferences,
	}
}

// DashboardPage loads goals, habits, recent notes and preferences in
// parallel. Failing sections are logged and rendered empty, except the goals.
func (h *DashboardHandler) DashboardPage(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	profile := ctxkeys.Profile(r.Context())

	data := ui.DashboardData{ViewMode: model.ViewModeKanban}
	if profile != nil {
		data.Name = profile.Name
	}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		board, err := h.goalService.Board(user.ID)
		if err != nil {
			return err
		}
		data.Board = board
		return nil
	})
	g.Go(func() error {
		habits, err := h.habitService.Habits(user.ID)
		if err != nil {
			slog.Warn("dashboard habits failed", "error", err, "user_id", user.ID)
			return nil
		}
		data.Habits = habits
		return nil
	})
	g.Go(func() error {
		journals, err := h.journalService.Journals(user.ID, "", dashboardJournals)
		if err != nil {
			slog.Warn("dashboard journals failed", "error", err, "user_id", user.ID)
			return nil
		}
		data.Journals = journals
		return nil
	})
	g.Go(func() error {
		p, err := h.preferences(user.ID).Load(ctx)
		if err != nil {
			slog.Warn("dashboard preferences failed", "error", err, "user_id", user.ID)
			return nil
		}
		data.ViewMode = p.ViewMode
		return nil
	})

	err := g.Wait()
	if err != nil {
		slog.Error("failed to load dashboard", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}

	ui.Render(w, r, ui.Dashboard(data))
}
