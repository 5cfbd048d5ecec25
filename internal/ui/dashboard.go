package ui

import (
	"context"
	"io"
	"strings"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"
	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/reorder"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type DashboardData struct {
	Name     string
	ViewMode string
	Board    reorder.Board
	Habits   []*model.Habit
	Journals []*model.Journal
}

var columnClasses = map[string]string{
	model.GoalStatusPending:    "border-slate-300 bg-white",
	model.GoalStatusInProgress: "border-amber-400 bg-amber-50",
	model.GoalStatusCompleted:  "border-emerald-400 bg-emerald-50",
}

// Label turns an enum value like "in_progress" into "In Progress".
func Label(value string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(value, "_", " "))
}

// ColumnClass merges the base column classes with the status accent.
// Later classes win, so callers may override.
func ColumnClass(status string, extra ...string) string {
	classes := append([]string{"rounded border p-3", columnClasses[status]}, extra...)
	return twmerge.Merge(classes...)
}

func Dashboard(data DashboardData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}

		greeting := "Welcome back"
		if data.Name != "" {
			greeting += ", " + data.Name
		}
		hw.printf(`<header class="flex gap-4 mb-4"><h1>%s</h1>`, greeting)
		hw.raw(`<form method="post" action="/auth/logout">`)
		csrfField(hw, ctx)
		hw.raw(`<button type="submit">Sign out</button></form></header>`)

		if data.ViewMode == model.ViewModeList {
			goalList(hw, data.Board)
		} else {
			goalBoard(hw, data.Board)
		}

		hw.raw(`<div class="grid grid-cols-3 gap-4">`)
		habitList(hw, data.Habits)
		journalList(hw, data.Journals)
		hw.raw(`</div>`)

		return hw.err
	})
	return Page("Dashboard", body)
}

func goalBoard(hw *htmlWriter, board reorder.Board) {
	hw.raw(`<section class="grid grid-cols-3 gap-4 mb-4" id="board">`)
	for _, status := range model.BoardStatuses {
		column := board.Column(status)
		hw.printf(`<div class="%s" data-status="%s">`, ColumnClass(status), status)
		hw.printf(`<h2 class="font-semibold mb-2">%s <span class="text-muted text-sm">%d</span></h2>`, Label(status), len(column))
		for _, g := range column {
			goalCard(hw, g)
		}
		hw.raw(`</div>`)
	}
	hw.raw(`</section>`)
}

func goalList(hw *htmlWriter, board reorder.Board) {
	hw.raw(`<section class="bg-white border rounded p-3 mb-4" id="list"><ul>`)
	for _, g := range board.Goals() {
		class := ""
		if g.IsCompleted() {
			class = "line-through text-muted"
		}
		hw.printf(`<li class="%s" data-id="%s">%s <span class="text-sm text-muted">%s</span></li>`, class, g.ID, g.Title, Label(g.Priority))
	}
	hw.raw(`</ul></section>`)
}

func goalCard(hw *htmlWriter, g model.Goal) {
	hw.printf(`<article class="bg-white border rounded p-3 mb-2" data-id="%s" data-position="%d">`, g.ID, g.Position)
	hw.printf(`<div class="font-semibold">%s</div>`, g.Title)
	hw.printf(`<div class="text-sm text-muted">%s · %s · %s</div>`, Label(g.Priority), Label(g.Category), Label(g.Impact))
	hw.raw(`</article>`)
}

func habitList(hw *htmlWriter, habits []*model.Habit) {
	hw.raw(`<section class="bg-white border rounded p-3"><h2 class="font-semibold mb-2">Today's habits</h2>`)
	if len(habits) == 0 {
		hw.raw(`<p class="text-sm text-muted">No habits yet.</p>`)
	}
	hw.raw(`<ul>`)
	for _, h := range habits {
		mark := "○"
		if h.DoneToday {
			mark = "●"
		}
		hw.printf(`<li data-id="%s">%s %s <span class="text-sm text-muted">%d %s streak</span></li>`, h.ID, mark, h.Title, h.Streak, h.Frequency)
	}
	hw.raw(`</ul></section>`)
}

func journalList(hw *htmlWriter, journals []*model.Journal) {
	hw.raw(`<section class="bg-white border rounded p-3"><h2 class="font-semibold mb-2">Recent notes</h2>`)
	if len(journals) == 0 {
		hw.raw(`<p class="text-sm text-muted">No notes yet.</p>`)
	}
	hw.raw(`<ul>`)
	for _, j := range journals {
		hw.printf(`<li data-id="%s">%s <span class="text-sm text-muted">%s</span></li>`, j.ID, j.Title, j.UpdatedAt.Format("Jan 2"))
	}
	hw.raw(`</ul></section>`)
}
