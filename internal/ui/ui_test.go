package ui

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/reorder"
)

func TestLabel(t *testing.T) {
	assert.Equal(t, "In Progress", Label(model.GoalStatusInProgress))
	assert.Equal(t, "Priority 1", Label(model.GoalPriority1))
	assert.Equal(t, "", Label(""))
}

func TestColumnClass(t *testing.T) {
	assert.Contains(t, ColumnClass(model.GoalStatusCompleted), "border-emerald-400")
	// Later classes override conflicting earlier ones.
	class := ColumnClass(model.GoalStatusPending, "p-6")
	assert.Contains(t, class, "p-6")
	assert.NotContains(t, class, "p-3")
	assert.Contains(t, class, "border-slate-300")
}

func TestDashboardEscapesUserContent(t *testing.T) {
	board := reorder.NewBoard([]model.Goal{
		{ID: "g1", Title: "<script>alert(1)</script>", Status: model.GoalStatusPending, Priority: model.GoalPriority2},
		{ID: "g2", Title: "Ship", Status: model.GoalStatusCompleted, Position: 0},
	})

	var buf bytes.Buffer
	err := Dashboard(DashboardData{Name: "Ada & co", Board: board}).Render(context.Background(), &buf)
	require.NoError(t, err)

	html := buf.String()
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "Welcome back, Ada &amp; co")
	assert.Contains(t, html, `data-status="in_progress"`)
	assert.Contains(t, html, `data-position="0"`)
	assert.Contains(t, html, "No habits yet.")
}

func TestDashboardListView(t *testing.T) {
	board := reorder.NewBoard([]model.Goal{
		{ID: "g1", Title: "Done", Status: model.GoalStatusCompleted},
	})

	var buf bytes.Buffer
	err := Dashboard(DashboardData{ViewMode: model.ViewModeList, Board: board}).Render(context.Background(), &buf)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `id="list"`)
	assert.Contains(t, buf.String(), "line-through")
	assert.NotContains(t, buf.String(), `id="board"`)
}

type label string

func (l label) String() string { return string(l) }

func TestPrintfEscapesArguments(t *testing.T) {
	var buf bytes.Buffer
	hw := &htmlWriter{w: &buf}
	hw.printf(`<p title="%s">%s %v %d</p>`, `"><img src=x>`, "a<b", label("<i>"), 3)
	require.NoError(t, hw.err)
	assert.Equal(t, `<p title="&#34;&gt;&lt;img src=x&gt;">a&lt;b &lt;i&gt; 3</p>`, buf.String())
}

func TestAuthPagesEscapeInput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, MagicLinkSent(`a"<b>@example.com`).Render(context.Background(), &buf))
	assert.NotContains(t, buf.String(), "<b>")
	assert.Contains(t, buf.String(), "&lt;b&gt;")

	buf.Reset()
	require.NoError(t, SignIn("<em>bad</em>", Providers{}).Render(context.Background(), &buf))
	assert.NotContains(t, buf.String(), "<em>")
}
