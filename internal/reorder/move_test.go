package reorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindtab/mindtab/internal/model"
)

func goal(id, status string, pos int) model.Goal {
	return model.Goal{ID: id, Title: id, Status: status, Position: pos}
}

func ids(goals []model.Goal) []string {
	out := make([]string, 0, len(goals))
	for _, g := range goals {
		out = append(out, g.ID)
	}
	return out
}

func assertDense(t *testing.T, b Board) {
	t.Helper()
	for _, status := range model.BoardStatuses {
		for i, g := range b[status] {
			assert.Equal(t, i, g.Position, "goal %s in %s", g.ID, status)
			assert.Equal(t, status, g.Status, "goal %s", g.ID)
		}
	}
}

func TestNewBoardPartitionsAndSorts(t *testing.T) {
	b := NewBoard([]model.Goal{
		goal("b", model.GoalStatusPending, 1),
		goal("x", model.GoalStatusArchived, 0),
		goal("a", model.GoalStatusPending, 0),
		goal("c", model.GoalStatusCompleted, 0),
	})

	assert.Equal(t, []string{"a", "b"}, ids(b.Column(model.GoalStatusPending)))
	assert.Empty(t, b.Column(model.GoalStatusInProgress))
	assert.Equal(t, []string{"c"}, ids(b.Column(model.GoalStatusCompleted)))
	assert.Len(t, b.Goals(), 3)
	assert.True(t, b.Dense())
}

func TestMoveSamePartition(t *testing.T) {
	b := NewBoard([]model.Goal{
		goal("A", model.GoalStatusPending, 0),
		goal("B", model.GoalStatusPending, 1),
		goal("C", model.GoalStatusPending, 2),
	})

	plan, err := Move(b, "C", "A")
	require.NoError(t, err)

	pending := plan.Board.Column(model.GoalStatusPending)
	assert.Equal(t, []string{"C", "A", "B"}, ids(pending))
	assertDense(t, plan.Board)
	assert.False(t, plan.CrossPartition())
	assert.Len(t, plan.Updates, 3)

	// The input board is left untouched.
	assert.Equal(t, []string{"A", "B", "C"}, ids(b.Column(model.GoalStatusPending)))
}

func TestMoveDownWithinPartition(t *testing.T) {
	b := NewBoard([]model.Goal{
		goal("A", model.GoalStatusPending, 0),
		goal("B", model.GoalStatusPending, 1),
		goal("C", model.GoalStatusPending, 2),
		goal("D", model.GoalStatusPending, 3),
	})

	plan, err := Move(b, "A", "C")
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "C", "A", "D"}, ids(plan.Board.Column(model.GoalStatusPending)))
	assertDense(t, plan.Board)

	// D keeps position 3, so only three rows change.
	assert.Len(t, plan.Updates, 3)
	for _, u := range plan.Updates {
		assert.NotEqual(t, "D", u.ID)
	}
}

func TestMoveToEmptyColumn(t *testing.T) {
	b := NewBoard([]model.Goal{
		goal("A", model.GoalStatusPending, 0),
	})

	plan, err := Move(b, "A", model.GoalStatusInProgress)
	require.NoError(t, err)

	assert.Empty(t, plan.Board.Column(model.GoalStatusPending))
	inProgress := plan.Board.Column(model.GoalStatusInProgress)
	require.Len(t, inProgress, 1)
	assert.Equal(t, "A", inProgress[0].ID)
	assert.Equal(t, 0, inProgress[0].Position)
	assert.Equal(t, model.GoalStatusInProgress, inProgress[0].Status)
	assert.True(t, plan.CrossPartition())

	assert.Equal(t, []model.PositionUpdate{
		{ID: "A", Position: 0, Status: model.GoalStatusInProgress},
	}, plan.Updates)
}

func TestMoveAcrossPartitionsOntoItem(t *testing.T) {
	b := NewBoard([]model.Goal{
		goal("A", model.GoalStatusPending, 0),
		goal("B", model.GoalStatusPending, 1),
		goal("C", model.GoalStatusPending, 2),
		goal("X", model.GoalStatusInProgress, 0),
		goal("Y", model.GoalStatusInProgress, 1),
	})

	plan, err := Move(b, "A", "Y")
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "C"}, ids(plan.Board.Column(model.GoalStatusPending)))
	assert.Equal(t, []string{"X", "A", "Y"}, ids(plan.Board.Column(model.GoalStatusInProgress)))
	assertDense(t, plan.Board)

	// Membership: A appears exactly once, in the destination.
	count := 0
	for _, g := range plan.Board.Goals() {
		if g.ID == "A" {
			count++
			assert.Equal(t, model.GoalStatusInProgress, g.Status)
		}
	}
	assert.Equal(t, 1, count)
}

func TestMoveColumnDropAppends(t *testing.T) {
	b := NewBoard([]model.Goal{
		goal("A", model.GoalStatusPending, 0),
		goal("X", model.GoalStatusCompleted, 0),
		goal("Y", model.GoalStatusCompleted, 1),
	})

	plan, err := Move(b, "A", model.GoalStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y", "A"}, ids(plan.Board.Column(model.GoalStatusCompleted)))
	assert.Equal(t, 2, plan.ToIndex)
}

func TestMoveSameColumnDropMovesToEnd(t *testing.T) {
	b := NewBoard([]model.Goal{
		goal("A", model.GoalStatusPending, 0),
		goal("B", model.GoalStatusPending, 1),
	})

	plan, err := Move(b, "A", model.GoalStatusPending)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, ids(plan.Board.Column(model.GoalStatusPending)))

	_, err = Move(plan.Board, "A", model.GoalStatusPending)
	assert.ErrorIs(t, err, ErrNoop)
}

func TestMoveOntoItselfIsNoop(t *testing.T) {
	b := NewBoard([]model.Goal{
		goal("A", model.GoalStatusPending, 0),
		goal("B", model.GoalStatusPending, 1),
	})

	plan, err := Move(b, "B", "B")
	assert.ErrorIs(t, err, ErrNoop)
	assert.Nil(t, plan)
}

func TestMoveAborts(t *testing.T) {
	b := NewBoard([]model.Goal{
		goal("A", model.GoalStatusPending, 0),
	})

	tests := []struct {
		name     string
		activeID string
		overID   string
		want     error
	}{
		{name: "dropped outside any droppable", activeID: "A", overID: "", want: ErrNoTarget},
		{name: "stale target", activeID: "A", overID: "deleted", want: ErrStaleTarget},
		{name: "unknown dragged goal", activeID: "ghost", overID: "A", want: ErrUnknownItem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Move(b, tt.activeID, tt.overID)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, plan)
		})
	}
}

func TestMoveFixesDriftedPositions(t *testing.T) {
	b := NewBoard([]model.Goal{
		goal("A", model.GoalStatusPending, 3),
		goal("B", model.GoalStatusPending, 7),
		goal("C", model.GoalStatusPending, 9),
	})
	assert.False(t, b.Dense())

	plan, err := Move(b, "C", "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "B"}, ids(plan.Board.Column(model.GoalStatusPending)))
	assertDense(t, plan.Board)
	assert.Len(t, plan.Updates, 3)
}

func TestToggleCycle(t *testing.T) {
	b := NewBoard([]model.Goal{
		goal("A", model.GoalStatusPending, 0),
		goal("B", model.GoalStatusPending, 1),
		goal("X", model.GoalStatusInProgress, 0),
	})

	plan, err := Toggle(b, "A")
	require.NoError(t, err)
	assert.Equal(t, model.GoalStatusInProgress, plan.To)
	assert.Equal(t, []string{"X", "A"}, ids(plan.Board.Column(model.GoalStatusInProgress)))
	assert.Equal(t, []string{"B"}, ids(plan.Board.Column(model.GoalStatusPending)))
	assertDense(t, plan.Board)

	plan, err = Toggle(plan.Board, "A")
	require.NoError(t, err)
	assert.Equal(t, model.GoalStatusCompleted, plan.To)

	plan, err = Toggle(plan.Board, "A")
	require.NoError(t, err)
	assert.Equal(t, model.GoalStatusPending, plan.To)
	assert.Equal(t, []string{"B", "A"}, ids(plan.Board.Column(model.GoalStatusPending)))

	_, err = Toggle(plan.Board, "nope")
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestToggleList(t *testing.T) {
	b := NewBoard([]model.Goal{
		goal("A", model.GoalStatusPending, 0),
		goal("X", model.GoalStatusInProgress, 0),
	})

	plan, err := ToggleList(b, "A")
	require.NoError(t, err)
	assert.Equal(t, model.GoalStatusCompleted, plan.To)

	plan, err = ToggleList(plan.Board, "X")
	require.NoError(t, err)
	assert.Equal(t, model.GoalStatusCompleted, plan.To)
	assert.Equal(t, []string{"A", "X"}, ids(plan.Board.Column(model.GoalStatusCompleted)))

	plan, err = ToggleList(plan.Board, "A")
	require.NoError(t, err)
	assert.Equal(t, model.GoalStatusPending, plan.To)
	assertDense(t, plan.Board)
}

func TestCompact(t *testing.T) {
	b := NewBoard([]model.Goal{
		goal("A", model.GoalStatusPending, 0),
		goal("C", model.GoalStatusPending, 2),
		goal("X", model.GoalStatusCompleted, 0),
	})

	updates := Compact(b, model.GoalStatusPending)
	assert.Equal(t, []model.PositionUpdate{
		{ID: "C", Position: 1, Status: model.GoalStatusPending},
	}, updates)
	assert.Empty(t, Compact(NewBoard(nil)))
}
