package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindtab/mindtab/internal/db/dbtest"
	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/reorder"
	"github.com/mindtab/mindtab/internal/repository"
)

func newGoalService(t *testing.T) (*GoalService, string, string) {
	t.Helper()
	conn := dbtest.New(t)
	s := NewGoalService(repository.NewGoalRepository(conn), repository.NewProjectRepository(conn))
	return s, dbtest.User(t, conn, "a@example.com"), dbtest.User(t, conn, "b@example.com")
}

func createGoals(t *testing.T, s *GoalService, userID string, titles ...string) []*model.Goal {
	t.Helper()
	var goals []*model.Goal
	for _, title := range titles {
		g, err := s.Create(context.Background(), userID, GoalInput{Title: &title})
		require.NoError(t, err)
		goals = append(goals, g)
	}
	return goals
}

func columnIDs(t *testing.T, s *GoalService, userID, status string) []string {
	t.Helper()
	board, err := s.Board(userID)
	require.NoError(t, err)
	require.True(t, board.Dense(), "positions must be 0..n-1 per status")

	var ids []string
	for _, g := range board.Column(status) {
		ids = append(ids, g.ID)
	}
	return ids
}

func TestGoalServiceCreateAppends(t *testing.T) {
	s, userID, _ := newGoalService(t)
	goals := createGoals(t, s, userID, "a", "b", "c")

	for i, g := range goals {
		assert.Equal(t, i, g.Position)
		assert.Equal(t, model.GoalStatusPending, g.Status)
		assert.Equal(t, model.GoalPriority4, g.Priority)
		assert.Equal(t, model.GoalImpactMedium, g.Impact)
	}

	empty := ""
	_, err := s.Create(context.Background(), userID, GoalInput{Title: &empty})
	assert.Error(t, err)

	bad := "urgent"
	title := "x"
	_, err = s.Create(context.Background(), userID, GoalInput{Title: &title, Priority: &bad})
	assert.Error(t, err)
}

func TestGoalServiceToggleCycle(t *testing.T) {
	s, userID, _ := newGoalService(t)
	goals := createGoals(t, s, userID, "a", "b", "c")
	ctx := context.Background()

	g, err := s.Toggle(ctx, userID, goals[0].ID, model.ViewModeKanban)
	require.NoError(t, err)
	assert.Equal(t, model.GoalStatusInProgress, g.Status)
	assert.Nil(t, g.CompletedAt)
	assert.Equal(t, []string{goals[1].ID, goals[2].ID}, columnIDs(t, s, userID, model.GoalStatusPending))

	g, err = s.Toggle(ctx, userID, goals[0].ID, model.ViewModeKanban)
	require.NoError(t, err)
	assert.Equal(t, model.GoalStatusCompleted, g.Status)
	assert.NotNil(t, g.CompletedAt)

	g, err = s.Toggle(ctx, userID, goals[0].ID, model.ViewModeKanban)
	require.NoError(t, err)
	assert.Equal(t, model.GoalStatusPending, g.Status)
	assert.Nil(t, g.CompletedAt)
	assert.Equal(t, []string{goals[1].ID, goals[2].ID, goals[0].ID}, columnIDs(t, s, userID, model.GoalStatusPending))
}

func TestGoalServiceToggleListView(t *testing.T) {
	s, userID, _ := newGoalService(t)
	goals := createGoals(t, s, userID, "a")
	ctx := context.Background()

	g, err := s.Toggle(ctx, userID, goals[0].ID, model.ViewModeList)
	require.NoError(t, err)
	assert.Equal(t, model.GoalStatusCompleted, g.Status)

	g, err = s.Toggle(ctx, userID, goals[0].ID, model.ViewModeList)
	require.NoError(t, err)
	assert.Equal(t, model.GoalStatusPending, g.Status)
}

func TestGoalServiceMove(t *testing.T) {
	s, userID, _ := newGoalService(t)
	goals := createGoals(t, s, userID, "a", "b", "c")
	ctx := context.Background()

	plan, err := s.Move(ctx, userID, goals[2].ID, goals[0].ID)
	require.NoError(t, err)
	assert.False(t, plan.CrossPartition())
	assert.Len(t, plan.Updates, 3)
	assert.Equal(t, []string{goals[2].ID, goals[0].ID, goals[1].ID}, columnIDs(t, s, userID, model.GoalStatusPending))

	_, err = s.Move(ctx, userID, goals[2].ID, goals[2].ID)
	assert.ErrorIs(t, err, reorder.ErrNoop)

	_, err = s.Move(ctx, userID, goals[1].ID, model.GoalStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, []string{goals[1].ID}, columnIDs(t, s, userID, model.GoalStatusCompleted))
	assert.Equal(t, []string{goals[2].ID, goals[0].ID}, columnIDs(t, s, userID, model.GoalStatusPending))

	_, err = s.Move(ctx, userID, goals[0].ID, "")
	assert.ErrorIs(t, err, reorder.ErrNoTarget)
	_, err = s.Move(ctx, userID, goals[0].ID, "missing")
	assert.ErrorIs(t, err, reorder.ErrStaleTarget)
}

func TestGoalServiceDeleteCompacts(t *testing.T) {
	s, userID, _ := newGoalService(t)
	goals := createGoals(t, s, userID, "a", "b", "c")
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, userID, goals[0].ID))
	assert.Equal(t, []string{goals[1].ID, goals[2].ID}, columnIDs(t, s, userID, model.GoalStatusPending))

	err := s.Delete(ctx, userID, goals[0].ID)
	assert.ErrorIs(t, err, repository.ErrGoalNotFound)
}

func TestGoalServiceArchive(t *testing.T) {
	s, userID, _ := newGoalService(t)
	goals := createGoals(t, s, userID, "a", "b")
	ctx := context.Background()

	archived := model.GoalStatusArchived
	g, err := s.Update(ctx, userID, goals[0].ID, GoalInput{Status: &archived})
	require.NoError(t, err)
	assert.Equal(t, model.GoalStatusArchived, g.Status)
	assert.Equal(t, []string{goals[1].ID}, columnIDs(t, s, userID, model.GoalStatusPending))

	_, err = s.Toggle(ctx, userID, goals[0].ID, model.ViewModeKanban)
	assert.ErrorIs(t, err, ErrGoalArchived)

	list, err := s.Goals(userID, repository.GoalFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	completed := model.GoalStatusCompleted
	g, err = s.Update(ctx, userID, goals[0].ID, GoalInput{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, 0, g.Position)
	assert.NotNil(t, g.CompletedAt)

	export, err := s.Export(userID)
	require.NoError(t, err)
	assert.Equal(t, 2, export.Count)
}

func TestGoalServiceOwnership(t *testing.T) {
	s, userID, otherID := newGoalService(t)
	goals := createGoals(t, s, userID, "a", "b")
	ctx := context.Background()

	_, err := s.ByID(otherID, goals[0].ID)
	assert.ErrorIs(t, err, repository.ErrGoalNotFound)

	_, err = s.Toggle(ctx, otherID, goals[0].ID, model.ViewModeKanban)
	assert.ErrorIs(t, err, repository.ErrGoalNotFound)

	_, err = s.Move(ctx, otherID, goals[0].ID, goals[1].ID)
	assert.ErrorIs(t, err, reorder.ErrUnknownItem)

	err = s.Updater(otherID).UpdatePositions(ctx, []model.PositionUpdate{{ID: goals[0].ID, Position: 1}})
	assert.ErrorIs(t, err, repository.ErrGoalNotFound)

	assert.Equal(t, []string{goals[0].ID, goals[1].ID}, columnIDs(t, s, userID, model.GoalStatusPending))
}

func TestGoalServiceUpdatePositionsValidates(t *testing.T) {
	s, userID, _ := newGoalService(t)
	goals := createGoals(t, s, userID, "a")

	err := s.UpdatePositions(context.Background(), userID, []model.PositionUpdate{{ID: goals[0].ID, Position: -1}})
	assert.Error(t, err)

	err = s.UpdatePositions(context.Background(), userID, []model.PositionUpdate{{ID: goals[0].ID, Status: model.GoalStatusArchived}})
	assert.Error(t, err)
}

func TestGoalServiceMoverRoundTrip(t *testing.T) {
	s, userID, _ := newGoalService(t)
	goals := createGoals(t, s, userID, "a", "b")
	ctx := context.Background()

	board, err := s.Board(userID)
	require.NoError(t, err)
	plan, err := reorder.Move(board, goals[1].ID, goals[0].ID)
	require.NoError(t, err)

	require.NoError(t, s.Updater(userID).UpdatePositions(ctx, plan.Updates))
	assert.Equal(t, []string{goals[1].ID, goals[0].ID}, columnIDs(t, s, userID, model.GoalStatusPending))
}
