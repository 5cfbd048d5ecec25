package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindtab/mindtab/internal/db/dbtest"
	"github.com/mindtab/mindtab/internal/model"
)

func TestPreferenceSetAll(t *testing.T) {
	conn := dbtest.New(t)
	repo := NewPreferenceRepository(conn)
	userID := dbtest.User(t, conn, "a@example.com")
	ctx := context.Background()

	require.NoError(t, repo.SetAll(ctx, userID, map[string]string{
		model.PreferenceViewMode:      model.ViewModeKanban,
		model.PreferenceActiveProject: "p1",
	}))
	require.NoError(t, repo.SetAll(ctx, userID, map[string]string{
		model.PreferenceViewMode: model.ViewModeList,
	}))

	prefs, err := repo.All(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []model.Preference{
		{UserID: userID, Key: model.PreferenceActiveProject, Value: "p1"},
		{UserID: userID, Key: model.PreferenceViewMode, Value: model.ViewModeList},
	}, prefs)
}
