package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindtab/mindtab/internal/db/dbtest"
	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/repository"
)

func createProject(t *testing.T, s *ProjectService, userID, name string) *model.Project {
	t.Helper()
	p, err := s.Create(userID, ProjectInput{Name: &name})
	require.NoError(t, err)
	return p
}

func projectNames(t *testing.T, s *ProjectService, userID string, includeArchived bool) []string {
	t.Helper()
	projects, err := s.Projects(userID, includeArchived)
	require.NoError(t, err)

	var names []string
	for _, p := range projects {
		names = append(names, p.Name)
	}
	return names
}

func TestProjectServiceArchive(t *testing.T) {
	conn := dbtest.New(t)
	s := NewProjectService(repository.NewProjectRepository(conn))
	userID := dbtest.User(t, conn, "a@example.com")
	otherID := dbtest.User(t, conn, "b@example.com")

	work := createProject(t, s, userID, "Work")
	home := createProject(t, s, userID, "Home")
	assert.Equal(t, 0, work.Position)
	assert.Equal(t, 1, home.Position)
	assert.Equal(t, model.ProjectStatusActive, work.Status)

	archived, err := s.Archive(userID, work.ID)
	require.NoError(t, err)
	assert.True(t, archived.IsArchived())

	assert.Equal(t, []string{"Home"}, projectNames(t, s, userID, false))
	assert.Equal(t, []string{"Home", "Work"}, projectNames(t, s, userID, true))

	// Archived projects stay reachable by id.
	p, err := s.ByID(userID, work.ID)
	require.NoError(t, err)
	assert.Equal(t, "Work", p.Name)

	restored, err := s.Unarchive(userID, work.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsArchived())
	assert.ElementsMatch(t, []string{"Home", "Work"}, projectNames(t, s, userID, false))

	_, err = s.Archive(otherID, work.ID)
	assert.ErrorIs(t, err, repository.ErrProjectNotFound)
	_, err = s.Archive(userID, "missing")
	assert.ErrorIs(t, err, repository.ErrProjectNotFound)
}

func TestProjectServiceValidation(t *testing.T) {
	conn := dbtest.New(t)
	s := NewProjectService(repository.NewProjectRepository(conn))
	userID := dbtest.User(t, conn, "a@example.com")

	_, err := s.Create(userID, ProjectInput{})
	assert.Error(t, err)

	p := createProject(t, s, userID, "Work")
	description := "day job"
	updated, err := s.Update(userID, p.ID, ProjectInput{Description: &description})
	require.NoError(t, err)
	assert.Equal(t, "Work", updated.Name)
	assert.Equal(t, "day job", updated.Description)

	long := strings.Repeat("x", 101)
	_, err = s.Update(userID, p.ID, ProjectInput{Name: &long})
	assert.Error(t, err)
}

func TestArchivedProjectRejectsNewWork(t *testing.T) {
	conn := dbtest.New(t)
	projectRepo := repository.NewProjectRepository(conn)
	projects := NewProjectService(projectRepo)
	goals := NewGoalService(repository.NewGoalRepository(conn), projectRepo)
	journals := newJournalServiceOn(conn, projectRepo)
	userID := dbtest.User(t, conn, "a@example.com")
	ctx := context.Background()

	p := createProject(t, projects, userID, "Old")
	title := "plan"

	g, err := goals.Create(ctx, userID, GoalInput{Title: &title, ProjectID: &p.ID})
	require.NoError(t, err)

	_, err = projects.Archive(userID, p.ID)
	require.NoError(t, err)

	_, err = goals.Create(ctx, userID, GoalInput{Title: &title, ProjectID: &p.ID})
	assert.ErrorIs(t, err, ErrProjectArchived)

	_, err = journals.Create(userID, JournalInput{Title: &title, ProjectID: &p.ID})
	assert.ErrorIs(t, err, ErrProjectArchived)

	_, err = goals.Update(ctx, userID, g.ID, GoalInput{ProjectID: &p.ID})
	assert.ErrorIs(t, err, ErrProjectArchived)

	// Existing goals keep their reference.
	kept, err := goals.ByID(userID, g.ID)
	require.NoError(t, err)
	require.NotNil(t, kept.ProjectID)
	assert.Equal(t, p.ID, *kept.ProjectID)

	_, err = projects.Unarchive(userID, p.ID)
	require.NoError(t, err)
	_, err = journals.Create(userID, JournalInput{Title: &title, ProjectID: &p.ID})
	assert.NoError(t, err)
}
