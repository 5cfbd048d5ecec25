package service

import (
	"context"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindtab/mindtab/internal/db/dbtest"
	"github.com/mindtab/mindtab/internal/markdown"
	"github.com/mindtab/mindtab/internal/repository"
	"github.com/mindtab/mindtab/internal/storage"
)

func newJournalServiceOn(conn *sqlx.DB, projectRepo repository.ProjectRepository) *JournalService {
	files := NewFileService(repository.NewFileRepository(conn), nil)
	return NewJournalService(repository.NewJournalRepository(conn), projectRepo, files, markdown.NewParser())
}

func TestJournalServiceCRUD(t *testing.T) {
	conn := dbtest.New(t)
	s := newJournalServiceOn(conn, repository.NewProjectRepository(conn))
	userID := dbtest.User(t, conn, "a@example.com")
	otherID := dbtest.User(t, conn, "b@example.com")
	ctx := context.Background()

	_, err := s.Create(userID, JournalInput{})
	assert.Error(t, err)

	title := "Monday"
	content := "went running"
	j, err := s.Create(userID, JournalInput{Title: &title, Content: &content})
	require.NoError(t, err)
	assert.Nil(t, j.ProjectID)

	got, err := s.ByID(ctx, userID, j.ID)
	require.NoError(t, err)
	assert.Equal(t, "went running", got.Content)
	assert.Empty(t, got.Attachments)

	_, err = s.ByID(ctx, otherID, j.ID)
	assert.ErrorIs(t, err, repository.ErrJournalNotFound)

	content = "went swimming"
	updated, err := s.Update(ctx, userID, j.ID, JournalInput{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "Monday", updated.Title)
	assert.Equal(t, "went swimming", updated.Content)

	list, err := s.Journals(userID, "", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = s.Journals(otherID, "", 0)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, s.Delete(ctx, otherID, j.ID), repository.ErrJournalNotFound)
	require.NoError(t, s.Delete(ctx, userID, j.ID))
	_, err = s.ByID(ctx, userID, j.ID)
	assert.ErrorIs(t, err, repository.ErrJournalNotFound)
}

func TestJournalServiceRender(t *testing.T) {
	conn := dbtest.New(t)
	s := newJournalServiceOn(conn, repository.NewProjectRepository(conn))
	userID := dbtest.User(t, conn, "a@example.com")

	title := "untitled"
	content := strings.Join([]string{
		"---",
		"title: Week 12",
		"tags: [health, running]",
		"---",
		"# Notes",
		"",
		"ran **5k**",
	}, "\n")
	j, err := s.Create(userID, JournalInput{Title: &title, Content: &content})
	require.NoError(t, err)

	rendered, err := s.Render(userID, j.ID)
	require.NoError(t, err)
	assert.Equal(t, j.ID, rendered.ID)
	assert.Equal(t, "Week 12", rendered.Title)
	assert.Equal(t, []string{"health", "running"}, rendered.Tags)
	assert.Contains(t, rendered.HTML, "<strong>5k</strong>")
	assert.NotContains(t, rendered.HTML, "tags:")

	plain := "no front matter"
	_, err = s.Update(context.Background(), userID, j.ID, JournalInput{Content: &plain})
	require.NoError(t, err)
	rendered, err = s.Render(userID, j.ID)
	require.NoError(t, err)
	assert.Equal(t, "untitled", rendered.Title)
	assert.Empty(t, rendered.Tags)
}

func TestJournalAttachmentWithoutStorage(t *testing.T) {
	conn := dbtest.New(t)
	s := newJournalServiceOn(conn, repository.NewProjectRepository(conn))
	userID := dbtest.User(t, conn, "a@example.com")
	otherID := dbtest.User(t, conn, "b@example.com")

	title := "Monday"
	j, err := s.Create(userID, JournalInput{Title: &title})
	require.NoError(t, err)

	header := &multipart.FileHeader{Filename: "notes.txt", Size: 5}

	_, err = s.AddAttachment(context.Background(), userID, j.ID, nil, header)
	assert.ErrorIs(t, err, storage.ErrDisabled)

	_, err = s.AddAttachment(context.Background(), otherID, j.ID, nil, header)
	assert.ErrorIs(t, err, repository.ErrJournalNotFound)
}
