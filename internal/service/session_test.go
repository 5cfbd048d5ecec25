package service

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindtab/mindtab/internal/db/dbtest"
	"github.com/mindtab/mindtab/internal/repository"
)

func TestSessionService(t *testing.T) {
	conn := dbtest.New(t)
	userID := dbtest.User(t, conn, "a@example.com")
	email := NewEmailService("", "noreply@example.com", "http://localhost", "MindTab", true)
	repo := repository.NewSessionRepository(conn)
	users := repository.NewUserRepository(conn)
	profiles := repository.NewProfileRepository(conn)

	s := NewSessionService(repo, users, profiles, email, time.Hour)

	raw, session, err := s.Create(userID, "  ")
	require.NoError(t, err)
	assert.Equal(t, "Browser extension", session.Name)
	assert.NotEqual(t, raw, session.TokenHash)

	got, err := s.Authenticate(raw)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)

	_, err = s.Authenticate("nope")
	assert.ErrorIs(t, err, ErrSessionInvalid)
	_, err = s.Authenticate("")
	assert.ErrorIs(t, err, ErrSessionInvalid)

	sessions, err := s.Sessions(userID)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)

	require.NoError(t, s.Revoke(userID, session.ID))
	_, err = s.Authenticate(raw)
	assert.ErrorIs(t, err, ErrSessionInvalid)

	expired := NewSessionService(repo, users, profiles, email, -time.Minute)
	raw, _, err = expired.Create(userID, "old")
	require.NoError(t, err)
	_, err = expired.Authenticate(raw)
	assert.ErrorIs(t, err, ErrSessionExpired)

	n, err := s.CleanupExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSessionNameTruncatesOnRunes(t *testing.T) {
	conn := dbtest.New(t)
	userID := dbtest.User(t, conn, "a@example.com")
	email := NewEmailService("", "noreply@example.com", "http://localhost", "MindTab", true)
	s := NewSessionService(
		repository.NewSessionRepository(conn),
		repository.NewUserRepository(conn),
		repository.NewProfileRepository(conn),
		email,
		time.Hour,
	)

	_, session, err := s.Create(userID, "x"+strings.Repeat("é", 120))
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(session.Name))
	assert.Equal(t, 100, utf8.RuneCountInString(session.Name))
	assert.Equal(t, "x"+strings.Repeat("é", 99), session.Name)

	sessions, err := s.Sessions(userID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, session.Name, sessions[0].Name)
}
