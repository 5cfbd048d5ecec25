package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindtab/mindtab/internal/db/dbtest"
	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/repository"
)

func TestTimestampUnmarshal(t *testing.T) {
	var v struct {
		A *Timestamp `json:"a"`
		B *Timestamp `json:"b"`
		C *Timestamp `json:"c"`
	}
	err := json.Unmarshal([]byte(`{"a":1700000000000,"b":"2024-01-02T03:04:05Z","c":null}`), &v)
	require.NoError(t, err)

	assert.True(t, v.A.Equal(time.UnixMilli(1700000000000)))
	assert.True(t, v.B.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
	assert.Nil(t, v.C)

	err = json.Unmarshal([]byte(`{"a":"yesterday"}`), &v)
	assert.Error(t, err)
}

func syncCode(t *testing.T, err error) *SyncError {
	t.Helper()
	var se *SyncError
	require.True(t, errors.As(err, &se), "expected *SyncError, got %v", err)
	return se
}

func TestSyncServiceErrors(t *testing.T) {
	conn := dbtest.New(t)
	userID := dbtest.User(t, conn, "a@example.com")
	s := NewSyncService(repository.NewSyncItemRepository(conn), 2)
	session := &model.Session{ID: "s1", UserID: userID}
	ctx := context.Background()

	item := SyncItemInput{Title: "Go", URL: "https://go.dev"}

	tests := []struct {
		name    string
		session *model.Session
		kind    string
		req     SyncRequest
		code    string
		status  int
	}{
		{"no session", nil, model.SyncKindBookmark, SyncRequest{UserID: userID, Items: []SyncItemInput{item}}, SyncCodeUnauthorized, http.StatusUnauthorized},
		{"unknown kind", session, "history", SyncRequest{UserID: userID, Items: []SyncItemInput{item}}, SyncCodeNotFound, http.StatusNotFound},
		{"too many", session, model.SyncKindBookmark, SyncRequest{UserID: userID, Items: []SyncItemInput{item, item, item}}, SyncCodePayloadTooLarge, http.StatusRequestEntityTooLarge},
		{"bad url", session, model.SyncKindBookmark, SyncRequest{UserID: userID, Items: []SyncItemInput{{Title: "x", URL: "not a url"}}}, SyncCodeBadRequest, http.StatusBadRequest},
		{"missing items", session, model.SyncKindBookmark, SyncRequest{UserID: userID}, SyncCodeBadRequest, http.StatusBadRequest},
		{"other user", session, model.SyncKindBookmark, SyncRequest{UserID: "someone-else", Items: []SyncItemInput{item}}, SyncCodeForbidden, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Sync(ctx, tt.session, tt.kind, tt.req)
			se := syncCode(t, err)
			assert.Equal(t, tt.code, se.Code)
			assert.Equal(t, tt.status, se.HTTPStatus())
		})
	}

	assert.Equal(t, http.StatusInternalServerError, (&SyncError{Code: "WHATEVER"}).HTTPStatus())
}

func TestSyncServiceStoresItems(t *testing.T) {
	conn := dbtest.New(t)
	userID := dbtest.User(t, conn, "a@example.com")
	s := NewSyncService(repository.NewSyncItemRepository(conn), 10)
	session := &model.Session{ID: "s1", UserID: userID}
	ctx := context.Background()

	folder := "Toolbar"
	req := SyncRequest{
		UserID: userID,
		Items: []SyncItemInput{
			{Title: "Go", URL: "https://go.dev", ParentFolder: &folder, AddedAt: &Timestamp{time.UnixMilli(1700000000000)}},
			{Title: "Pkg", URL: "https://pkg.go.dev"},
		},
	}

	res, err := s.Sync(ctx, session, model.SyncKindReadingList, req)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.ItemCount)

	req.Items[0].Title = "Go (renamed)"
	_, err = s.Sync(ctx, session, model.SyncKindReadingList, req)
	require.NoError(t, err)

	items, err := s.Items(userID, model.SyncKindReadingList)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, it := range items {
		assert.Nil(t, it.ParentFolder, "reading list items carry no folder")
		if it.URL == "https://go.dev" {
			assert.Equal(t, "Go (renamed)", it.Title)
			require.NotNil(t, it.AddedAt)
		}
	}
}
