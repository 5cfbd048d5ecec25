package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/repository"
	"github.com/mindtab/mindtab/internal/validation"
)

// Sync error codes as seen by the browser extension.
const (
	SyncCodeBadRequest          = "BAD_REQUEST"
	SyncCodeUnauthorized        = "UNAUTHORIZED"
	SyncCodeForbidden           = "FORBIDDEN"
	SyncCodeNotFound            = "NOT_FOUND"
	SyncCodeTimeout             = "TIMEOUT"
	SyncCodeConflict            = "CONFLICT"
	SyncCodePreconditionFailed  = "PRECONDITION_FAILED"
	SyncCodePayloadTooLarge     = "PAYLOAD_TOO_LARGE"
	SyncCodeMethodNotSupported  = "METHOD_NOT_SUPPORTED"
	SyncCodeInternalServerError = "INTERNAL_SERVER_ERROR"
)

var syncCodeStatus = map[string]int{
	SyncCodeBadRequest:          http.StatusBadRequest,
	SyncCodeUnauthorized:        http.StatusUnauthorized,
	SyncCodeForbidden:           http.StatusForbidden,
	SyncCodeNotFound:            http.StatusNotFound,
	SyncCodeTimeout:             http.StatusRequestTimeout,
	SyncCodeConflict:            http.StatusConflict,
	SyncCodePreconditionFailed:  http.StatusPreconditionFailed,
	SyncCodePayloadTooLarge:     http.StatusRequestEntityTooLarge,
	SyncCodeMethodNotSupported:  http.StatusMethodNotAllowed,
	SyncCodeInternalServerError: http.StatusInternalServerError,
}

// SyncError is a sync failure carrying its extension-facing code.
type SyncError struct {
	Code    string
	Message string
	Err     error
}

func NewSyncError(code, message string, err error) *SyncError {
	syncErrorsTotal.WithLabelValues(code).Inc()
	return &SyncError{Code: code, Message: message, Err: err}
}

func (e *SyncError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the code to a status, unknown codes are 500.
func (e *SyncError) HTTPStatus() int {
	status, ok := syncCodeStatus[e.Code]
	if !ok {
		return http.StatusInternalServerError
	}
	return status
}

// Timestamp accepts RFC 3339 strings or Unix milliseconds, which is what
// browser bookmark APIs report.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var ms json.Number
	err := json.Unmarshal(data, &ms)
	if err == nil {
		n, err := strconv.ParseFloat(ms.String(), 64)
		if err != nil {
			return err
		}
		t.Time = time.UnixMilli(int64(n)).UTC()
		return nil
	}

	var s string
	err = json.Unmarshal(data, &s)
	if err != nil {
		return err
	}
	t.Time, err = time.Parse(time.RFC3339, s)
	return err
}

type SyncItemInput struct {
	Title        string     `json:"title" validate:"required,max=1000"`
	URL          string     `json:"url" validate:"required,url,max=4096"`
	FaviconURL   *string    `json:"faviconUrl" validate:"omitempty,max=4096"`
	ParentFolder *string    `json:"parentFolder" validate:"omitempty,max=1000"`
	AddedAt      *Timestamp `json:"addedAt"`
}

type SyncRequest struct {
	UserID   string          `json:"userId" validate:"required"`
	Items    []SyncItemInput `json:"items" validate:"required,dive"`
	Metadata map[string]any  `json:"metadata"`
}

type SyncResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ItemCount int    `json:"itemCount"`
}

type SyncService struct {
	repo     repository.SyncItemRepository
	maxItems int
}

func NewSyncService(repo repository.SyncItemRepository, maxItems int) *SyncService {
	return &SyncService{
		repo:     repo,
		maxItems: maxItems,
	}
}

// Sync stores items pushed by the extension for the session's user.
// Every failure is a *SyncError.
func (s *SyncService) Sync(ctx context.Context, session *model.Session, kind string, req SyncRequest) (*SyncResponse, error) {
	if session == nil {
		return nil, NewSyncError(SyncCodeUnauthorized, "missing session", nil)
	}
	if kind != model.SyncKindReadingList && kind != model.SyncKindBookmark {
		return nil, NewSyncError(SyncCodeNotFound, "unknown sync target", nil)
	}
	if len(req.Items) > s.maxItems {
		return nil, NewSyncError(SyncCodePayloadTooLarge, fmt.Sprintf("too many items (max %d)", s.maxItems), nil)
	}

	err := validation.Struct(req)
	if err != nil {
		return nil, NewSyncError(SyncCodeBadRequest, err.Error(), nil)
	}
	if req.UserID != session.UserID {
		return nil, NewSyncError(SyncCodeForbidden, "session does not belong to user", nil)
	}

	now := time.Now()
	items := make([]*model.SyncItem, 0, len(req.Items))
	for _, in := range req.Items {
		item := &model.SyncItem{
			ID:           uuid.New().String(),
			UserID:       session.UserID,
			Kind:         kind,
			Title:        in.Title,
			URL:          in.URL,
			FaviconURL:   in.FaviconURL,
			ParentFolder: in.ParentFolder,
			SyncedAt:     now,
		}
		if kind == model.SyncKindReadingList {
			item.ParentFolder = nil
		}
		if in.AddedAt != nil {
			added := in.AddedAt.Time
			item.AddedAt = &added
		}
		items = append(items, item)
	}

	err = s.repo.Upsert(ctx, items)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewSyncError(SyncCodeTimeout, "sync timed out", err)
		}
		slog.Error("sync upsert failed", "error", err, "user_id", session.UserID, "kind", kind, "items", len(items))
		return nil, NewSyncError(SyncCodeInternalServerError, "failed to store items", err)
	}

	syncItemsTotal.WithLabelValues(kind).Add(float64(len(items)))
	slog.Info("extension sync", "user_id", session.UserID, "kind", kind, "items", len(items))

	return &SyncResponse{
		Success:   true,
		Message:   fmt.Sprintf("synced %d items", len(items)),
		ItemCount: len(items),
	}, nil
}

func (s *SyncService) Items(userID, kind string) ([]*model.SyncItem, error) {
	return s.repo.Items(userID, kind)
}
