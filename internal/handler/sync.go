package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mindtab/mindtab/internal/ctxkeys"
	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/service"
)

type SyncHandler struct {
	syncService *service.SyncService
	maxBody     int64
}

func NewSyncHandler(syncService *service.SyncService, maxBody int64) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		maxBody:     maxBody,
	}
}

type syncErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (h *SyncHandler) ReadingList(w http.ResponseWriter, r *http.Request) {
	h.sync(w, r, model.SyncKindReadingList)
}

func (h *SyncHandler) Bookmarks(w http.ResponseWriter, r *http.Request) {
	h.sync(w, r, model.SyncKindBookmark)
}

func (h *SyncHandler) sync(w http.ResponseWriter, r *http.Request, kind string) {
	if r.Method != http.MethodPost {
		writeSyncError(w, service.NewSyncError(service.SyncCodeMethodNotSupported, "method not supported", nil))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	var req service.SyncRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeSyncError(w, service.NewSyncError(service.SyncCodePayloadTooLarge, "request body too large", err))
			return
		}
		writeSyncError(w, service.NewSyncError(service.SyncCodeBadRequest, "invalid JSON body", err))
		return
	}

	res, err := h.syncService.Sync(r.Context(), ctxkeys.Session(r.Context()), kind, req)
	if err != nil {
		var syncErr *service.SyncError
		if !errors.As(err, &syncErr) {
			syncErr = service.NewSyncError(service.SyncCodeInternalServerError, "sync failed", err)
		}
		if syncErr.HTTPStatus() >= http.StatusInternalServerError {
			slog.Error("extension sync failed", "error", err, "kind", kind)
		}
		writeSyncError(w, syncErr)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func writeSyncError(w http.ResponseWriter, err *service.SyncError) {
	writeJSON(w, err.HTTPStatus(), syncErrorResponse{
		Success: false,
		Message: err.Message,
		Code:    err.Code,
	})
}
