package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mindtab/mindtab/internal/reorder"
	"github.com/mindtab/mindtab/internal/repository"
	"github.com/mindtab/mindtab/internal/service"
	"github.com/mindtab/mindtab/internal/storage"
	"github.com/mindtab/mindtab/internal/validation"
)

const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("write json failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads a request body of at most maxJSONBody bytes into v.
// Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		return validation.NewError("request body is empty")
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooLarge
		}
		return validation.NewError("invalid JSON: " + err.Error())
	}
	return nil
}

var errBodyTooLarge = errors.New("request body too large")

// writeServiceError answers err with the status its kind maps to. Unexpected
// errors are logged and answered with 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logArgs ...any) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, repository.ErrGoalNotFound),
		errors.Is(err, repository.ErrHabitNotFound),
		errors.Is(err, repository.ErrJournalNotFound),
		errors.Is(err, repository.ErrProjectNotFound),
		errors.Is(err, repository.ErrSessionNotFound),
		errors.Is(err, repository.ErrFileNotFound),
		errors.Is(err, repository.ErrProfileNotFound),
		errors.Is(err, reorder.ErrUnknownItem),
		errors.Is(err, reorder.ErrStaleTarget):
		status = http.StatusNotFound
	case validation.IsInvalid(err),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidSort),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidTimezone),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrPasswordless),
		errors.Is(err, service.ErrInvalidCurrentPassword),
		errors.Is(err, reorder.ErrNoTarget):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrGoalArchived),
		errors.Is(err, service.ErrProjectArchived):
		status = http.StatusConflict
	case errors.Is(err, errBodyTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, storage.ErrDisabled):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		args := append([]any{"error", err, "method", r.Method, "path", r.URL.Path}, logArgs...)
		slog.Error("request failed", args...)
		writeError(w, status, "internal server error")
		return
	}

	writeError(w, status, err.Error())
}

func queryBool(r *http.Request, key string) bool {
	switch strings.ToLower(r.URL.Query().Get(key)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
