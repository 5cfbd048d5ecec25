package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mindtab/mindtab/internal/ctxkeys"
	"github.com/mindtab/mindtab/internal/service"
)

type AccountHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

func NewAccountHandler(authService *service.AuthService, userService *service.UserService) *AccountHandler {
	return &AccountHandler{
		authService: authService,
		userService: userService,
	}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword replaces the password. Passwordless accounts set their
// first one by leaving currentPassword empty.
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req changePasswordRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "newPassword is required")
		return
	}

	err = h.userService.UpdatePassword(user.ID, req.CurrentPassword, req.NewPassword)
	if errors.Is(err, service.ErrPasswordless) && req.CurrentPassword == "" {
		err = h.authService.SetPassword(user.ID, req.NewPassword)
	}
	if err != nil {
		slog.Warn("password update failed", "error", err, "user_id", user.ID)
		writeServiceError(w, r, err, "user_id", user.ID)
		return
	}

	slog.Info("password updated", "user_id", user.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.userService.DeleteAccount(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID)
		return
	}

	h.authService.ClearJWTCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
