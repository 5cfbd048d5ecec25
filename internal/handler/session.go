package handler

import (
	"net/http"

	"github.com/mindtab/mindtab/internal/ctxkeys"
	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/service"
)

type SessionHandler struct {
	sessionService *service.SessionService
}

func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
	}
}

type createSessionRequest struct {
	Name string `json:"name"`
}

// createSessionResponse carries the raw token. It is never shown again.
type createSessionResponse struct {
	Token   string         `json:"token"`
	Session *model.Session `json:"session"`
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req createSessionRequest
	if r.ContentLength != 0 {
		err := decodeJSON(w, r, &req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
	}
	if len(req.Name) > 100 {
		writeError(w, http.StatusBadRequest, "name must be at most 100 characters")
		return
	}

	raw, session, err := h.sessionService.Create(user.ID, req.Name)
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusCreated, createSessionResponse{Token: raw, Session: session})
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	sessions, err := h.sessionService.Sessions(user.ID)
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID)
		return
	}
	if sessions == nil {
		sessions = []*model.Session{}
	}

	writeJSON(w, http.StatusOK, sessions)
}

// RevokeCurrent signs out the extension presenting the X-Session-Token header.
func (h *SessionHandler) RevokeCurrent(w http.ResponseWriter, r *http.Request) {
	session := ctxkeys.Session(r.Context())
	if session == nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired session")
		return
	}

	err := h.sessionService.Revoke(session.UserID, session.ID)
	if err != nil {
		writeServiceError(w, r, err, "user_id", session.UserID, "session_id", session.ID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	sessionID := r.PathValue("id")

	err := h.sessionService.Revoke(user.ID, sessionID)
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID, "session_id", sessionID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
