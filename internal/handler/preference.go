package handler

import (
	"net/http"

	"github.com/mindtab/mindtab/internal/ctxkeys"
	"github.com/mindtab/mindtab/internal/prefs"
)

type PreferenceHandler struct {
	preferences PreferencesFor
}

func NewPreferenceHandler(preferences PreferencesFor) *PreferenceHandler {
	return &PreferenceHandler{
		preferences: preferences,
	}
}

func (h *PreferenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	p, err := h.preferences(user.ID).Load(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// Put replaces the stored preferences. Omitted fields reset to defaults.
func (h *PreferenceHandler) Put(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	p := prefs.Default()
	err := decodeJSON(w, r, &p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	err = h.preferences(user.ID).Save(r.Context(), p)
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, p)
}
