package handler

import (
	"net/http"

	"github.com/mindtab/mindtab/internal/ctxkeys"
	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/service"
)

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

type profileResponse struct {
	User    *model.User    `json:"user"`
	Profile *model.Profile `json:"profile"`
}

type updateProfileRequest struct {
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, profileResponse{
		User:    ctxkeys.User(r.Context()),
		Profile: ctxkeys.Profile(r.Context()),
	})
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req updateProfileRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	profile, err := h.profileService.Update(user.ID, req.Name, req.Timezone)
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{User: user, Profile: profile})
}
