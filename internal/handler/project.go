package handler

import (
	"net/http"

	"github.com/mindtab/mindtab/internal/ctxkeys"
	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/service"
)

type ProjectHandler struct {
	projectService *service.ProjectService
}

func NewProjectHandler(projectService *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// List returns active projects, and archived ones with ?include_archived=true.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	projects, err := h.projectService.Projects(user.ID, queryBool(r, "include_archived"))
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID)
		return
	}
	if projects == nil {
		projects = []*model.Project{}
	}

	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	project, err := h.projectService.ByID(user.ID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var in service.ProjectInput
	err := decodeJSON(w, r, &in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	project, err := h.projectService.Create(user.ID, in)
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	projectID := r.PathValue("id")

	var in service.ProjectInput
	err := decodeJSON(w, r, &in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	project, err := h.projectService.Update(user.ID, projectID, in)
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID, "project_id", projectID)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, true)
}

func (h *ProjectHandler) Unarchive(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, false)
}

func (h *ProjectHandler) setArchived(w http.ResponseWriter, r *http.Request, archived bool) {
	user := ctxkeys.User(r.Context())
	projectID := r.PathValue("id")

	set := h.projectService.Unarchive
	if archived {
		set = h.projectService.Archive
	}

	project, err := set(user.ID, projectID)
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID, "project_id", projectID)
		return
	}

	writeJSON(w, http.StatusOK, project)
}
