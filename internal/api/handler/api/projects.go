// internal/api/handler/api/projects.go
package api

import (
	"net/http"

	"github.com/zerovacancy/zerovacancy/internal/api/response"
	"github.com/zerovacancy/zerovacancy/internal/core"
	"github.com/zerovacancy/zerovacancy/internal/storage/marketplace"
)

// ProjectsHandler handles project listing requests.
type ProjectsHandler struct {
	store marketplace.Store
}

// NewProjectsHandler creates a new projects handler.
func NewProjectsHandler(store marketplace.Store) *ProjectsHandler {
	return &ProjectsHandler{store: store}
}

// List returns projects, optionally filtered by status and manager.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := marketplace.ProjectFilter{
		ManagerID: q.Get("manager_id"),
	}

	if status := q.Get("status"); status != "" {
		filter.Status = core.ProjectStatus(status)
		if !filter.Status.Valid() {
			response.Fail(w, core.Validation("unknown project status", map[string]any{"field": "status", "value": status}))
			return
		}
	}

	var err error
	if filter.Limit, err = intParam(r, "limit"); err != nil {
		response.Fail(w, err)
		return
	}
	if filter.Offset, err = intParam(r, "offset"); err != nil {
		response.Fail(w, err)
		return
	}

	projects, err := h.store.ListProjects(r.Context(), filter)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, projects)
}

// Get returns a single project by ID.
func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.store.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, project)
}
