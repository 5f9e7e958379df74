// internal/api/handler/api/applications.go
package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/zerovacancy/zerovacancy/internal/api/middleware"
	"github.com/zerovacancy/zerovacancy/internal/api/response"
	"github.com/zerovacancy/zerovacancy/internal/core"
	"github.com/zerovacancy/zerovacancy/internal/storage/marketplace"
)

// ApplicationsHandler handles creator applications to projects.
type ApplicationsHandler struct {
	store    marketplace.Store
	recorder WriteRecorder
	logger   *zap.Logger
}

// NewApplicationsHandler creates a new applications handler. recorder may be nil.
func NewApplicationsHandler(store marketplace.Store, recorder WriteRecorder, logger *zap.Logger) *ApplicationsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationsHandler{store: store, recorder: recorder, logger: logger}
}

// List returns applications filtered by project, creator or status.
func (h *ApplicationsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := marketplace.ApplicationFilter{
		ProjectID: q.Get("project_id"),
		CreatorID: q.Get("creator_id"),
	}
	if status := q.Get("status"); status != "" {
		filter.Status = core.ApplicationStatus(status)
		if !filter.Status.Valid() {
			response.Fail(w, core.Validation("unknown application status", map[string]any{"field": "status", "value": status}))
			return
		}
	}

	apps, err := h.store.ListApplications(r.Context(), filter)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, apps)
}

// Get returns a single application by ID.
func (h *ApplicationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	app, err := h.store.GetApplication(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, app)
}

// ApplicationRequest is the body of POST /projects/{id}/applications.
type ApplicationRequest struct {
	CreatorID    string `json:"creatorId"`
	CreatorName  string `json:"creatorName"`
	Message      string `json:"message"`
	ProposedRate int    `json:"proposedRate"`
}

// Submit creates a pending application for the project in the path. The
// signed-in user, when there is one, is the applicant.
func (h *ApplicationsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req ApplicationRequest
	if err := decodeBody(w, r, &req); err != nil {
		response.Fail(w, err)
		return
	}

	app := &core.Application{
		ProjectID:    r.PathValue("id"),
		CreatorID:    req.CreatorID,
		CreatorName:  req.CreatorName,
		Message:      req.Message,
		ProposedRate: req.ProposedRate,
	}
	if user, ok := middleware.UserFrom(r.Context()); ok {
		if user.Role != core.RoleCreator {
			response.Fail(w, core.Permission("only creators can apply to projects"))
			return
		}
		app.CreatorID = user.ID
		if app.CreatorName == "" {
			app.CreatorName = user.Name
		}
	}

	err := h.store.SaveApplication(r.Context(), app)
	recordWrite(h.recorder, "application", err)
	if err != nil {
		response.Fail(w, err)
		return
	}

	h.logger.Info("application submitted",
		zap.String("application_id", app.ID),
		zap.String("project_id", app.ProjectID),
	)
	response.JSON(w, http.StatusCreated, app)
}
