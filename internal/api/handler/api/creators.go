// internal/api/handler/api/creators.go
package api

import (
	"net/http"

	"github.com/zerovacancy/zerovacancy/internal/api/response"
	"github.com/zerovacancy/zerovacancy/internal/storage/marketplace"
)

// CreatorsHandler handles creator directory requests.
type CreatorsHandler struct {
	store marketplace.Store
}

// NewCreatorsHandler creates a new creators handler.
func NewCreatorsHandler(store marketplace.Store) *CreatorsHandler {
	return &CreatorsHandler{store: store}
}

// List returns every creator.
func (h *CreatorsHandler) List(w http.ResponseWriter, r *http.Request) {
	creators, err := h.store.ListCreators(r.Context())
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, creators)
}

// Get returns a single creator by ID.
func (h *CreatorsHandler) Get(w http.ResponseWriter, r *http.Request) {
	creator, err := h.store.GetCreator(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, creator)
}
