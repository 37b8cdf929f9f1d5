package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/insightlab/insightlab/pkg/core"
	"github.com/insightlab/insightlab/pkg/store"
)

// ProjectStore is the project slice of the storage layer.
type ProjectStore interface {
	CreateProject(ctx context.Context, p store.ProjectParams) (*store.Project, error)
	GetProject(ctx context.Context, id int) (*store.Project, error)
	ListProjects(ctx context.Context) ([]store.Project, error)
	UpdateProject(ctx context.Context, id int, p store.ProjectParams) (*store.Project, error)
	DeleteProject(ctx context.Context, id int) error
}

type ProjectsHandler struct {
	Store        ProjectStore
	MaxBodyBytes int64
	Logger       *slog.Logger
}

type projectRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	ResearchGoal *string `json:"researchGoal"`
	SystemPrompt *string `json:"systemPrompt"`
}

func (h ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeJSON(w, r, h.MaxBodyBytes, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		writeError(w, r, core.NewInvalidRequestErrorWithParam("name must not be empty", "name"))
		return
	}

	params := store.ProjectParams{Name: strings.TrimSpace(*req.Name)}
	if req.Description != nil {
		params.Description = *req.Description
	}
	if req.ResearchGoal != nil {
		params.ResearchGoal = *req.ResearchGoal
	}
	if req.SystemPrompt != nil {
		params.SystemPrompt = *req.SystemPrompt
	}

	project, err := h.Store.CreateProject(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (h ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Store.ListProjects(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	project, err := h.Store.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// Patch merges the provided fields into the stored project. Absent
// fields keep their current values.
func (h ProjectsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req projectRequest
	if err := decodeJSON(w, r, h.MaxBodyBytes, &req); err != nil {
		writeError(w, r, err)
		return
	}

	current, err := h.Store.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	params := store.ProjectParams{
		Name:         current.Name,
		Description:  current.Description,
		ResearchGoal: current.ResearchGoal,
		SystemPrompt: current.SystemPrompt,
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			writeError(w, r, core.NewInvalidRequestErrorWithParam("name must not be empty", "name"))
			return
		}
		params.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		params.Description = *req.Description
	}
	if req.ResearchGoal != nil {
		params.ResearchGoal = *req.ResearchGoal
	}
	if req.SystemPrompt != nil {
		params.SystemPrompt = *req.SystemPrompt
	}

	project, err := h.Store.UpdateProject(r.Context(), id, params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Store.DeleteProject(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
