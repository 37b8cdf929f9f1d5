package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/insightlab/insightlab/pkg/core"
	"github.com/insightlab/insightlab/pkg/store"
)

// MaterialStore is the research-material slice of the storage layer.
type MaterialStore interface {
	CreateMaterial(ctx context.Context, projectID int, filename, content string) (*store.ResearchMaterial, error)
	ListMaterials(ctx context.Context, projectID int) ([]store.ResearchMaterial, error)
	GetMaterial(ctx context.Context, projectID, id int) (*store.ResearchMaterial, error)
	DeleteMaterial(ctx context.Context, projectID, id int) error
}

type MaterialsHandler struct {
	Store        MaterialStore
	Projects     ProjectStore
	MaxBodyBytes int64
}

type materialRequest struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

func (h MaterialsHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req materialRequest
	if err := decodeJSON(w, r, h.MaxBodyBytes, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Filename) == "" {
		writeError(w, r, core.NewInvalidRequestErrorWithParam("filename must not be empty", "filename"))
		return
	}
	if req.Content == "" {
		writeError(w, r, core.NewInvalidRequestErrorWithParam("content must not be empty", "content"))
		return
	}

	// Creating against a missing project is a 404, not a silent orphan.
	if _, err := h.Projects.GetProject(r.Context(), projectID); err != nil {
		writeError(w, r, err)
		return
	}

	material, err := h.Store.CreateMaterial(r.Context(), projectID, strings.TrimSpace(req.Filename), req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, material)
}

func (h MaterialsHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	materials, err := h.Store.ListMaterials(r.Context(), projectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, materials)
}

func (h MaterialsHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	materialID, err := pathInt(r, "mid")
	if err != nil {
		writeError(w, r, err)
		return
	}
	material, err := h.Store.GetMaterial(r.Context(), projectID, materialID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, material)
}

func (h MaterialsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	materialID, err := pathInt(r, "mid")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Store.DeleteMaterial(r.Context(), projectID, materialID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
